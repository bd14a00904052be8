package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	modbilling "github.com/smartdalle/smartdalle/modules/billing"
	modprogress "github.com/smartdalle/smartdalle/modules/progress"
	modrecipes "github.com/smartdalle/smartdalle/modules/recipes"
	"github.com/smartdalle/smartdalle/pkg/ai"
	"github.com/smartdalle/smartdalle/pkg/badges"
	"github.com/smartdalle/smartdalle/pkg/billing"
	"github.com/smartdalle/smartdalle/pkg/config"
	"github.com/smartdalle/smartdalle/pkg/email"
	"github.com/smartdalle/smartdalle/pkg/httpserver"
	"github.com/smartdalle/smartdalle/pkg/httpx"
	"github.com/smartdalle/smartdalle/pkg/logger"
	"github.com/smartdalle/smartdalle/pkg/metrics"
	"github.com/smartdalle/smartdalle/pkg/pg"
	"github.com/smartdalle/smartdalle/pkg/ratelimit"
	rds "github.com/smartdalle/smartdalle/pkg/redis"
	"github.com/smartdalle/smartdalle/svc/auth"
	"github.com/smartdalle/smartdalle/svc/progress"
	"github.com/smartdalle/smartdalle/svc/recipes"
)

type appConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":8080"`
	DevEmailDir string `env:"DEV_EMAIL_DIR" envDefault:"./tmp/emails"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Environment, "smartdalle"))
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	config.MustLoad(&pgCfg)
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	var redisCfg rds.Config
	config.MustLoad(&redisCfg)
	redisClient, err := rds.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	// Billing.
	var billingCfg billing.Config
	config.MustLoad(&billingCfg)

	provider, err := newBillingProvider(billingCfg.Provider)
	if err != nil {
		return err
	}

	mailer := newMailer(ctx, appCfg, log)

	billingSvc, err := billing.NewService(ctx, billingCfg, provider, billing.NewPGStore(pool),
		billing.WithLogger(log),
		billing.WithEmailSender(mailer),
	)
	if err != nil {
		return fmt.Errorf("billing: %w", err)
	}

	// Progress tracking.
	progressStore := progress.NewPGStore(pool)
	progressSvc := progress.NewService(progressStore, progressStore,
		progress.WithLogger(log),
		progress.WithHistoryCache(progress.NewHistoryCache(redisClient, 0)),
		progress.WithEntitlements(billingSvc),
	)

	// Recipes and the AI coach.
	var aiCfg ai.Config
	config.MustLoad(&aiCfg)
	coach := ai.NewClient(aiCfg)
	if !coach.Configured() {
		log.InfoContext(ctx, "openai key not configured, using built-in tips")
	}

	recipesSvc := recipes.NewService(recipes.NewPGStore(pool), billingSvc,
		recipes.WithLogger(log),
		recipes.WithCoach(coach),
	)

	// Badge announcements.
	sequencer := badges.NewSequencer(badges.NewLogNotifier(log), badges.WithLogger(log))
	defer sequencer.Close()

	collector := metrics.NewCollector()

	limiter := ratelimit.New(ratelimit.DefaultConfig())
	defer limiter.Stop()

	requireUser := auth.RequireUser(auth.NewRedisResolver(redisClient), log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(collector.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/readyz", readiness(pg.Healthcheck(pool), rds.Healthcheck(redisClient)))
	r.Method(http.MethodGet, "/metrics", collector.Handler())

	r.Mount("/billing", modbilling.Router(modbilling.RouterOptions{
		Service:     billingSvc,
		Metrics:     collector,
		Logger:      log,
		RequireUser: chainMiddleware(requireUser, limiter.Middleware),
	}))
	r.Mount("/progress", modprogress.Router(modprogress.RouterOptions{
		Service:     progressSvc,
		Sequencer:   sequencer,
		Metrics:     collector,
		Logger:      log,
		RequireUser: chainMiddleware(requireUser, limiter.Middleware),
	}))
	r.Mount("/recipes", modrecipes.Router(modrecipes.RouterOptions{
		Service:     recipesSvc,
		Logger:      log,
		RequireUser: chainMiddleware(requireUser, limiter.Middleware),
	}))

	srv := httpserver.New(
		httpserver.WithAddr(appCfg.ServerAddr),
		httpserver.WithLogger(log),
	)
	return srv.Run(ctx, r)
}

func newBillingProvider(name string) (billing.BillingProvider, error) {
	switch name {
	case "stripe":
		var cfg billing.StripeConfig
		config.MustLoad(&cfg)
		return billing.NewStripeProvider(cfg)
	case "paddle":
		var cfg billing.PaddleConfig
		config.MustLoad(&cfg)
		return billing.NewPaddleProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: %s", billing.ErrUnknownProvider, name)
	}
}

// newMailer uses Postmark when configured and falls back to the filesystem
// sender so activation emails are still visible in development.
func newMailer(ctx context.Context, appCfg appConfig, log *slog.Logger) email.EmailSender {
	var cfg email.Config
	config.MustLoad(&cfg)

	if cfg.PostmarkServerToken != "" {
		sender, err := email.NewPostmarkClient(cfg)
		if err == nil {
			return sender
		}
		log.WarnContext(ctx, "postmark misconfigured, using dev sender", "error", err)
	}
	return email.NewDevSender(appCfg.DevEmailDir)
}

func readiness(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var errs error
		for _, check := range checks {
			errs = errors.Join(errs, check(r.Context()))
		}
		if errs != nil {
			httpx.Error(w, http.StatusServiceUnavailable, errs.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func chainMiddleware(mws ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}
