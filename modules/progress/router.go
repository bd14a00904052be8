package progress

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartdalle/smartdalle/pkg/badges"
	"github.com/smartdalle/smartdalle/pkg/httpx"
	"github.com/smartdalle/smartdalle/pkg/logger"
	"github.com/smartdalle/smartdalle/pkg/metrics"
	"github.com/smartdalle/smartdalle/svc/auth"
	"github.com/smartdalle/smartdalle/svc/progress"
)

// RouterOptions configures the progress module.
type RouterOptions struct {
	Service   progress.Service
	Sequencer *badges.Sequencer
	Metrics   *metrics.Collector
	Logger    *slog.Logger

	RequireUser func(http.Handler) http.Handler
}

// Router mounts the weight tracking endpoints.
//
//	POST /weight  -> log a measurement, returns unlocked badges
//	GET  /history -> weight history, newest first
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("progress module: Service is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	h := &handlers{
		svc:       opts.Service,
		sequencer: opts.Sequencer,
		metrics:   opts.Metrics,
		log:       opts.Logger,
	}

	r := chi.NewRouter()
	if opts.RequireUser != nil {
		r.Use(opts.RequireUser)
	}
	r.Post("/weight", h.logWeight)
	r.Get("/history", h.history)

	return r
}

type handlers struct {
	svc       progress.Service
	sequencer *badges.Sequencer
	metrics   *metrics.Collector
	log       *slog.Logger
}

type logWeightRequest struct {
	Weight float64 `json:"weight"`
}

func (h *handlers) logWeight(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	var req logWeightRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	unlocked, err := h.svc.LogWeight(r.Context(), user.ID, req.Weight)
	if err != nil {
		if errors.Is(err, progress.ErrInvalidWeight) {
			httpx.Error(w, http.StatusBadRequest, "weight is out of the accepted range")
			return
		}
		h.log.LogAttrs(r.Context(), slog.LevelError, "weight log failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
		httpx.Error(w, http.StatusInternalServerError, "failed to log weight")
		return
	}

	if h.metrics != nil {
		h.metrics.RecordWeightLog()
		for _, key := range unlocked {
			h.metrics.RecordBadgeUnlocked(key)
		}
	}
	if h.sequencer != nil && len(unlocked) > 0 {
		h.sequencer.Announce(unlocked)
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"unlocked_badges": unlocked,
	})
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	user, err := auth.RequireUserFromContext(r.Context())
	if err != nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthenticated")
		return
	}

	logs, err := h.svc.History(r.Context(), user.ID)
	if err != nil {
		h.log.LogAttrs(r.Context(), slog.LevelError, "history load failed",
			logger.UserID(user.ID),
			logger.Error(err),
		)
		httpx.Error(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if logs == nil {
		logs = []progress.WeightLog{}
	}

	httpx.JSON(w, http.StatusOK, map[string]any{"entries": logs})
}
