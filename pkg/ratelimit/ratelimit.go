package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/smartdalle/smartdalle/svc/auth"
)

// Config holds per-user rate limit settings.
type Config struct {
	// Rate is the sustained request rate per user in requests per second.
	Rate rate.Limit
	// Burst is the maximum burst size per user.
	Burst int
	// TTL is how long an idle user's limiter is retained before cleanup.
	TTL time.Duration
	// CleanupInterval is how often idle limiters are purged.
	CleanupInterval time.Duration
}

// DefaultConfig allows 120 requests per minute per user with a short burst.
func DefaultConfig() Config {
	return Config{
		Rate:            rate.Limit(2),
		Burst:           20,
		TTL:             10 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter enforces a per-user token bucket. Limiters for idle users are
// evicted in the background so the map does not grow without bound.
type Limiter struct {
	cfg Config

	mu       sync.Mutex
	limiters map[string]*userLimiter

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a limiter and starts its cleanup loop.
func New(cfg Config) *Limiter {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultConfig().Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultConfig().Burst
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultConfig().TTL
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = DefaultConfig().CleanupInterval
	}

	l := &Limiter{
		cfg:      cfg,
		limiters: make(map[string]*userLimiter),
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow reports whether the given key may make a request now.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	ul, ok := l.limiters[key]
	if !ok {
		ul = &userLimiter{limiter: rate.NewLimiter(l.cfg.Rate, l.cfg.Burst)}
		l.limiters[key] = ul
	}
	ul.lastSeen = time.Now()
	return ul.limiter.Allow()
}

// Stop terminates the cleanup loop. Safe to call multiple times.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-l.cfg.TTL)
			l.mu.Lock()
			for key, ul := range l.limiters {
				if ul.lastSeen.Before(cutoff) {
					delete(l.limiters, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Middleware limits requests per authenticated user. It must run after the
// auth middleware; requests without a user in context fall back to a shared
// anonymous bucket.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "anonymous"
		if user := auth.GetUserFromContext(r.Context()); user != nil {
			key = user.ID.String()
		}

		if !l.Allow(key) {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
