// Package ratelimit limits requests per client IP on top of
// github.com/ulule/limiter with an in-memory store.
package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// Config holds rate limiter configuration
type Config struct {
	// Rate in limiter's formatted notation, e.g. "120-M" or "10-S".
	Rate string
	// TrustForwardHeader keys clients by X-Forwarded-For / X-Real-IP.
	TrustForwardHeader bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{Rate: "120-M"}
}

// Limiter wraps a ulule limiter and its net/http middleware.
type Limiter struct {
	middleware *stdlib.Middleware
}

// NewLimiter creates a new rate limiter
func NewLimiter(config Config) (*Limiter, error) {
	if config.Rate == "" {
		config = DefaultConfig()
	}
	rate, err := limiter.NewRateFromFormatted(config.Rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", config.Rate, err)
	}

	instance := limiter.New(memory.NewStore(), rate, limiter.WithTrustForwardHeader(config.TrustForwardHeader))
	return &Limiter{
		middleware: stdlib.NewMiddleware(instance,
			stdlib.WithLimitReachedHandler(onLimitReached),
			stdlib.WithErrorHandler(onError),
		),
	}, nil
}

// Middleware returns HTTP middleware enforcing the limit.
func (rl *Limiter) Middleware(next http.Handler) http.Handler {
	return rl.middleware.Handler(next)
}

func onLimitReached(w http.ResponseWriter, r *http.Request) {
	slog.WarnContext(r.Context(), "Rate limit exceeded",
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "60")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many requests, please try again later"})
}

func onError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "Failed to get rate limit context", "error", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal server error during rate limit check"})
}
