package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	applog "transaksi/internal/log"
	"transaksi/internal/middleware/ratelimit"
	"transaksi/internal/middleware/security"
	"transaksi/internal/ports"
)

// maxBodyBytes bounds request bodies on write endpoints.
const maxBodyBytes = 1 << 20

// Server serves the /transaksi REST contract over any ports.Store.
type Server struct {
	http.Server
	store   ports.Store
	periods ports.PeriodLister // nil when the store has no period query
	logger  *applog.Logger
	timeout time.Duration
	started time.Time

	shutdownOnce sync.Once
}

type Option func(*serverOptions)

type serverOptions struct {
	logger    *applog.Logger
	timeout   time.Duration
	rateLimit ratelimit.Config
}

// WithLogger sets the logger used for request logs.
func WithLogger(l *applog.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithStoreTimeout bounds each store call made by a handler.
func WithStoreTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithRateLimit overrides the per-client request rate.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(o *serverOptions) { o.rateLimit = cfg }
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store ports.Store, opts ...Option) (*Server, error) {
	o := serverOptions{
		logger:    applog.New(applog.DefaultConfig()),
		timeout:   10 * time.Second,
		rateLimit: ratelimit.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	limiter, err := ratelimit.NewLimiter(o.rateLimit)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:   store,
		logger:  o.logger.WithComponent(applog.ComponentHTTP),
		timeout: o.timeout,
		started: time.Now(),
	}
	if pl, ok := store.(ports.PeriodLister); ok {
		s.periods = pl
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /transaksi", s.handleList)
	mux.HandleFunc("POST /transaksi", s.handleCreate)
	mux.HandleFunc("PUT /transaksi/{id}", s.handleUpdate)
	mux.HandleFunc("DELETE /transaksi/{id}", s.handleDelete)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	var handler http.Handler = mux
	handler = limiter.Middleware(handler)
	handler = headers.Middleware(handler)
	handler = applog.Middleware(o.logger)(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelError),
	}
	return s, nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}
