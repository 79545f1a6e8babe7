package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bankstat/internal/log"
	"bankstat/internal/middleware/ratelimit"
	"bankstat/internal/middleware/security"
	"bankstat/internal/middleware/trace"
	"bankstat/internal/report"
	"bankstat/internal/services"
)

// ReportService is what the API needs from services.ReportService.
type ReportService interface {
	Dashboard(ctx context.Context, at string) (report.DashboardPayload, error)
	Events(ctx context.Context, at, window string) (report.WindowPayload, error)
	Cashback(ctx context.Context, year, month int) (report.CashbackPayload, error)
	Spending(ctx context.Context, category, date string) (report.SpendingPayload, error)
	RequestReport(ctx context.Context, name string, p services.Params, filename string) (string, error)
}

var _ ReportService = (*services.ReportService)(nil)

// Config tunes the API server.
type Config struct {
	Addr string
	// RequestsPerMinute per client address. Zero uses the limiter default.
	RequestsPerMinute int
	// Ready backs /readyz. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger *log.Logger
}

type Server struct {
	http.Server
	reports ReportService
	ready   func(ctx context.Context) error
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, reports ReportService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		reports: reports,
		ready:   cfg.Ready,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RequestsPerMinute}),
		tracer:  trace.NewMiddleware(logger, security.ClientIP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/dashboard", s.handleDashboard)
	api.HandleFunc("GET /api/events", s.handleEvents)
	api.HandleFunc("GET /api/cashback", s.handleCashback)
	api.HandleFunc("GET /api/spending", s.handleSpending)
	api.HandleFunc("POST /api/reports", s.handleRequestReport)
	mux.Handle("/api/", s.limiter.Middleware(security.ClientIP)(api))

	var handler http.Handler = mux
	handler = security.Headers(security.DefaultHeadersConfig())(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Metrics exposes the request counters collected by the trace middleware.
func (s *Server) Metrics() trace.Metrics {
	return s.tracer.GetMetrics()
}

// Shutdown gracefully shuts down the server and the limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
