package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/agbru/picalc/internal/config"
	apperrors "github.com/agbru/picalc/internal/errors"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/pi"
	"github.com/agbru/picalc/internal/service"
)

// Server exposes the π calculators over HTTP. It wraps the standard
// http.Server with the calculation service and graceful shutdown.
type Server struct {
	factory        *pi.DefaultFactory
	service        service.Service
	cfg            config.AppConfig
	httpServer     *http.Server
	logger         logging.Logger
	shutdownSignal chan os.Signal
	rateLimiter    *RateLimiter
	securityConfig SecurityConfig
	metrics        *Metrics
	timeouts       Timeouts
}

// NewServer creates a Server resolving algorithms from factory. cfg
// supplies the port, the default library and algorithm, the thread count
// used when a request omits it, and the resource paths.
//
// Parameters:
//   - factory: The factory resolving library and algorithm pairs.
//   - cfg: The application configuration.
//   - opts: Optional overrides for the logger, service, timeouts, security
//     settings and rate limiter.
//
// Returns:
//   - *Server: A configured server, not yet listening.
func NewServer(factory *pi.DefaultFactory, cfg config.AppConfig, opts ...Option) *Server {
	s := &Server{
		factory:        factory,
		cfg:            cfg,
		logger:         logging.NewLogger(os.Stdout, "server"),
		shutdownSignal: make(chan os.Signal, 1),
		securityConfig: DefaultSecurityConfig(),
		metrics:        NewMetrics(),
		timeouts:       DefaultServerTimeouts(),
	}

	for _, opt := range opts {
		opt(s)
	}

	// The configured default thread count is always accepted.
	if s.securityConfig.MaxThreads > 0 && s.cfg.Threads > s.securityConfig.MaxThreads {
		s.securityConfig.MaxThreads = s.cfg.Threads
	}
	if s.service == nil {
		s.service = service.NewCalculatorService(s.factory, s.cfg.CalculationOptions(),
			service.Limits{
				MaxPrecision: s.securityConfig.MaxPrecision,
				MaxThreads:   s.securityConfig.MaxThreads,
			}, s.cfg.ReferencePath)
	}
	if s.rateLimiter == nil {
		s.rateLimiter = NewRateLimiter(DefaultRateLimiterConfig())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/calculate", s.wrapWithMiddleware(s.handleCalculate))
	mux.HandleFunc("/health", s.wrapWithMiddleware(s.handleHealth))
	mux.HandleFunc("/algorithms", s.wrapWithMiddleware(s.handleAlgorithms))
	mux.HandleFunc("/metrics", s.wrapWithMiddleware(s.handleMetrics))

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  s.timeouts.ReadTimeout,
		WriteTimeout: s.timeouts.WriteTimeout,
		IdleTimeout:  s.timeouts.IdleTimeout,
	}

	return s
}

// Handler returns the routed handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// wrapWithMiddleware applies Security -> RateLimit -> Logging -> Metrics -> handler.
func (s *Server) wrapWithMiddleware(handler http.HandlerFunc) http.HandlerFunc {
	wrapped := s.metricsMiddleware(handler)
	wrapped = s.loggingMiddleware(wrapped)
	wrapped = RateLimitMiddleware(s.rateLimiter, wrapped)
	wrapped = SecurityMiddleware(s.securityConfig, wrapped)
	return wrapped
}

// Start listens on the configured port until SIGINT or SIGTERM, then
// shuts down gracefully.
//
// Returns:
//   - error: An error if the listener fails or shutdown times out.
func (s *Server) Start() error {
	signal.Notify(s.shutdownSignal, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(s.shutdownSignal)
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting server",
			logging.String("addr", s.httpServer.Addr),
			logging.String("library", s.cfg.Library),
			logging.String("algorithm", s.cfg.Algo),
			logging.Int("threads", s.cfg.Threads),
			logging.Int("max_precision", s.securityConfig.MaxPrecision),
			logging.Int("max_threads", s.securityConfig.MaxThreads))
		s.logger.Printf("Available endpoints:")
		s.logger.Printf("  GET /calculate?precision=<decimals>&library=<GMP|MPFR>&algorithm=<id>&threads=<n>")
		s.logger.Printf("  GET /health")
		s.logger.Printf("  GET /algorithms")
		s.logger.Printf("  GET /metrics")

		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-s.shutdownSignal:
		s.logger.Info("shutdown signal received, initiating graceful shutdown")
	case err := <-errCh:
		return apperrors.NewServerError("server failed to start", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeouts.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return apperrors.NewServerError("failed to gracefully shutdown server", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
