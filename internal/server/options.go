package server

import (
	"time"

	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/service"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger replaces the default logger. nil is ignored.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithService injects the calculation service, typically a stub in tests.
func WithService(svc service.Service) Option {
	return func(s *Server) {
		if svc != nil {
			s.service = svc
		}
	}
}

// WithTimeouts sets the server timeouts.
func WithTimeouts(timeouts Timeouts) Option {
	return func(s *Server) {
		s.timeouts = timeouts
	}
}

// WithSecurityConfig replaces the security settings, including the
// precision and thread caps handed to the default service.
//
// Parameters:
//   - cfg: The security settings. A zero MaxThreads disables the cap.
func WithSecurityConfig(cfg SecurityConfig) Option {
	return func(s *Server) {
		s.securityConfig = cfg
	}
}

// WithRateLimiter replaces the default limiter.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) {
		if rl != nil {
			s.rateLimiter = rl
		}
	}
}

// Timeouts holds the HTTP server timeouts.
type Timeouts struct {
	// RequestTimeout bounds a single calculation.
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
}

func DefaultServerTimeouts() Timeouts {
	return Timeouts{
		RequestTimeout:  5 * time.Minute,
		ShutdownTimeout: 30 * time.Second,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Minute,
		IdleTimeout:     2 * time.Minute,
	}
}
