package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter allows a fixed number of requests per client IP and minute,
// refilled continuously.
type RateLimiter struct {
	mu       sync.Mutex
	clients  map[string]*client
	limit    rate.Limit
	burst    int
	cleanup  time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig configures a RateLimiter.
type RateLimiterConfig struct {
	// RequestsPerMinute defaults to 60.
	RequestsPerMinute int
	// CleanupInterval defaults to 5 minutes.
	CleanupInterval time.Duration
}

// DefaultRateLimiterConfig returns the default limiter settings.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerMinute: 60,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewRateLimiter starts a limiter and its cleanup goroutine. Call Stop to
// release it.
//
// Parameters:
//   - config: The per-client budget and the cleanup cadence.
//
// Returns:
//   - *RateLimiter: A running limiter.
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 60
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = 5 * time.Minute
	}

	rl := &RateLimiter{
		clients:  make(map[string]*client),
		limit:    rate.Every(time.Minute / time.Duration(config.RequestsPerMinute)),
		burst:    config.RequestsPerMinute,
		cleanup:  config.CleanupInterval,
		stopChan: make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

// Allow consumes a token for clientIP and reports whether one was left.
//
// Parameters:
//   - clientIP: The client address, without port.
//
// Returns:
//   - bool: True if the request may proceed.
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	c, ok := rl.clients[clientIP]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[clientIP] = c
	}
	c.lastSeen = time.Now()
	rl.mu.Unlock()

	return c.limiter.Allow()
}

// cleanupLoop forgets clients idle long enough for their bucket to be full
// again.
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			for ip, c := range rl.clients {
				if time.Since(c.lastSeen) > 2*time.Minute {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.stopChan:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}

// RateLimitMiddleware answers 429 once a client exhausts its tokens.
func RateLimitMiddleware(rl *RateLimiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"Too Many Requests","message":"Rate limit exceeded. Please try again later."}`))
			return
		}
		next(w, r)
	}
}

// clientIP prefers the first X-Forwarded-For entry, then X-Real-IP, then
// the remote address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.Trim(r.RemoteAddr, "[]")
	}
	return host
}
