package server

import (
	"net/http"
	"runtime"
	"slices"
	"strings"
)

// SecurityConfig holds the security headers and request limits.
type SecurityConfig struct {
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	// MaxPrecision caps the decimals a request may ask for. 0 disables the cap.
	MaxPrecision int
	// MaxThreads caps the workers a request may start. 0 disables the cap.
	MaxThreads int
}

// DefaultSecurityConfig allows any origin, caps the precision at the size
// of the bundled reference file and the threads at the logical CPU count.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		MaxPrecision:   50_000,
		MaxThreads:     runtime.NumCPU(),
	}
}

func (c SecurityConfig) allowedOrigin(origin string) string {
	if slices.Contains(c.AllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// SecurityMiddleware sets the hardening headers, the CORS headers when
// enabled, and answers preflight requests.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin := config.allowedOrigin(r.Header.Get("Origin")); origin != "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
				h.Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next(w, r)
	}
}
