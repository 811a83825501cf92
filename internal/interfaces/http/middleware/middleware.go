// Package middleware provides HTTP middleware for Chi router.
// Middleware components handle cross-cutting concerns like logging,
// rate limiting, and request tracing.
//
// Chi Middleware Philosophy:
//   - Uses standard net/http handlers
//   - Composable middleware chain
//   - Context-based request scoping
//   - Compatible with any net/http middleware
package middleware

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/http"
	"net/netip"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/hapkiduki/apnacart/internal/application/dto"
	"github.com/hapkiduki/apnacart/internal/application/port"
	"github.com/hapkiduki/apnacart/pkg/logger"
)

// RequestIDHeader is the header name for request IDs.
const RequestIDHeader = "X-Request-ID"

// GetRequestID extracts the request ID from the context.
//
// Parameters:
//   - ctx: the request context
//
// Returns:
//   - string: the request ID, or empty string if not found
func GetRequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, dto.NewErrorResponse[any](code, message))
}

// RequestID generates a unique request ID for each request.
// The ID is added to the response headers and request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Check if request already has an ID (e.g., from a gateway)
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.New().String()
		}

		ctx := logger.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CartContext copies the {cartID} route parameter into the request context
// so that log lines carry it. Mount it on routes that declare the parameter.
func CartContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cartID := chi.URLParam(r, "cartID"); cartID != "" {
			r = r.WithContext(logger.ContextWithCartID(r.Context(), cartID))
		}
		next.ServeHTTP(w, r)
	})
}

// Logger returns a middleware that logs HTTP request.
// It logs request method, path, status, latency, and client IP.
//
// Parameters:
//   - log: The logger to use
//
// Returns:
//   - func(http.Handler) http.Handler: the middleware function
func Logger(log port.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// Wrap response writer to capture status code
			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.statusCode,
				"bytes", ww.bytes,
				"latency_ms", time.Since(start).Milliseconds(),
				"client_ip", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			}

			reqLog := log.WithContext(r.Context())
			switch {
			case ww.statusCode >= http.StatusInternalServerError:
				reqLog.Error("HTTP Request", fields...)
			case ww.statusCode >= http.StatusBadRequest:
				reqLog.Warn("HTTP Request", fields...)
			default:
				reqLog.Info("HTTP Request", fields...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
	written    bool
}

// WriteHeader captures the status code.
func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

// Write implements http.ResponseWriter.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.statusCode = http.StatusOK
		rw.written = true
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Recoverer returns a middleware that recovers from panics.
// It logs the panic and returns a 500 Internal Server Error response.
func Recoverer(log port.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}

					log.WithContext(r.Context()).Error("Panic recovered",
						"error", err,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					writeError(w, r, http.StatusInternalServerError, dto.CodeInternal, "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiterConfig contains rate limiter configuration.
type RateLimiterConfig struct {
	// RequestsPerSecond is the number of requests allowed per second.
	RequestsPerSecond float64

	// Burst is the maximum burst size.
	Burst int

	// IdleTTL drops a client's bucket after this long without requests.
	IdleTTL time.Duration

	// KeyFunc extracts the key for rate limiting (e.g., client IP).
	KeyFunc func(*http.Request) string
}

// DefaultRateLimiterConfig returns the default rate limiter configuration.
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		Burst:             20,
		IdleTTL:           10 * time.Minute,
		KeyFunc:           ClientIP,
	}
}

// ClientIP returns the host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter returns a middleware that limits request rate per client.
// It uses a token bucket algorithm with per-client buckets; idle buckets
// are pruned while serving requests.
func RateLimiter(config RateLimiterConfig) func(http.Handler) http.Handler {
	if config.KeyFunc == nil {
		config.KeyFunc = ClientIP
	}
	if config.IdleTTL <= 0 {
		config.IdleTTL = 10 * time.Minute
	}

	var (
		mu        sync.Mutex
		limiters  = make(map[string]*clientLimiter)
		lastPrune = time.Now()
	)

	getLimiter := func(key string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		if now.Sub(lastPrune) > config.IdleTTL {
			for k, cl := range limiters {
				if now.Sub(cl.lastSeen) > config.IdleTTL {
					delete(limiters, k)
				}
			}
			lastPrune = now
		}

		cl, exists := limiters[key]
		if !exists {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst)}
			limiters[key] = cl
		}
		cl.lastSeen = now
		return cl.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !getLimiter(config.KeyFunc(r)).Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, please try again later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeaders returns a middleware that adds security headers.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Strict transport security (if using HTTPS)
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

		// Content Security Policy
		w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src 'self' https: data:")

		// Referrer Policy
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// APIVersion returns a middleware that adds API version header.
func APIVersion(version string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-API-Version", version)
			next.ServeHTTP(w, r)
		})
	}
}

// ContentTypeJSON ensure request have JSON content type for write operations
// that carry a body.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if r.ContentLength != 0 {
				mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if err != nil || mediaType != "application/json" {
					writeError(w, r, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// MaxBodySize limits request bodies to limit bytes.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Timeout returns a middleware that enforces a request timeout.
// Handlers must honour the request context; when the deadline passes and
// nothing has been written yet the client gets a 504.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(ctx))

			if !ww.written && errors.Is(ctx.Err(), context.DeadlineExceeded) {
				writeError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out")
			}
		})
	}
}

// ParseTrustedProxies parses proxy addresses given as single IPs or CIDR ranges.
func ParseTrustedProxies(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("trusted proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// RealIP replaces RemoteAddr with the client address reported by a trusted
// proxy. Forwarding headers from any other peer are ignored. X-Forwarded-For
// is read right to left and the first hop that is not a trusted proxy wins.
//
// Parameters:
//   - trusted: proxies allowed to set X-Forwarded-For and X-Real-IP
//
// Returns:
//   - func(http.Handler) http.Handler: the middleware
func RealIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	isTrusted := func(addr netip.Addr) bool {
		for _, prefix := range trusted {
			if prefix.Contains(addr) {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			peer, ok := parseIP(ClientIP(r))
			if !ok || !isTrusted(peer) {
				next.ServeHTTP(w, r)
				return
			}

			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				hops := strings.Split(xff, ",")
				for i := len(hops) - 1; i >= 0; i-- {
					hop, ok := parseIP(hops[i])
					if !ok {
						break
					}
					r.RemoteAddr = hop.String()
					if !isTrusted(hop) {
						break
					}
				}
			} else if xrip, ok := parseIP(r.Header.Get("X-Real-IP")); ok {
				r.RemoteAddr = xrip.String()
			}

			next.ServeHTTP(w, r)
		})
	}
}

func parseIP(raw string) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}
