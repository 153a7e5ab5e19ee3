package api

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/metrics"
)

const RequestIDHeader = "X-Request-ID"

// maxTrackedClients bounds the per-client limiter table; the least recently
// seen clients are forgotten first.
const maxTrackedClients = 10000

// RequestID propagates the caller's request ID or assigns a new one, and
// attaches it with the client address to the request context for logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := logger.WithRequestID(r.Context(), id)
		ctx = logger.WithContextValue(ctx, logger.ClientKey, clientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs each request at debug level and counts it by route
func RequestLogger(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			m.ObserveHTTP(route, status)
			logger.WithContext(r.Context()).Debug("http request",
				logger.String("method", r.Method),
				logger.String("route", route),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("elapsed", time.Since(start)))
		})
	}
}

// RateLimiter applies a token bucket per client address
type RateLimiter struct {
	limiters *lru.Cache[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(limit rate.Limit, burst int) (*RateLimiter, error) {
	limiters, err := lru.New[string, *rate.Limiter](maxTrackedClients)
	if err != nil {
		return nil, err
	}
	return &RateLimiter{
		limiters: limiters,
		rate:     limit,
		burst:    burst,
	}, nil
}

// Allow reports whether client may make a request now
func (rl *RateLimiter) Allow(client string) bool {
	limiter, ok := rl.limiters.Get(client)
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		if prev, found, _ := rl.limiters.PeekOrAdd(client, limiter); found {
			limiter = prev
		}
	}
	return limiter.Allow()
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := clientIP(r)
		if !rl.Allow(client) {
			logger.WarnContext(r.Context(), "rate limit exceeded")
			writeJSON(w, http.StatusTooManyRequests, ErrorResponse{
				Error:     "rate limit exceeded",
				RequestID: w.Header().Get(RequestIDHeader),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
