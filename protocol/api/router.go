package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/guileen/gridsource/engine/config"
	"github.com/guileen/gridsource/metrics"
)

// NewRouter builds the HTTP surface around h
func NewRouter(h *RESTHandler, cfg config.ServerConfig, m *metrics.Metrics) (chi.Router, error) {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(m))

	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter, err := NewRateLimiter(rate.Limit(cfg.RateLimit), burst)
		if err != nil {
			return nil, err
		}
		r.Use(limiter.Middleware)
	}

	h.RegisterRoutes(r)
	return r, nil
}
