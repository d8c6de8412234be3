package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter creates a new Chi router with all middleware and routes
func NewRouter(handler *Handler, auth *ServiceAuth, rateLimiter *RateLimiter, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Get("/readyz", handler.Readyz)

	r.With(rateLimiter.Middleware).Get("/r/{code}", handler.Landing)

	r.Route("/api/v1/referrals", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter.Middleware)
			r.Post("/clicks", handler.TrackClick)
			r.Post("/conversions", handler.RecordConversion)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)
			r.Post("/codes", handler.IssueCode)
			r.Get("/resolve", handler.Resolve)
			r.Get("/{code}/stats", handler.Stats)
		})
	})

	return r
}
