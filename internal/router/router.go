package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mw "github.com/fsiwi-hka/NextcloudRegisterIWI/internal/middleware"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/middleware/metrics"
	rl "github.com/fsiwi-hka/NextcloudRegisterIWI/internal/middleware/ratelimiter"
	"github.com/fsiwi-hka/NextcloudRegisterIWI/internal/setup"
)

// New creates and configures the chi router with all the routes.
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(mw.RequestID)
	r.Use(metrics.Middleware)

	// setup CORS for the registration frontend
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.Config.Public.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	// Strict CSP: JSON API only, no scripts/styles needed
	apiCSP := "default-src 'none'; frame-ancestors 'none'"
	r.Use(mw.SecurityHeadersWithCSP(deps.Config.Public.SecureCookies, apiCSP))

	h := deps.Handler

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// Credential checks are a brute-force target; throttle per IP,
		// per identifier and globally.
		auth := r.With(
			mw.RateLimit(rl.New(1, 3, 1*time.Hour), mw.GetIP),
			mw.RateLimit(rl.New(1.0/2, 3, 1*time.Hour), mw.GetIdentifierFromBody),
			mw.GlobalRateLimit(rl.New(100, 100, 1*time.Hour)),
		)
		auth.Post("/auth", h.Auth)

		user := r.With(
			mw.RateLimit(rl.New(1.0/2, 2, 1*time.Hour), mw.GetIP),
			mw.GlobalRateLimit(rl.New(50, 50, 1*time.Hour)),
		)
		user.Post("/nextcloud/user", h.CreateUser)
	})

	return r
}
