package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/accounts-backend/api/controllers"
	"github.com/angelmondragon/accounts-backend/api/middleware"
	"github.com/angelmondragon/accounts-backend/internal/users"
	"github.com/angelmondragon/accounts-backend/pkg/config"
	"github.com/angelmondragon/accounts-backend/pkg/logger"
	"github.com/angelmondragon/accounts-backend/pkg/metrics"
)

// RateLimiter backs the registration throttle; nil disables it.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, limit int64, window time.Duration, scope ...string) (bool, int64, error)
}

// Deps is everything the HTTP surface needs.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Users       users.Service
	RateLimiter RateLimiter
	// Ready lists dependencies pinged by /health/ready.
	Ready    map[string]controllers.Pinger
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics
}

func NewRouter(deps Deps) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	registerPolicy := middleware.NewRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, logg, deps.Ready))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.Performer(cfg.JWT, logg))
		r.With(middleware.RateLimit(registerPolicy, deps.RateLimiter, logg)).Post("/register", controllers.UserRegister(deps.Users, logg))
		r.Get("/", controllers.UserList(deps.Users, logg))
		r.Get("/{id}", controllers.UserGet(deps.Users, logg))
		r.Put("/{id}", controllers.UserUpdate(deps.Users, logg))
		r.Put("/{id}/role-status", controllers.UserUpdateRoleStatus(deps.Users, logg))
	})

	return r
}
