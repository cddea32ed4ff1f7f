package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shieldscan/shield-backend/api/controllers"
	"github.com/shieldscan/shield-backend/api/middleware"
	"github.com/shieldscan/shield-backend/internal/users"
	"github.com/shieldscan/shield-backend/pkg/config"
	"github.com/shieldscan/shield-backend/pkg/db"
	"github.com/shieldscan/shield-backend/pkg/logger"
	"github.com/shieldscan/shield-backend/pkg/metrics"
	"github.com/shieldscan/shield-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTPMetrics,
	usersService users.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	resetPolicy := middleware.NewRateLimitPolicy(
		"password_reset",
		cfg.RateLimit.ResetWindow,
		cfg.RateLimit.ResetIPLimit,
		cfg.RateLimit.ResetEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Get("/", controllers.UsersList(usersService, logg))
		r.Post("/", controllers.UsersCreate(usersService, logg))
		r.Get("/roles", controllers.UsersRoles(usersService, logg))
		r.Get("/stats", controllers.UsersStats(usersService, logg))
		r.Patch("/bulk", controllers.UsersBulkUpdate(usersService, logg))
		r.Delete("/bulk", controllers.UsersBulkDelete(usersService, logg))
		r.With(middleware.RateLimit(resetPolicy, redisClient, logg)).
			Post("/password-reset/request", controllers.UsersPasswordReset(usersService, logg))

		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", controllers.UsersGet(usersService, logg))
			r.Put("/", controllers.UsersUpdate(usersService, logg))
			r.Delete("/", controllers.UsersDelete(usersService, logg))
			r.Patch("/activate", controllers.UsersActivate(usersService, logg))
			r.Patch("/deactivate", controllers.UsersDeactivate(usersService, logg))
			r.Put("/namespaces", controllers.UsersUpdateNamespaces(usersService, logg))
			r.Get("/activity", controllers.UsersActivity(usersService, logg))
		})
	})

	return r
}
