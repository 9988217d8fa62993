package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cropcareapp/cropcare-backend/api/controllers"
	"github.com/cropcareapp/cropcare-backend/api/middleware"
	"github.com/cropcareapp/cropcare-backend/internal/auth"
	"github.com/cropcareapp/cropcare-backend/internal/reset"
	"github.com/cropcareapp/cropcare-backend/internal/users"
	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
	"github.com/cropcareapp/cropcare-backend/pkg/metrics"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              pinger
	Cache           pinger
	RateLimiter     rateLimiterStore
	Metrics         *metrics.HTTPMetrics
	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	ResetService    reset.Service
}

// NewRouter assembles the API routes with their middleware stack.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.Metrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Cache, logg))
	})

	if p.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, p.RateLimiter, logg)).
			Post("/register", controllers.AuthRegister(p.RegisterService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.RateLimiter, logg)).
			Post("/login", controllers.AuthLogin(p.AuthService, logg))

		r.Get("/user/{username}", controllers.GetUserByUsername(p.UsersService, logg))
		r.Get("/userbyid/{id}", controllers.GetUserByID(p.UsersService, logg))
		r.Get("/users", controllers.ListUsers(p.UsersService, logg))

		r.Get("/generateOTP", controllers.GenerateOTP(p.ResetService, logg))
		r.Get("/verifyOTP", controllers.VerifyOTP(p.ResetService, logg))
		r.Get("/createResetSession", controllers.CreateResetSession(p.ResetService, logg))
		r.Put("/resetPassword", controllers.ResetPassword(p.ResetService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Put("/updateuser", controllers.UpdateUser(p.UsersService, logg))
			r.Delete("/deleteuser/{id}", controllers.DeleteUser(p.UsersService, logg))
		})
	})

	return r
}
