package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/cropcareapp/cropcare-backend/api/routes"
	"github.com/cropcareapp/cropcare-backend/internal/auth"
	"github.com/cropcareapp/cropcare-backend/internal/reset"
	"github.com/cropcareapp/cropcare-backend/internal/users"
	"github.com/cropcareapp/cropcare-backend/pkg/config"
	"github.com/cropcareapp/cropcare-backend/pkg/db"
	"github.com/cropcareapp/cropcare-backend/pkg/instance"
	"github.com/cropcareapp/cropcare-backend/pkg/logger"
	"github.com/cropcareapp/cropcare-backend/pkg/mail"
	"github.com/cropcareapp/cropcare-backend/pkg/metrics"
	"github.com/cropcareapp/cropcare-backend/pkg/migrate"
	"github.com/cropcareapp/cropcare-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	var mailer mail.Sender = mail.Noop{}
	if cfg.SMTP.Enabled() {
		mailer = mail.New(cfg.SMTP)
	} else {
		logg.Warn(context.Background(), "smtp not configured, recovery codes are response-only")
	}

	resetService, err := reset.NewService(reset.ServiceParams{
		Store:          reset.NewRedisFlowStore(redisClient),
		UserRepo:       userRepo,
		Mailer:         mailer,
		Logger:         logg,
		ResetConfig:    cfg.Reset,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create recovery service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Cache:           redisClient,
			RateLimiter:     redisClient,
			Metrics:         metrics.NewHTTPMetrics(),
			AuthService:     authService,
			RegisterService: registerService,
			UsersService:    usersService,
			ResetService:    resetService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
