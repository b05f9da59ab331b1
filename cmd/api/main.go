package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/coursehub/course-service/internal/api/http"
	"github.com/coursehub/course-service/internal/api/http/handlers"
	"github.com/coursehub/course-service/internal/auth"
	"github.com/coursehub/course-service/internal/config"
	"github.com/coursehub/course-service/internal/domain"
	"github.com/coursehub/course-service/internal/events"
	"github.com/coursehub/course-service/internal/observability"
	"github.com/coursehub/course-service/internal/persistence"
	"github.com/coursehub/course-service/internal/repository"
	"github.com/coursehub/course-service/internal/service"
	"github.com/coursehub/course-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.UsesDefaultSecret() && cfg.App.Env != "development" {
		logger.Warn("AUTH_JWT_SECRET is empty or the development default; issued tokens are forgeable")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	codec, err := auth.NewCodec(cfg.Auth.JWTSecret, cfg.Auth.Algorithm)
	if err != nil {
		logger.Fatal("failed to build token codec", zap.Error(err))
	}
	policy, err := auth.ParsePolicy(cfg.Auth.AccessPolicy)
	if err != nil {
		logger.Fatal("failed to parse access policy", zap.Error(err))
	}

	hashPool := worker.NewHashPool(auth.NewHasher(cfg.Auth.BcryptCost), cfg.Auth.HashWorkers)
	throttle := auth.NewLoginThrottle(redis.ClientHandle(), logger, cfg.Auth.ThrottleMaxAttempts, cfg.Auth.ThrottleWindowSeconds)
	guard := auth.NewGuard(policy, domain.PrivilegedRoles()...)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
		HashPool:          hashPool,
		Codec:             codec,
		Throttle:          throttle,
		Dispatcher:        dispatcher,
		Logger:            logger,
	})
	userService := service.NewUserService(userRepo, guard, hashPool, dispatcher, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	if pool != nil {
		seed := service.NewSeedService(userRepo, hashPool, logger)
		if err := seed.Run(ctx, cfg.Seed); err != nil {
			logger.Fatal("failed to seed accounts", zap.Error(err))
		}
	}

	authMiddleware := auth.NewMiddleware(authService)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(userService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
