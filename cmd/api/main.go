package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/project-desk/internal/api/http"
	"github.com/spec-kit/project-desk/internal/api/http/handlers"
	"github.com/spec-kit/project-desk/internal/auth"
	"github.com/spec-kit/project-desk/internal/config"
	"github.com/spec-kit/project-desk/internal/events"
	"github.com/spec-kit/project-desk/internal/observability"
	"github.com/spec-kit/project-desk/internal/persistence"
	"github.com/spec-kit/project-desk/internal/repository"
	"github.com/spec-kit/project-desk/internal/service"
	"github.com/spec-kit/project-desk/internal/session"
	"github.com/spec-kit/project-desk/internal/worker"
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
	serviceRepo := repository.NewServiceRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	projectRepo := repository.NewProjectRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	sessionStore := session.NewRedisStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:     userRepo,
		SessionStore: sessionStore,
	})
	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:    userRepo,
		ProjectRepo: projectRepo,
	})
	catalogService := service.NewCatalogService(serviceRepo)
	workflowService := service.NewWorkflowService(cfg.Workflow, service.WorkflowDependencies{
		RequestRepo: requestRepo,
		ProjectRepo: projectRepo,
		ServiceRepo: serviceRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})
	messageService := service.NewMessageService(messageRepo, userService, dispatcher)
	statsService := service.NewStatsService(service.StatsDependencies{
		UserRepo:    userRepo,
		ServiceRepo: serviceRepo,
		RequestRepo: requestRepo,
		ProjectRepo: projectRepo,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	if err := authService.EnsureBootstrapAdmin(ctx, cfg.Bootstrap, logger); err != nil {
		logger.Fatal("failed to bootstrap admin account", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), sessionStore, userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Admin:          handlers.NewAdminHandler(userService, catalogService, workflowService, statsService),
		Client:         handlers.NewClientHandler(catalogService, workflowService),
		Employee:       handlers.NewEmployeeHandler(workflowService),
		Messages:       handlers.NewMessagesHandler(messageService, userService),
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
