package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/exchange-service/internal/api/http"
	"github.com/spec-kit/exchange-service/internal/api/http/handlers"
	"github.com/spec-kit/exchange-service/internal/auth"
	"github.com/spec-kit/exchange-service/internal/config"
	"github.com/spec-kit/exchange-service/internal/events"
	"github.com/spec-kit/exchange-service/internal/observability"
	"github.com/spec-kit/exchange-service/internal/persistence"
	"github.com/spec-kit/exchange-service/internal/repository"
	"github.com/spec-kit/exchange-service/internal/service"
	"github.com/spec-kit/exchange-service/internal/worker"
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
	skillRepo := repository.NewSkillRepository(pool)
	serviceRepo := repository.NewServiceRepository(pool)
	ledgerRepo := repository.NewLedgerRepository(pool, cfg.Exchange.TxMaxRetries)
	exchangeRepo := repository.NewExchangeRepository(pool, cfg.Exchange.TxMaxRetries)
	ratingRepo := repository.NewRatingRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:  userRepo,
		SkillRepo: skillRepo,
	})
	catalogService := service.NewCatalogService(serviceRepo)
	exchangeService := service.NewExchangeService(service.ExchangeDependencies{
		ExchangeRepo: exchangeRepo,
		ServiceRepo:  serviceRepo,
		UserRepo:     userRepo,
		LedgerRepo:   ledgerRepo,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		DefaultHours: cfg.Exchange.DefaultDurationHours,
	})
	ratingService := service.NewRatingService(service.RatingDependencies{
		RatingRepo:   ratingRepo,
		ExchangeRepo: exchangeRepo,
		Cache:        redis,
		CacheTTL:     cfg.Exchange.ReputationCacheTTL(),
		Dispatcher:   dispatcher,
	})
	messageService := service.NewMessageService(messageRepo, exchangeRepo, dispatcher)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	usersHandler := handlers.NewUsersHandler(authService, ratingService)
	servicesHandler := handlers.NewServicesHandler(catalogService)
	exchangesHandler := handlers.NewExchangesHandler(exchangeService, messageService, ratingService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Services:       servicesHandler,
		Exchanges:      exchangesHandler,
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
