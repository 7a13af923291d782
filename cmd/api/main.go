package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/quote-service/internal/api/http"
	"github.com/spec-kit/quote-service/internal/api/http/handlers"
	"github.com/spec-kit/quote-service/internal/auth"
	"github.com/spec-kit/quote-service/internal/config"
	"github.com/spec-kit/quote-service/internal/events"
	"github.com/spec-kit/quote-service/internal/observability"
	"github.com/spec-kit/quote-service/internal/persistence"
	"github.com/spec-kit/quote-service/internal/repository"
	"github.com/spec-kit/quote-service/internal/service"
	"github.com/spec-kit/quote-service/internal/worker"
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
	quoteRepo := repository.NewQuoteRepository(pool)
	approvalRepo := repository.NewQuoteApprovalRepository(pool)
	rateRepo := repository.NewRateProfileRepository(pool)
	ruleRepo := repository.NewCalculationRuleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, staffRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), staffRepo)

	lookupService := service.NewLookupService(rateRepo, ruleRepo, redis, cfg.Quote.LookupCacheTTL(), logger)
	quoteService := service.NewQuoteService(service.QuoteDependencies{
		QuoteRepo:  quoteRepo,
		TicketRepo: ticketRepo,
		Lookups:    lookupService,
		Calculator: service.NewQuoteCalculator(),
		Approvals:  service.NewApprovalTracker(approvalRepo, quoteRepo),
		Dispatcher: dispatcher,
	})

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Staff:          handlers.NewStaffHandler(authService),
		Quotes:         handlers.NewQuotesHandler(quoteService),
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
