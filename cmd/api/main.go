package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/escalation-service/internal/api/http"
	"github.com/spec-kit/escalation-service/internal/api/http/handlers"
	"github.com/spec-kit/escalation-service/internal/auth"
	"github.com/spec-kit/escalation-service/internal/config"
	"github.com/spec-kit/escalation-service/internal/escalation"
	"github.com/spec-kit/escalation-service/internal/events"
	"github.com/spec-kit/escalation-service/internal/mail"
	"github.com/spec-kit/escalation-service/internal/observability"
	"github.com/spec-kit/escalation-service/internal/persistence"
	"github.com/spec-kit/escalation-service/internal/repository"
	"github.com/spec-kit/escalation-service/internal/service"
	"github.com/spec-kit/escalation-service/internal/worker"
	"github.com/spec-kit/escalation-service/internal/ws"
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

	hours, err := escalation.NewWorkingHours(cfg.Escalation.Timezone)
	if err != nil {
		logger.Fatal("invalid escalation timezone", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	historyRepo := repository.NewEscalationHistoryRepository(pool)

	policy := escalation.DefaultPolicy()
	evaluator := escalation.NewEvaluator(policy, hours)
	watchdog := escalation.NewWatchdog(policy)
	metrics := observability.NewSweepMetrics()

	broadcaster := events.NewRedisBroadcaster(redis.Client, logger)
	mailer := mail.NewSMTPMailer(cfg.Mail)
	notifier := service.NewNotificationService(mailer, logger, cfg.Escalation)

	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:  ticketRepo,
		Evaluator:   evaluator,
		Watchdog:    watchdog,
		Notifier:    notifier,
		Broadcaster: broadcaster,
		Metrics:     metrics,
		Logger:      logger,
		Location:    hours.Location(),
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:       ticketRepo,
		UserRepo:         userRepo,
		NotificationRepo: notificationRepo,
		Notifier:         notifier,
		Broadcaster:      broadcaster,
		Logger:           logger,
		Location:         hours.Location(),
	})
	authService := service.NewAuthService(cfg.Auth, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	hub := ws.NewHub(broadcaster, notificationRepo, ticketRepo, userRepo, logger, hours.Location())

	sweeper := worker.NewEscalationWorker(escalationService, cfg.Escalation.SweepInterval(), logger)
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, historyRepo),
		Notifications:  handlers.NewNotificationsHandler(notificationRepo, userRepo, hours.Location()),
		Ops:            handlers.NewOpsHandler(metrics),
		WS:             handlers.NewWSHandler(hub, logger),
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
