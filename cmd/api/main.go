package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cassianoaxe/endurancy-support/internal/api/http"
	"github.com/cassianoaxe/endurancy-support/internal/api/http/handlers"
	"github.com/cassianoaxe/endurancy-support/internal/auth"
	"github.com/cassianoaxe/endurancy-support/internal/config"
	"github.com/cassianoaxe/endurancy-support/internal/events"
	"github.com/cassianoaxe/endurancy-support/internal/observability"
	"github.com/cassianoaxe/endurancy-support/internal/persistence"
	"github.com/cassianoaxe/endurancy-support/internal/repository"
	"github.com/cassianoaxe/endurancy-support/internal/service"
	"github.com/cassianoaxe/endurancy-support/internal/suggest"
	"github.com/cassianoaxe/endurancy-support/internal/worker"
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
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	historyRepo := repository.NewTicketHistoryRepository(pool)

	guard := service.NewAccessGuard(ticketRepo)
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		HistoryRepo: historyRepo,
		Guard:       guard,
		Dispatcher:  dispatcher,
	})
	applyService := service.NewApplyService(service.ApplyDependencies{
		TicketRepo:  ticketRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		HistoryRepo: historyRepo,
		Guard:       guard,
		Dispatcher:  dispatcher,
	})
	authService := service.NewAuthService(cfg.Auth, userRepo)

	statusAdvisor := suggest.NewStatusAdvisor()
	if cfg.Suggest.StaleAfterDays > 0 {
		statusAdvisor.StaleAfter = time.Duration(cfg.Suggest.StaleAfterDays) * 24 * time.Hour
	}
	engine := suggest.NewEngine(
		statusAdvisor,
		suggest.NewPriorityAdvisor(),
		suggest.NewAssignmentAdvisor(userRepo, &suggest.LeastOpenTickets{Counter: ticketRepo}),
		suggest.NewResponseAdvisor(),
		suggest.NewRelatedAdvisor(ticketRepo),
		logger,
	)
	suggestionCache := suggest.NewCache(redis.Client, cfg.Suggest.CacheTTL(), logger)
	suggestionService := service.NewSuggestionService(guard, commentRepo, engine, suggestionCache, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Suggestions:    handlers.NewSuggestionsHandler(suggestionService, applyService),
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
