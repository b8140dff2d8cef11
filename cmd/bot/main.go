package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-bot/internal/api/http"
	"github.com/spec-kit/ticket-bot/internal/api/http/handlers"
	"github.com/spec-kit/ticket-bot/internal/auth"
	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/observability"
	"github.com/spec-kit/ticket-bot/internal/platform/discord"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/internal/store"
	"github.com/spec-kit/ticket-bot/internal/ticket"
	"github.com/spec-kit/ticket-bot/internal/transcript"
	"github.com/spec-kit/ticket-bot/internal/worker"
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

	backend, cleanup, err := newBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to init store backend", zap.Error(err))
	}
	defer cleanup()

	st := store.New(backend, logger)

	adapter, err := discord.NewAdapter(cfg.Discord.Token, logger)
	if err != nil {
		logger.Fatal("failed to build discord session", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	deleter := worker.NewDeleter(adapter, st, cfg.Discord.DeleteDelay(), logger)
	transcripts := transcript.NewHTMLGenerator(adapter, logger)

	engine := ticket.NewEngine(ticket.Dependencies{
		Store:       st,
		Client:      adapter,
		Transcripts: transcripts,
		Deleter:     deleter,
		Dispatcher:  dispatcher,
		Config:      cfg.Discord,
		Logger:      logger,
	})
	adapter.SetInteractionHandler(engine.HandleInteraction)

	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notifications.RegisterHandlers()

	if err := adapter.Open(); err != nil {
		logger.Fatal("failed to open gateway connection", zap.Error(err))
	}
	defer adapter.Close() //nolint:errcheck

	statsService := service.NewStatsService(st, adapter, cfg.Discord.StaffRoleID)
	panelService := service.NewPanelService(st, adapter, dispatcher, logger)

	var tokens *auth.TokenManager
	var authMiddleware *auth.Middleware
	if cfg.Auth.Enabled() {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
		authMiddleware = auth.NewMiddleware(tokens)
	}

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(),
		Dashboard:      handlers.NewDashboardHandler(statsService, panelService, tokens, cfg.Auth),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	deleter.Stop()
	_ = app.Shutdown()
}

// newBackend selects the document store backend by driver name. The
// returned cleanup releases connections and is a no-op for the file
// backend.
func newBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Backend, func(), error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "postgres":
		backend, err := store.NewPostgresBackend(ctx, cfg.Postgres, logger)
		if err != nil {
			return nil, nil, err
		}
		return backend, backend.Close, nil
	case "redis":
		backend := store.NewRedisBackend(cfg.Redis, logger)
		return backend, backend.Close, nil
	default:
		return store.NewFileBackend(cfg.Store.FilePath), func() {}, nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
