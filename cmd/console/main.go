package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lorrc/service-desk-console/internal/adapters/primary/channel"
	"github.com/lorrc/service-desk-console/internal/adapters/secondary/rest"
	"github.com/lorrc/service-desk-console/internal/auth"
	"github.com/lorrc/service-desk-console/internal/config"
	"github.com/lorrc/service-desk-console/internal/core/domain"
	apperrors "github.com/lorrc/service-desk-console/internal/core/errors"
	"github.com/lorrc/service-desk-console/internal/core/services"
	"github.com/lorrc/service-desk-console/internal/infrastructure/logging"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting console",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. REST client and session
	apiClient, err := rest.NewClient(rest.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	}, logger)
	if err != nil {
		logger.Error("failed to build API client", "error", err)
		os.Exit(1)
	}

	sessionStore := auth.NewFileSessionStore(cfg.Session.Path)
	authClient := rest.NewAuthClient(apiClient)

	session, err := establishSession(ctx, cfg, sessionStore, authClient, logger)
	if err != nil {
		logger.Error("failed to establish session", "error", err)
		os.Exit(1)
	}
	apiClient.SetToken(session.Token)
	logger = logger.With("user_id", session.User.ID)
	logger.Info("session ready", "role", session.User.Role, "email", session.User.Email)

	// Global 401 policy: clear the persisted session and stop; the next run
	// is the login entry point.
	sessionLost := make(chan struct{}, 1)
	apiClient.OnUnauthorized(func() {
		if err := sessionStore.Clear(); err != nil {
			logger.Warn("failed to clear session", "error", err)
		}
		select {
		case sessionLost <- struct{}{}:
		default:
		}
	})

	// 4. Event channel and notification store
	eventChannel := channel.New(channel.Config{
		URL:         cfg.Channel.URL,
		DialTimeout: cfg.Channel.DialTimeout,
		MaxAttempts: cfg.Channel.MaxAttempts,
		BaseDelay:   cfg.Channel.BaseDelay,
		MaxDelay:    cfg.Channel.MaxDelay,
	}, logger)

	notifications := services.NewNotificationStore(rest.NewNotificationClient(apiClient), logger)
	detach := notifications.Attach(eventChannel)
	defer detach()

	notifications.Subscribe(func() {
		logger.Info("notification feed changed", "unread", notifications.UnreadCount())
	})

	eventChannel.Connect(ctx, session.User.ID)
	defer eventChannel.Close()

	if err := notifications.LoadInitial(ctx); err != nil {
		logger.Warn("continuing with empty notification feed", "error", err)
	}

	// 5. List controllers
	listOpts := services.ListControllerOptions{
		PageSize:     cfg.Lists.PageSize,
		SearchSettle: cfg.Lists.SearchSettle,
	}

	tickets := services.NewTicketDesk(rest.NewTicketClient(apiClient), listOpts, logger)
	tickets.List().Refresh(ctx)
	defer tickets.List().Stop()

	role := session.User.Role
	if role.CanManageCategories() {
		categories := services.NewCategoryAdmin(rest.NewCategoryClient(apiClient), listOpts, logger)
		categories.List().Refresh(ctx)
		defer categories.List().Stop()
	}
	if role.CanManageUsers() {
		users := services.NewUserAdmin(rest.NewUserClient(apiClient), session, listOpts, logger)
		users.List().Refresh(ctx)
		defer users.List().Stop()
	}

	// 6. Run until interrupted or the session is invalidated
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", "signal", sig.String())
	case <-sessionLost:
		logger.Warn("session invalidated by the server, login required")
	}

	cancel()
	logger.Info("console shutdown complete")
}

// establishSession restores the persisted session or logs in with the
// configured credentials.
func establishSession(
	ctx context.Context,
	cfg *config.Config,
	store *auth.FileSessionStore,
	authClient *rest.AuthClient,
	logger *slog.Logger,
) (*domain.Session, error) {
	session, err := store.Load()
	switch {
	case err == nil:
		if !auth.TokenExpired(session.Token, time.Now()) {
			logger.Info("resumed persisted session")
			return session, nil
		}
		logger.Info("persisted session expired")
		if err := store.Clear(); err != nil {
			logger.Warn("failed to clear expired session", "error", err)
		}
	case errors.Is(err, apperrors.ErrNoSession):
		// fall through to login
	default:
		return nil, err
	}

	if cfg.Login.Email == "" || cfg.Login.Password == "" {
		return nil, errors.New("no session and no CONSOLE_EMAIL/CONSOLE_PASSWORD configured")
	}

	session, err = authClient.Login(ctx, cfg.Login.Email, cfg.Login.Password)
	if err != nil {
		return nil, err
	}
	if err := store.Save(session); err != nil {
		logger.Warn("failed to persist session", "error", err)
	}
	logger.Info("logged in")
	return session, nil
}
