package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/lorrc/service-desk-console/internal/auth"
	"github.com/lorrc/service-desk-console/internal/core/domain"
	"github.com/lorrc/service-desk-console/internal/infrastructure/logging"
	"github.com/lorrc/service-desk-console/internal/stub"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger(logging.Config{
		Level:       envOrDefault("LOG_LEVEL", "info"),
		Format:      envOrDefault("LOG_FORMAT", "text"),
		Output:      os.Stdout,
		ServiceName: "stubdesk",
		Environment: envOrDefault("APP_ENV", "development"),
	})

	store := stub.NewStore()
	seed(store)

	tokens := auth.NewTokenManager(envOrDefault("JWT_SECRET", "stubdesk-dev-secret"), 24*time.Hour)
	server := stub.NewServer(store, tokens, logger)

	addr := ":" + envOrDefault("PORT", "5000")
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("stub desk listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("stub desk stopped")
}

// seed loads a small fixture set so the console has something to talk to.
func seed(store *stub.Store) {
	admin := domain.User{
		ID:       uuid.NewString(),
		Name:     "Ada Admin",
		Email:    "admin@example.com",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}
	agent := domain.User{
		ID:       uuid.NewString(),
		Name:     "Avery Agent",
		Email:    "agent@example.com",
		Role:     domain.RoleAgent,
		IsActive: true,
	}
	customer := domain.User{
		ID:       uuid.NewString(),
		Name:     "Casey Customer",
		Email:    "customer@example.com",
		Role:     domain.RoleCustomer,
		IsActive: true,
	}
	store.AddAccount(admin, "admin123")
	store.AddAccount(agent, "agent123")
	store.AddAccount(customer, "customer123")

	billing := store.AddCategory("Billing", admin.ID)
	store.AddCategory("Hardware", admin.ID)
	store.AddCategory("Access", admin.ID)

	store.AddTicket("Invoice missing", "March invoice never arrived", billing.ID, domain.PriorityMedium, customer.ID)
	store.AddTicket("Wrong amount charged", "Charged twice for one seat", billing.ID, domain.PriorityHigh, customer.ID)
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
