// cmd/server is the application entry point: it wires configuration,
// storage, the attendance engine, and the HTTP delivery layer.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatvote/config"
	"chatvote/internal/adapters/auth"
	"chatvote/internal/adapters/memory"
	"chatvote/internal/adapters/platform"
	"chatvote/internal/database"
	delivery "chatvote/internal/delivery/http"
	"chatvote/internal/delivery/http/controllers"
	"chatvote/internal/delivery/http/middleware"
	"chatvote/internal/repository/postgres"
	"chatvote/internal/services"
)

// @title chatvote API
// @version 1.0
// @description Capacity-constrained event attendance voting for chat conversations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DBUrl)
	if err != nil {
		logger.Error("connect database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Error("migrate database", "err", err)
		os.Exit(1)
	}

	eventRepo := postgres.NewEventRepository(db.DB)
	voteRepo := postgres.NewVoteRepository(db.DB)
	ledger := postgres.NewLedger(db.DB)

	members := platform.NewMembershipClient(cfg.PlatformAPIURL, &http.Client{Timeout: 5 * time.Second})
	authorizer := services.NewAuthorizer(members)
	attendance := services.NewAttendanceService(eventRepo, voteRepo, ledger, authorizer, cfg.DefaultMaxCapacity, 10*time.Second)

	sessions := memory.NewAdminSessionStore()
	verifier := auth.NewJWTVerifier(cfg.TokenSecret)

	eventController := controllers.NewEventController(logger, attendance)
	voteController := controllers.NewVoteController(logger, attendance)
	pendingController := controllers.NewPendingController(logger, attendance, sessions)

	mux := delivery.NewRouter(verifier, eventController, voteController, pendingController)
	handler := middleware.LoggingMiddleware(logger, mux)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
