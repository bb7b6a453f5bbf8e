package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gulf-dental-association/member-portal/api"
	"github.com/gulf-dental-association/member-portal/config"
	"github.com/gulf-dental-association/member-portal/myfatoorah"
	"github.com/gulf-dental-association/member-portal/postgres"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to the database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailSender, err := createEmailSender(ctx, logger, cfg.Env)
	if err != nil {
		logger.Error("Failed to create email sender", "error", err)
		os.Exit(1)
	}

	gateway := myfatoorah.NewClient(cfg.MyFatoorahBaseURL, cfg.MyFatoorahAPIKey, nil)

	portalAPI := api.NewAPI(api.Params{
		DB:          db,
		Logger:      logger,
		Env:         cfg.Env,
		Gateway:     gateway,
		EmailSender: emailSender,
		JWTSecret:   []byte(cfg.JWTSecret),
		BaseURL:     cfg.BaseURL,
		FrontendURL: cfg.FrontendURL,
		FromAddress: cfg.FromAddress,
	})

	addr := net.JoinHostPort(cfg.Host, cfg.Port)
	logger.Info("Starting server", "addr", addr, "env", cfg.Env)

	s := &http.Server{
		Handler: portalAPI.Routes(),
		Addr:    addr,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
		os.Exit(1)
	}
}
