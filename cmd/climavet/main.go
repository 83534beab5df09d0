package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/climavet/climavet/internal/api"
	"github.com/climavet/climavet/internal/config"
	"github.com/climavet/climavet/internal/database"
	"github.com/climavet/climavet/internal/logging"
	"github.com/climavet/climavet/internal/server"
	"github.com/climavet/climavet/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	client := api.NewClient(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, logger)

	srv, err := server.New(server.Deps{
		Backend:       client,
		SettingsStore: store.NewSettingsStore(db),
		FilterStore:   store.NewFilterStore(db),
		DefaultClinic: cfg.ClinicID,
		WSOrigins:     cfg.WSOrigins,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("failed to build server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.RateLimiter().RunCleanup(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("climavet running", "url", fmt.Sprintf("http://localhost:%s", cfg.Port), "api", cfg.APIURL, "clinic", cfg.ClinicID)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
