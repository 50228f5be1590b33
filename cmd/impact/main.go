// Package main runs the PAN environmental impact service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/R3E-Network/impact_service/internal/config"
	"github.com/R3E-Network/impact_service/internal/httpapi"
	"github.com/R3E-Network/impact_service/internal/logging"
	"github.com/R3E-Network/impact_service/internal/middleware"
	"github.com/R3E-Network/impact_service/internal/pan"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	boot := logging.NewDefault(httpapi.ServiceID)

	if err := config.LoadDotEnv(); err != nil {
		boot.WithError(err).Fatal("Failed to load .env")
	}

	cfg, err := config.Load()
	if err != nil {
		boot.WithError(err).Fatal("Failed to load configuration")
	}

	log := logging.New(httpapi.ServiceID, cfg.LogLevel, cfg.LogFormat)

	panClient, err := pan.NewClient(pan.Config{
		BaseURL: cfg.PAN.BaseURL,
		Credentials: pan.Credentials{
			Username: cfg.PAN.Username,
			Password: cfg.PAN.Password,
		},
		Timeout: cfg.PAN.Timeout,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create PAN client")
	}

	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, log)
		limiter.StartCleanup(ctx, time.Minute)
		log.WithField("rps", cfg.RateLimit.RequestsPerSecond).Info("Rate limiting enabled")
	}

	svc, err := httpapi.New(httpapi.Config{
		Source:         panClient,
		Logger:         log,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.AllowedOrigins(),
		EnableMetrics:  !cfg.MetricsDisabled,
	})
	if err != nil {
		log.WithError(err).Fatal("Failed to create service")
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      svc.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.PAN.Timeout*2 + 10*time.Second, // two sequential PAN calls
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Shutdown error")
	}
	cancel()

	log.Info("Service stopped")
}
