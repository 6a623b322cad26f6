package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	httpapi "github.com/GoSim-25-26J-441/hio-docpipe/internal/api/http"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/auth"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/bootstrap"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
)

const serviceName = "hio-docpipe"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !cfg.DotenvLoaded {
		logger.Debug("no .env file found, using environment only")
	}
	if err := cfg.ValidateQuery(); err != nil {
		// Served anyway: every query answers 500 with the missing variable.
		logger.Warn("query responder not configured", zap.Error(err))
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := bootstrap.RouterDeps{
		ServiceName: serviceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
		Query:       bootstrap.NewQueryService(cfg, logger),
	}

	s, closeSink, err := bootstrap.OpenSink(ctx, cfg, true)
	if err != nil {
		logger.Fatal("failed to open result sink", zap.String("sink", cfg.Sink.Kind), zap.Error(err))
	}
	defer closeSink()
	if p, ok := s.(httpapi.Pinger); ok {
		deps.Sink = p
	}

	if cfg.Firebase.CredentialsPath != "" {
		authClient, err := auth.InitializeFirebase(ctx, &cfg.Firebase)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		deps.Auth = authClient
		logger.Info("firebase auth enabled for query routes")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           bootstrap.BuildRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", srv.Addr), zap.String("version", cfg.App.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}
