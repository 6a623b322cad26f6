// Package docpipe registers the two Cloud Functions: ProcessDocument, fired
// by Cloud Storage uploads, and QueryLLM, an HTTP query endpoint.
package docpipe

import (
	"context"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/bootstrap"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/sink"
)

func init() {
	cfg, err := config.Load()

	logger := newLogger(cfg)
	if err != nil {
		// Both handlers still register and report the problem per invocation.
		logger.Error("invalid configuration", zap.Error(err))
		cfg = nil
	}

	var s sink.Sink = sink.None{}
	if cfg != nil {
		opened, _, err := bootstrap.OpenSink(context.Background(), cfg, false)
		if err != nil {
			logger.Error("result sink unavailable, results will not be stored", zap.Error(err))
		} else {
			s = opened
		}
	}

	router, _ := bootstrap.NewDocumentRouter(cfg, s, logger)
	functions.CloudEvent("ProcessDocument", router.HandleEvent)

	var origins []string
	if cfg != nil {
		origins = cfg.Server.CORSOrigins
	}
	handler := bootstrap.BuildFunctionHandler(bootstrap.NewQueryService(cfg, logger), logger, origins)
	functions.HTTP("QueryLLM", handler.ServeHTTP)
}

func newLogger(cfg *config.Config) *zap.Logger {
	env, level := "production", "info"
	if cfg != nil {
		env, level = cfg.App.Environment, cfg.App.LogLevel
		bootstrap.SetGinMode(env)
	}
	logger, err := logging.New(env, level)
	if err != nil {
		return zap.Must(zap.NewProduction())
	}
	return logger
}
