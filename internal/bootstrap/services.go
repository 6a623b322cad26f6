package bootstrap

import (
	"errors"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/docrouter"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/extract"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/query"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/sink"
)

// NewDocumentRouter wires the extraction backends chosen by EXTRACT_BACKEND.
// A nil cfg yields a router that rejects every event as unconfigured. The
// returned func releases any GCP clients created along the way.
func NewDocumentRouter(cfg *config.Config, s sink.Sink, logger *zap.Logger) (*docrouter.Router, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	noop := func() error { return nil }
	if cfg == nil {
		return docrouter.New(nil, docrouter.Deps{Logger: logger.Named("router")}), noop
	}

	deps := docrouter.Deps{
		Sink:    s,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Dispatch.Rate), cfg.Dispatch.Burst),
		Logger:  logger.Named("router"),
	}

	closer := noop
	switch cfg.Backends.Extract {
	case "gcp":
		docs := extract.NewLazyDocumentAI(cfg.GCP.ProjectID, cfg.GCP.DocAILocation, cfg.GCP.ProcessorID)
		images := extract.NewLazyVision()
		deps.Documents, deps.Images = docs, images
		closer = func() error { return errors.Join(docs.Close(), images.Close()) }
	default:
		m := &extract.Mock{}
		deps.Documents, deps.Images = m, m
	}

	return docrouter.New(cfg, deps), closer
}

// NewQueryService picks the model backend named by MODEL_BACKEND.
func NewQueryService(cfg *config.Config, logger *zap.Logger) *query.Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	factory := query.MockFactory
	if cfg != nil && cfg.Backends.Model == "vertex" {
		factory = query.VertexFactory(cfg.GCP.ProjectID, cfg.GCP.Region, config.ModelName)
	}
	return query.NewService(cfg, factory, logger.Named("query"))
}
