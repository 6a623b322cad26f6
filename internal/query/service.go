// Package query answers natural-language questions through a hosted model.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/metrics"
)

// Answer is what a model returns for one query.
type Answer struct {
	Text    string
	Sources []string
}

type ModelInvoker interface {
	Invoke(ctx context.Context, query string) (*Answer, error)
}

// Factory builds the model client. It runs on the first request and is
// retried on later requests until it succeeds.
type Factory func(ctx context.Context) (ModelInvoker, error)

type Service struct {
	configErr  error
	newInvoker Factory
	logger     *zap.Logger

	mu      sync.Mutex
	invoker ModelInvoker
}

func NewService(cfg *config.Config, factory Factory, logger *zap.Logger) *Service {
	s := &Service{newInvoker: factory, logger: logger}
	if cfg == nil {
		s.configErr = errors.New("no configuration loaded")
	} else {
		s.configErr = cfg.ValidateQuery()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// ConfigErr reports why the service refuses to answer, or nil.
func (s *Service) ConfigErr() error {
	if s.configErr == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrConfigMissing, s.configErr)
}

// Answer runs query through the model.
func (s *Service) Answer(ctx context.Context, query string) (*Response, error) {
	if err := s.ConfigErr(); err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx, s.logger)
	log.Info("received query", zap.Int("length", len(query)))

	invoker, err := s.model(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: init model: %w", ErrDownstream, err)
	}

	start := time.Now()
	ans, err := invoker.Invoke(ctx, query)
	metrics.ObserveModel(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDownstream, err)
	}
	if ans == nil {
		return nil, fmt.Errorf("%w: empty answer", ErrDownstream)
	}

	sources := ans.Sources
	if sources == nil {
		sources = []string{}
	}
	return &Response{Response: ans.Text, Sources: sources}, nil
}

func (s *Service) model(ctx context.Context) (ModelInvoker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.invoker != nil {
		return s.invoker, nil
	}
	if s.newInvoker == nil {
		return nil, errors.New("no model backend configured")
	}

	invoker, err := s.newInvoker(ctx)
	if err != nil {
		return nil, err
	}
	s.invoker = invoker
	return invoker, nil
}
