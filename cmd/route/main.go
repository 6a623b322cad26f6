// Command route pushes one stored object through the document router, the
// same path a storage upload event takes.
//
//	route gs://bucket/path/to/file.pdf
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/bootstrap"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/docrouter"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/logging"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: route gs://bucket/object")
		os.Exit(2)
	}
	if err := run(os.Args[1]); err != nil {
		fmt.Fprintln(os.Stderr, "route:", err)
		os.Exit(1)
	}
}

func run(uri string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.App.Environment, cfg.App.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ev, err := docrouter.ParseURI(uri)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	s, closeSink, err := bootstrap.OpenSink(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer closeSink()

	router, closeRouter := bootstrap.NewDocumentRouter(cfg, s, logger)
	defer func() {
		if err := closeRouter(); err != nil {
			logger.Warn("failed to close extraction clients", zap.Error(err))
		}
	}()

	out, err := router.Route(ctx, ev)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
