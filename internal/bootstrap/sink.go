package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/sink"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/storage/postgres"
	"github.com/GoSim-25-26J-441/hio-docpipe/internal/storage/redis"
)

// OpenSink builds the result sink named by RESULT_SINK. With verify set the
// backing store must answer a ping first; without it connections are made on
// the first Store.
func OpenSink(ctx context.Context, cfg *config.Config, verify bool) (sink.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Sink.Kind {
	case "", "none":
		return sink.None{}, noop, nil

	case "redis":
		if !verify {
			client := redis.NewClient(&cfg.Redis)
			return sink.NewRedisSink(client, cfg.Sink.TTL), client.Close, nil
		}
		client, err := redis.NewConnection(ctx, &cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return sink.NewRedisSink(client, cfg.Sink.TTL), client.Close, nil

	case "postgres":
		open := postgres.Open
		if verify {
			open = func(c *config.DatabaseConfig) (*sql.DB, error) { return postgres.NewConnection(ctx, c) }
		}
		db, err := open(&cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		return sink.NewPostgresSink(db), db.Close, nil
	}

	return nil, noop, fmt.Errorf("unknown RESULT_SINK %q", cfg.Sink.Kind)
}
