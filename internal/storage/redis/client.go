package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/GoSim-25-26J-441/hio-docpipe/config"
)

// NewClient builds a client for cfg. go-redis dials lazily, so no network
// traffic happens here.
func NewClient(cfg *config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewConnection builds a client and checks that the server answers.
func NewConnection(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	client := NewClient(cfg)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
