package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	resultKeyPrefix    = "hio:result:"  // hio:result:{uri} -> JSON record
	bucketSetPrefix    = "hio:bucket:"  // hio:bucket:{bucket}:results -> set of URIs
	resultEventChannel = "hio:results"  // Pub/Sub channel announcing new results
	defaultResultTTL   = 7 * 24 * time.Hour
)

// ErrNotFound is returned by RedisSink.Get for unknown URIs.
var ErrNotFound = errors.New("extraction result not found")

// RedisSink keeps the latest result per object URI with a TTL.
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSink(client *redis.Client, ttl time.Duration) *RedisSink {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &RedisSink{client: client, ttl: ttl}
}

func (s *RedisSink) Store(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	setKey := s.bucketSetKey(rec.Bucket)

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.resultKey(rec.URI), data, s.ttl)
	pipe.SAdd(ctx, setKey, rec.URI)
	pipe.Expire(ctx, setKey, s.ttl)
	pipe.Publish(ctx, resultEventChannel, rec.URI)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// Get loads the stored result for uri.
func (s *RedisSink) Get(ctx context.Context, uri string) (*Record, error) {
	data, err := s.client.Get(ctx, s.resultKey(uri)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &rec, nil
}

// ListByBucket returns the URIs with a stored result in bucket.
func (s *RedisSink) ListByBucket(ctx context.Context, bucket string) ([]string, error) {
	uris, err := s.client.SMembers(ctx, s.bucketSetKey(bucket)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	return uris, nil
}

// Ping reports whether Redis is reachable.
func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSink) resultKey(uri string) string {
	return resultKeyPrefix + uri
}

func (s *RedisSink) bucketSetKey(bucket string) string {
	return fmt.Sprintf("%s%s:results", bucketSetPrefix, bucket)
}
