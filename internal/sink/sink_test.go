package sink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	return client, mr
}

func testRecord() Record {
	return Record{
		URI:      "gs://uploads/invoices/march.pdf",
		Bucket:   "uploads",
		Name:     "invoices/march.pdf",
		Branch:   "extraction",
		MimeType: "application/pdf",
		Text:     "Invoice #42",
		Pages:    2,
	}
}

func TestNone(t *testing.T) {
	assert.NoError(t, None{}.Store(context.Background(), testRecord()))
}

func TestRedisSink_StoreAndGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	ctx := context.Background()
	s := NewRedisSink(client, time.Hour)

	t.Run("stores record with generated id", func(t *testing.T) {
		require.NoError(t, s.Store(ctx, testRecord()))

		got, err := s.Get(ctx, "gs://uploads/invoices/march.pdf")
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Invoice #42", got.Text)
		assert.Equal(t, 2, got.Pages)
		assert.False(t, got.ProcessedAt.IsZero())

		ttl := mr.TTL(resultKeyPrefix + "gs://uploads/invoices/march.pdf")
		assert.Equal(t, time.Hour, ttl)
	})

	t.Run("indexes by bucket", func(t *testing.T) {
		uris, err := s.ListByBucket(ctx, "uploads")
		require.NoError(t, err)
		assert.Equal(t, []string{"gs://uploads/invoices/march.pdf"}, uris)
	})

	t.Run("overwrites on reprocessing", func(t *testing.T) {
		rec := testRecord()
		rec.Text = "Invoice #42 (rescanned)"
		require.NoError(t, s.Store(ctx, rec))

		got, err := s.Get(ctx, rec.URI)
		require.NoError(t, err)
		assert.Equal(t, "Invoice #42 (rescanned)", got.Text)

		uris, err := s.ListByBucket(ctx, "uploads")
		require.NoError(t, err)
		assert.Len(t, uris, 1)
	})

	t.Run("unknown uri", func(t *testing.T) {
		_, err := s.Get(ctx, "gs://uploads/missing.png")
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	assert.NoError(t, s.Ping(ctx))
}

func TestRedisSink_DefaultTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	s := NewRedisSink(client, 0)
	require.NoError(t, s.Store(context.Background(), testRecord()))

	assert.Equal(t, defaultResultTTL, mr.TTL(resultKeyPrefix+"gs://uploads/invoices/march.pdf"))
}

func TestRedisSink_StoreFailsWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	mr.Close()

	err := NewRedisSink(client, time.Hour).Store(context.Background(), testRecord())
	assert.Error(t, err)
}

func TestPostgresSink_Store(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresSink(db)

	t.Run("upserts record", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO extraction_results`).
			WithArgs(
				sqlmock.AnyArg(), // id (UUID)
				"gs://uploads/invoices/march.pdf",
				"uploads",
				"invoices/march.pdf",
				"extraction",
				sqlmock.AnyArg(), // mime_type
				"Invoice #42",
				sqlmock.AnyArg(), // pages
				sqlmock.AnyArg(), // processed_at
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, s.Store(context.Background(), testRecord()))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates database errors", func(t *testing.T) {
		mock.ExpectExec(`INSERT INTO extraction_results`).
			WillReturnError(errors.New("connection reset"))

		err := s.Store(context.Background(), testRecord())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
