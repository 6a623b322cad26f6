package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresSink upserts results into an extraction_results table. Any
// Postgres-compatible host works, including Supabase.
//
//	CREATE TABLE extraction_results (
//	    id           UUID PRIMARY KEY,
//	    uri          TEXT UNIQUE NOT NULL,
//	    bucket       TEXT NOT NULL,
//	    name         TEXT NOT NULL,
//	    branch       TEXT NOT NULL,
//	    mime_type    TEXT,
//	    text         TEXT NOT NULL,
//	    pages        INTEGER,
//	    processed_at TIMESTAMPTZ NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//	    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresSink struct {
	db *sql.DB
}

func NewPostgresSink(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

func (s *PostgresSink) Store(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO extraction_results (
			id, uri, bucket, name, branch, mime_type, text, pages, processed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (uri) DO UPDATE SET
			branch = EXCLUDED.branch,
			mime_type = EXCLUDED.mime_type,
			text = EXCLUDED.text,
			pages = EXCLUDED.pages,
			processed_at = EXCLUDED.processed_at,
			updated_at = NOW()
	`

	var mimeType sql.NullString
	if rec.MimeType != "" {
		mimeType = sql.NullString{String: rec.MimeType, Valid: true}
	}
	var pages sql.NullInt64
	if rec.Pages > 0 {
		pages = sql.NullInt64{Int64: int64(rec.Pages), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		rec.URI,
		rec.Bucket,
		rec.Name,
		rec.Branch,
		mimeType,
		rec.Text,
		pages,
		rec.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result: %w", err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *PostgresSink) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
