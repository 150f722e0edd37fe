package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ucassist-scraper/config"
	"ucassist-scraper/models"
)

type PostgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(cfg *config.Config) (*PostgresWriter, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBSSLMode,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect postgres: %w", err)
	}

	return &PostgresWriter{pool: pool}, nil
}

func (w *PostgresWriter) Close() {
	if w.pool != nil {
		w.pool.Close()
	}
}

func (w *PostgresWriter) EnsureSchema() error {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	sql := `
	CREATE TABLE IF NOT EXISTS services (
		id BIGSERIAL PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		fields JSONB NOT NULL,
		scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_services_url ON services(url);
	CREATE INDEX IF NOT EXISTS idx_services_fields ON services USING GIN (fields);
	`

	if _, err := w.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	return nil
}

// WriteBatch inserts records keyed by their identity key. Existing keys are
// left untouched, so re-running a crawl never duplicates rows.
func (w *PostgresWriter) WriteBatch(records []models.ServiceRecord) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	batch := &pgx.Batch{}
	insertSQL := `
	INSERT INTO services (key, url, fields)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO NOTHING;
	`

	enqueued := 0
	for _, r := range records {
		key := strings.TrimSpace(r.Key)
		url := strings.TrimSpace(r.URL)
		if key == "" || url == "" {
			continue
		}

		fields, err := json.Marshal(r.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal fields for %s: %w", key, err)
		}

		batch.Queue(insertSQL, key, url, fields)
		enqueued++
	}

	if enqueued == 0 {
		return nil
	}

	results := w.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < enqueued; i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert failed at row %d: %w", i, err)
		}
	}

	return nil
}
