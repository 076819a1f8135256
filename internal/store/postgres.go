package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists each collection as a single jsonb document, matching the
// whole-collection-replace contract of Repository. One row per collection.
type Postgres struct {
	Db *pgxpool.Pool
}

func NewPostgres(connString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Postgres{Db: pool}, nil
}

func (s *Postgres) Close() {
	s.Db.Close()
}

// Migrate creates the collections table if it does not exist yet.
func (s *Postgres) Migrate(ctx context.Context) error {
	_, err := s.Db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name       TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("collections migration failed: %w", err)
	}
	return nil
}

func (s *Postgres) LoadAll(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var data []byte
	err := s.Db.QueryRow(ctx, "SELECT data FROM collections WHERE name = $1", collection).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("collection load failed: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("collection %q is not a json array: %w", collection, err)
	}
	return records, nil
}

func (s *Postgres) SaveAll(ctx context.Context, collection string, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("collection marshal failed: %w", err)
	}

	_, err = s.Db.Exec(ctx, `
		INSERT INTO collections (name, data) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, collection, data)
	if err != nil {
		return fmt.Errorf("collection save failed: %w", err)
	}
	return nil
}
