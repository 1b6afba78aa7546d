package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// sqlStore keeps records in the `kv` table created by the db migrations.
// Queries are written with ? placeholders and rebound for the driver in use.
type sqlStore struct {
	db *sqlx.DB
}

// NewSQL constructs a Store backed by db.
func NewSQL(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data, s.db.Rebind(`SELECT data FROM kv WHERE id = ?`), key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return data, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO kv (id, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`),
		key, string(value), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM kv WHERE id = ?`), key); err != nil {
		return fmt.Errorf("kv: delete %s: %w", key, err)
	}
	return nil
}
