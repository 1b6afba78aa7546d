// internal/kv/kv.go
//
// Key/value persistence used by the progress and preference stores.
// Each key holds one JSON record, written wholesale on every mutation.
//
// Implementations:
//   - memory.go: map + RWMutex (tests, ephemeral dev runs).
//   - sql.go:    `kv` table through sqlx (sqlite3 or postgres).
//   - redis.go:  plain GET/SET on a Redis server.
//
// There are no transactional guarantees beyond last-write-wins.

package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("kv: not found")

// Store is the get/set collaborator behind the persisted records.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// GetJSON reads key and decodes it into dst.
// Returns ErrNotFound untouched so callers can tell "missing" from "corrupt".
func GetJSON(ctx context.Context, s Store, key string, dst any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("kv: decode %s: %w", key, err)
	}
	return nil
}

// SetJSON encodes v and writes it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kv: encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}
