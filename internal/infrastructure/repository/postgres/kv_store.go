package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/matchcentre/internal/domain/kv"
)

const (
	selectKVValueQuery = `SELECT value FROM kv_entries WHERE key = $1`
	upsertKVValueQuery = `INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2::jsonb, $3)
ON CONFLICT (key)
DO UPDATE SET
    value = EXCLUDED.value,
    updated_at = EXCLUDED.updated_at`
	deleteKVValueQuery = `DELETE FROM kv_entries WHERE key = $1`
)

// KVStore persists JSON documents in the kv_entries table.
type KVStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db, now: time.Now}
}

func (s *KVStore) Get(ctx context.Context, key string, dest any) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, fmt.Errorf("%w: key is required", kv.ErrStore)
	}

	var raw string
	if err := s.db.GetContext(ctx, &raw, selectKVValueQuery, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: select key=%s: %v", kv.ErrStore, key, err)
	}

	if err := sonic.UnmarshalString(raw, dest); err != nil {
		return false, fmt.Errorf("%w: decode key=%s: %v", kv.ErrStore, key, err)
	}
	return true, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("%w: key is required", kv.ErrStore)
	}

	raw, err := sonic.MarshalString(value)
	if err != nil {
		return fmt.Errorf("%w: encode key=%s: %v", kv.ErrStore, key, err)
	}

	if _, err := s.db.ExecContext(ctx, upsertKVValueQuery, key, raw, s.now().UTC()); err != nil {
		return fmt.Errorf("%w: upsert key=%s: %v", kv.ErrStore, key, err)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	if _, err := s.db.ExecContext(ctx, deleteKVValueQuery, key); err != nil {
		return fmt.Errorf("%w: delete key=%s: %v", kv.ErrStore, key, err)
	}
	return nil
}
