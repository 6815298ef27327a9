package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-notion/core"
	"github.com/uptrace/bun"
)

// KVStore persists string values by key. It backs the webhook verification
// token and survives process restarts.
type KVStore struct {
	db *bun.DB
}

func NewKVStore(db *bun.DB) (*KVStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &KVStore{db: db}, nil
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	if s == nil || s.db == nil {
		return "", fmt.Errorf("sqlstore: kv store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("sqlstore: kv key is required")
	}
	record := &kvEntryRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.entry_key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", core.ErrKeyNotFound
		}
		return "", err
	}
	return record.Value, nil
}

// Set writes value under key, replacing any previous value.
func (s *KVStore) Set(ctx context.Context, key string, value string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: kv store is not configured")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("sqlstore: kv key is required")
	}
	now := time.Now().UTC()
	record := &kvEntryRecord{
		EntryKey:  key,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (entry_key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// KVTokenSignal mirrors the verification token into a second key that
// operators read from the shared store.
type KVTokenSignal struct {
	store core.KVStore
	key   string
}

const DefaultTokenSignalKey = "notion.webhook.verification_token.surfaced"

func NewKVTokenSignal(store core.KVStore, key string) (*KVTokenSignal, error) {
	if store == nil {
		return nil, fmt.Errorf("sqlstore: kv store is required")
	}
	if strings.TrimSpace(key) == "" {
		key = DefaultTokenSignalKey
	}
	return &KVTokenSignal{store: store, key: strings.TrimSpace(key)}, nil
}

func (s *KVTokenSignal) Current(ctx context.Context) (string, error) {
	value, err := s.store.Get(ctx, s.key)
	if errors.Is(err, core.ErrKeyNotFound) {
		return "", nil
	}
	return value, err
}

func (s *KVTokenSignal) Publish(ctx context.Context, token string) error {
	return s.store.Set(ctx, s.key, token)
}
