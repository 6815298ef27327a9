package webhooks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-notion/core"
)

// TokenLifecycle owns the verification token: provisioned by a handshake,
// persisted under a fixed key and re-read on every verification.
type TokenLifecycle struct {
	Store  core.KVStore
	Signal core.TokenSignal
	Key    string
	Logger core.Logger
}

func NewTokenLifecycle(store core.KVStore, signal core.TokenSignal, key string, logger core.Logger) *TokenLifecycle {
	if strings.TrimSpace(key) == "" {
		key = core.DefaultTokenKey
	}
	return &TokenLifecycle{
		Store:  store,
		Signal: signal,
		Key:    key,
		Logger: core.ResolveLogger("notion.webhooks.token", nil, logger),
	}
}

// Provision stores token, replacing any previous value, then resyncs the
// operator signal. A resync failure is logged and does not undo the write.
func (l *TokenLifecycle) Provision(ctx context.Context, token string) error {
	if l == nil || l.Store == nil {
		return fmt.Errorf("webhooks: token lifecycle requires a kv store")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("webhooks: verification token is required")
	}
	if err := l.Store.Set(ctx, l.key(), token); err != nil {
		return fmt.Errorf("webhooks: persist verification token: %w", err)
	}
	core.Log(ctx, l.Logger, core.LevelInfo, "notion webhook verification token provisioned", map[string]any{
		"key": l.key(),
	})
	if _, err := l.Resync(ctx); err != nil {
		core.Log(ctx, l.Logger, core.LevelWarn, "notion webhook token signal resync failed", map[string]any{
			"error": err.Error(),
		})
	}
	return nil
}

// Current reads the stored token. ok is false while unprovisioned.
func (l *TokenLifecycle) Current(ctx context.Context) (token string, ok bool, err error) {
	if l == nil || l.Store == nil {
		return "", false, fmt.Errorf("webhooks: token lifecycle requires a kv store")
	}
	token, err = l.Store.Get(ctx, l.key())
	if err != nil {
		if errors.Is(err, core.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("webhooks: load verification token: %w", err)
	}
	if token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Resync publishes the stored token to the operator signal when the signal
// shows a different value. It reports whether a publish happened.
func (l *TokenLifecycle) Resync(ctx context.Context) (bool, error) {
	if l == nil || l.Signal == nil {
		return false, nil
	}
	token, ok, err := l.Current(ctx)
	if err != nil || !ok {
		return false, err
	}
	surfaced, err := l.Signal.Current(ctx)
	if err != nil {
		return false, fmt.Errorf("webhooks: read token signal: %w", err)
	}
	if surfaced == token {
		return false, nil
	}
	if err := l.Signal.Publish(ctx, token); err != nil {
		return false, fmt.Errorf("webhooks: publish token signal: %w", err)
	}
	return true, nil
}

func (l *TokenLifecycle) key() string {
	if key := strings.TrimSpace(l.Key); key != "" {
		return key
	}
	return core.DefaultTokenKey
}
