package webhooks

import (
	"context"
	"errors"
	"sync"

	"github.com/goliatone/go-notion/core"
)

type countingLister struct {
	mu    sync.Mutex
	inner core.SubscriberLister
	calls int
	err   error
}

func (l *countingLister) ListSubscribers(ctx context.Context, category core.Category) ([]core.SubscriberRegistration, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	return l.inner.ListSubscribers(ctx, category)
}

func (l *countingLister) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

type failingKVStore struct {
	err error
}

func (s failingKVStore) Get(context.Context, string) (string, error) {
	return "", s.err
}

func (s failingKVStore) Set(context.Context, string, string) error {
	return s.err
}

var errBoom = errors.New("boom")

func newRegistry(registrations ...core.SubscriberRegistration) *countingLister {
	return &countingLister{inner: core.NewMemorySubscriberRegistry(registrations...)}
}
