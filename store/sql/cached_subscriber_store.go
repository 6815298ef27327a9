package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-notion/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const subscriberCacheKeyPrefix = "go-notion::subscribers::v1"

// CachedSubscriberStore serves ListSubscribers from a cache and drops every
// category entry on Register and Unregister.
type CachedSubscriberStore struct {
	base  core.SubscriberRegistry
	cache repositorycache.CacheService
}

func NewCachedSubscriberStore(
	base core.SubscriberRegistry,
	cacheService repositorycache.CacheService,
) (*CachedSubscriberStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base subscriber registry is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: subscriber cache service is required")
	}
	return &CachedSubscriberStore{base: base, cache: cacheService}, nil
}

// SubscriberCacheKey returns go-notion::subscribers::v1::<category>.
func SubscriberCacheKey(category core.Category) string {
	return subscriberCacheKeyPrefix + "::" + url.PathEscape(strings.TrimSpace(string(category)))
}

func (s *CachedSubscriberStore) ListSubscribers(ctx context.Context, category core.Category) ([]core.SubscriberRegistration, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return nil, fmt.Errorf("sqlstore: cached subscriber store is not configured")
	}
	registrations, err := repositorycache.GetOrFetch(ctx, s.cache, SubscriberCacheKey(category), func(ctx context.Context) ([]core.SubscriberRegistration, error) {
		fetched, fetchErr := s.base.ListSubscribers(ctx, category)
		if fetchErr != nil {
			return nil, fetchErr
		}
		return cloneRegistrations(fetched), nil
	})
	if err != nil {
		return nil, err
	}
	return cloneRegistrations(registrations), nil
}

func (s *CachedSubscriberStore) Register(ctx context.Context, registration core.SubscriberRegistration) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached subscriber store is not configured")
	}
	if err := s.base.Register(ctx, registration); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

func (s *CachedSubscriberStore) Unregister(ctx context.Context, id string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached subscriber store is not configured")
	}
	if err := s.base.Unregister(ctx, id); err != nil {
		return err
	}
	return s.invalidate(ctx)
}

// A registration may move between categories, so every category is dropped.
func (s *CachedSubscriberStore) invalidate(ctx context.Context) error {
	for _, category := range core.Categories() {
		if err := s.cache.Delete(ctx, SubscriberCacheKey(category)); err != nil {
			return err
		}
	}
	return nil
}

func cloneRegistrations(in []core.SubscriberRegistration) []core.SubscriberRegistration {
	out := make([]core.SubscriberRegistration, 0, len(in))
	for _, registration := range in {
		cloned := registration
		if registration.EventTypes != nil {
			cloned.EventTypes = append([]string{}, registration.EventTypes...)
		}
		out = append(out, cloned)
	}
	return out
}
