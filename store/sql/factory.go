package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-notion/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

type RepositoryFactory struct {
	db *bun.DB

	kvStore         *KVStore
	subscriberStore *SubscriberStore
	deliveryStore   *DeliveryStore
	cachedStore     *CachedSubscriberStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

// BuildStores accepts a *bun.DB or anything exposing DB() *bun.DB.
func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.kvStore != nil && f.subscriberStore != nil {
		return nil
	}
	return f.initStores()
}

// WithCache wraps the subscriber store with a cache. Subsequent calls to
// SubscriberRegistry return the cached store.
func (f *RepositoryFactory) WithCache(cacheService repositorycache.CacheService) error {
	if f == nil || f.subscriberStore == nil {
		return fmt.Errorf("sqlstore: stores must be built before enabling cache")
	}
	cached, err := NewCachedSubscriberStore(f.subscriberStore, cacheService)
	if err != nil {
		return err
	}
	f.cachedStore = cached
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) KVStore() *KVStore {
	if f == nil {
		return nil
	}
	return f.kvStore
}

func (f *RepositoryFactory) SubscriberStore() *SubscriberStore {
	if f == nil {
		return nil
	}
	return f.subscriberStore
}

func (f *RepositoryFactory) DeliveryStore() *DeliveryStore {
	if f == nil {
		return nil
	}
	return f.deliveryStore
}

// SubscriberRegistry returns the cached store when enabled.
func (f *RepositoryFactory) SubscriberRegistry() core.SubscriberRegistry {
	if f == nil {
		return nil
	}
	if f.cachedStore != nil {
		return f.cachedStore
	}
	if f.subscriberStore != nil {
		return f.subscriberStore
	}
	return nil
}

func (f *RepositoryFactory) initStores() error {
	kvStore, err := NewKVStore(f.db)
	if err != nil {
		return err
	}
	f.kvStore = kvStore
	subscriberStore, err := NewSubscriberStore(f.db)
	if err != nil {
		return err
	}
	f.subscriberStore = subscriberStore
	deliveryStore, err := NewDeliveryStore(f.db)
	if err != nil {
		return err
	}
	f.deliveryStore = deliveryStore
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
