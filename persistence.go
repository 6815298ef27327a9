package notion

import (
	"fmt"

	"github.com/goliatone/go-notion/core"
	sqlstore "github.com/goliatone/go-notion/store/sql"
)

// attachPersistenceStores builds the stores left unset from the persistence
// client: the kv store, the subscriber registry, a kv-backed token signal and
// an audited deliverer.
func attachPersistenceStores(deps *core.Dependencies) error {
	if deps == nil || deps.PersistenceStore == nil {
		return nil
	}
	if deps.KVStore != nil && deps.Subscribers != nil && deps.TokenSignal != nil && deps.Deliverer != nil {
		return nil
	}

	factory := sqlstore.NewRepositoryFactory()
	if err := factory.BuildStores(deps.PersistenceStore); err != nil {
		return fmt.Errorf("notion: build persistence stores: %w", err)
	}
	if deps.KVStore == nil {
		deps.KVStore = factory.KVStore()
	}
	if deps.Subscribers == nil {
		deps.Subscribers = factory.SubscriberRegistry()
	}
	if deps.TokenSignal == nil {
		signal, err := sqlstore.NewKVTokenSignal(deps.KVStore, "")
		if err != nil {
			return fmt.Errorf("notion: build token signal: %w", err)
		}
		deps.TokenSignal = signal
	}
	if deps.Deliverer == nil {
		logger := core.ResolveLogger("notion.deliveries", deps.LoggerProvider, deps.Logger)
		deps.Deliverer = factory.DeliveryStore().Wrap(core.NewLoggingDeliverer(logger), logger)
	}
	return nil
}
