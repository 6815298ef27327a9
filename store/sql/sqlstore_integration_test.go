package sqlstore_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"testing"
	"time"

	notion "github.com/goliatone/go-notion"
	"github.com/goliatone/go-notion/core"
	notionmigrations "github.com/goliatone/go-notion/migrations"
	sqlstore "github.com/goliatone/go-notion/store/sql"
	"github.com/goliatone/go-notion/webhooks"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type testPersistenceConfig struct {
	driver string
	server string
}

func (c testPersistenceConfig) GetDebug() bool {
	return false
}

func (c testPersistenceConfig) GetDriver() string {
	return c.driver
}

func (c testPersistenceConfig) GetServer() string {
	return c.server
}

func (c testPersistenceConfig) GetPingTimeout() time.Duration {
	return time.Second
}

func (c testPersistenceConfig) GetOtelIdentifier() string {
	return "go-notion-tests"
}

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"notion_kv_entries", "notion_subscriber_registrations", "notion_webhook_deliveries"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master for %s: %v", table, err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestKVStore_GetSetAndMissingKey(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.KVStore()

	if _, err := store.Get(ctx, core.DefaultTokenKey); !errors.Is(err, core.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
	if err := store.Set(ctx, core.DefaultTokenKey, "secret_v1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.Set(ctx, core.DefaultTokenKey, "secret_v2"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	value, err := store.Get(ctx, core.DefaultTokenKey)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != "secret_v2" {
		t.Fatalf("expected last write to win, got %q", value)
	}
}

func TestKVStore_BacksTokenLifecycleAcrossInstances(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	signal, err := sqlstore.NewKVTokenSignal(factory.KVStore(), "")
	if err != nil {
		t.Fatalf("new token signal: %v", err)
	}

	first := webhooks.NewTokenLifecycle(factory.KVStore(), signal, "", nil)
	if err := first.Provision(ctx, "secret_handshake"); err != nil {
		t.Fatalf("provision: %v", err)
	}

	restarted := webhooks.NewTokenLifecycle(factory.KVStore(), signal, "", nil)
	token, ok, err := restarted.Current(ctx)
	if err != nil || !ok || token != "secret_handshake" {
		t.Fatalf("expected persisted token after restart, got %q ok=%v err=%v", token, ok, err)
	}
	surfaced, err := signal.Current(ctx)
	if err != nil || surfaced != "secret_handshake" {
		t.Fatalf("expected surfaced token, got %q err=%v", surfaced, err)
	}
	published, err := restarted.Resync(ctx)
	if err != nil || published {
		t.Fatalf("expected no publish when signal is current, got %v err=%v", published, err)
	}
}

func TestSubscriberStore_RegisterReplaceListAndUnregister(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SubscriberStore()

	if err := store.Register(ctx, core.SubscriberRegistration{
		ID:         "sub_b",
		Category:   core.CategoryPage,
		EventTypes: []string{"page.created"},
	}); err != nil {
		t.Fatalf("register sub_b: %v", err)
	}
	if err := store.Register(ctx, core.SubscriberRegistration{
		ID:       "sub_a",
		Category: core.CategoryPage,
		EntityID: "page_1",
	}); err != nil {
		t.Fatalf("register sub_a: %v", err)
	}
	if err := store.Register(ctx, core.SubscriberRegistration{
		ID:       "sub_c",
		Category: core.CategoryComment,
	}); err != nil {
		t.Fatalf("register sub_c: %v", err)
	}

	pages, err := store.ListSubscribers(ctx, core.CategoryPage)
	if err != nil {
		t.Fatalf("list page subscribers: %v", err)
	}
	if len(pages) != 2 || pages[0].ID != "sub_a" || pages[1].ID != "sub_b" {
		t.Fatalf("unexpected page subscribers: %#v", pages)
	}
	if len(pages[1].EventTypes) != 1 || pages[1].EventTypes[0] != "page.created" {
		t.Fatalf("expected event types round trip, got %#v", pages[1].EventTypes)
	}

	if err := store.Register(ctx, core.SubscriberRegistration{
		ID:         "sub_b",
		Category:   core.CategoryPage,
		EventTypes: []string{"page.deleted"},
	}); err != nil {
		t.Fatalf("replace sub_b: %v", err)
	}
	replaced, err := store.Get(ctx, "sub_b")
	if err != nil {
		t.Fatalf("get sub_b: %v", err)
	}
	if len(replaced.EventTypes) != 1 || replaced.EventTypes[0] != "page.deleted" {
		t.Fatalf("expected replaced filters, got %#v", replaced)
	}

	if err := store.Register(ctx, core.SubscriberRegistration{ID: "bad", Category: "workspace"}); err == nil {
		t.Fatalf("expected invalid category rejection")
	}

	if err := store.Unregister(ctx, "sub_a"); err != nil {
		t.Fatalf("unregister: %v", err)
	}
	pages, err = store.ListSubscribers(ctx, core.CategoryPage)
	if err != nil {
		t.Fatalf("list after unregister: %v", err)
	}
	if len(pages) != 1 || pages[0].ID != "sub_b" {
		t.Fatalf("unexpected subscribers after unregister: %#v", pages)
	}
}

func TestSubscriberStore_ListReturnsEveryRegistration(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.SubscriberStore()

	const total = 60
	for i := 0; i < total; i++ {
		if err := store.Register(ctx, core.SubscriberRegistration{
			ID:       fmt.Sprintf("sub_%03d", i),
			Category: core.CategoryPage,
		}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}

	listed, err := store.ListSubscribers(ctx, core.CategoryPage)
	if err != nil {
		t.Fatalf("list subscribers: %v", err)
	}
	if len(listed) != total {
		t.Fatalf("expected %d registrations, got %d", total, len(listed))
	}
	if listed[0].ID != "sub_000" || listed[total-1].ID != "sub_059" {
		t.Fatalf("expected registration id order, got %q..%q", listed[0].ID, listed[total-1].ID)
	}

	router := webhooks.NewRouter(factory.SubscriberRegistry(), core.NewRecordingDeliverer(), nil)
	result, err := router.Route(ctx, core.WebhookEvent{ID: "evt_all", Type: "page.updated"})
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(result.Delivered) != total {
		t.Fatalf("expected event routed to %d registrations, got %d", total, len(result.Delivered))
	}
}

func TestNewService_BuildsStoresFromPersistenceClient(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	svc, err := notion.NewService(ctx, notion.Config{}, notion.WithPersistenceClient(client))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Tokens().Provision(ctx, "secret_db"); err != nil {
		t.Fatalf("provision: %v", err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	stored, err := factory.KVStore().Get(ctx, core.DefaultTokenKey)
	if err != nil || stored != "secret_db" {
		t.Fatalf("expected token persisted in sql kv, got %q err=%v", stored, err)
	}
	signal, err := sqlstore.NewKVTokenSignal(factory.KVStore(), "")
	if err != nil {
		t.Fatalf("new token signal: %v", err)
	}
	if surfaced, err := signal.Current(ctx); err != nil || surfaced != "secret_db" {
		t.Fatalf("expected token signal published, got %q err=%v", surfaced, err)
	}

	registry, ok := svc.SubscriberRegistry()
	if !ok {
		t.Fatalf("expected writable sql subscriber registry")
	}
	if err := registry.Register(ctx, core.SubscriberRegistration{ID: "sub_db", Category: core.CategoryPage}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Router().Route(ctx, core.WebhookEvent{
		ID:   "evt_db",
		Type: "page.created",
		Raw:  map[string]any{"id": "evt_db", "type": "page.created"},
	}); err != nil {
		t.Fatalf("route: %v", err)
	}
	entries, err := factory.DeliveryStore().ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	if len(entries) != 1 || entries[0].EventID != "evt_db" || entries[0].Status != sqlstore.DeliveryStatusDelivered {
		t.Fatalf("expected audited delivery, got %#v", entries)
	}
}

func TestNewService_ExplicitStoresOverridePersistenceClient(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	kv := core.NewMemoryKVStore()
	svc, err := notion.NewService(ctx, notion.Config{},
		notion.WithPersistenceClient(client),
		notion.WithKVStore(kv),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if err := svc.Tokens().Provision(ctx, "secret_mem"); err != nil {
		t.Fatalf("provision: %v", err)
	}
	if value, err := kv.Get(ctx, core.DefaultTokenKey); err != nil || value != "secret_mem" {
		t.Fatalf("expected explicit kv store used, got %q err=%v", value, err)
	}

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	if _, err := factory.KVStore().Get(ctx, core.DefaultTokenKey); !errors.Is(err, core.ErrKeyNotFound) {
		t.Fatalf("expected sql kv untouched, got %v", err)
	}
}

func TestDeliveryStore_WrapRecordsDispatch(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	recorder := core.NewRecordingDeliverer()
	deliverer := factory.DeliveryStore().Wrap(recorder, nil)

	event := core.WebhookEvent{
		ID:   "evt_1",
		Type: "page.created",
		Raw:  map[string]any{"id": "evt_1", "type": "page.created"},
	}
	if err := deliverer.Deliver(ctx, []string{"sub_1", "sub_2"}, event); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if len(recorder.Deliveries()) != 1 {
		t.Fatalf("expected wrapped deliverer invocation")
	}

	entries, err := factory.DeliveryStore().ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one delivery entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.EventID != "evt_1" || entry.Status != sqlstore.DeliveryStatusDelivered || len(entry.RegistrationIDs) != 2 {
		t.Fatalf("unexpected delivery entry: %#v", entry)
	}

	recorder.Err = errors.New("downstream unavailable")
	if err := deliverer.Deliver(ctx, []string{"sub_1"}, event); err == nil {
		t.Fatalf("expected downstream error to propagate")
	}
	entries, err = factory.DeliveryStore().ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("list deliveries: %v", err)
	}
	failed := 0
	for _, entry := range entries {
		if entry.Status == sqlstore.DeliveryStatusFailed && entry.Error == "downstream unavailable" {
			failed++
		}
	}
	if failed != 1 {
		t.Fatalf("expected one failed delivery entry, got %#v", entries)
	}
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:notion-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := testPersistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}
	client, err := persistence.New(cfg, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		t.Fatalf("new persistence client: %v", err)
	}

	ctx := context.Background()
	_, err = notionmigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != notionmigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}, notionmigrations.WithValidationTargets(notionmigrations.DialectSQLite))
	if err != nil {
		_ = client.Close()
		t.Fatalf("register migrations: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}

	return client, func() {
		_ = client.Close()
	}
}
