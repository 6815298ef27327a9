package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	notion "github.com/goliatone/go-notion"
	"github.com/goliatone/go-notion/adapters/gologger"
	notionmigrations "github.com/goliatone/go-notion/migrations"
	sqlstore "github.com/goliatone/go-notion/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"
)

const (
	driverSQLite   = "sqlite3"
	driverPostgres = "postgres"
)

type persistenceConfig struct {
	driver string
	server string
	debug  bool
}

func (c persistenceConfig) GetDebug() bool                { return c.debug }
func (c persistenceConfig) GetDriver() string             { return c.driver }
func (c persistenceConfig) GetServer() string             { return c.server }
func (c persistenceConfig) GetPingTimeout() time.Duration { return 5 * time.Second }
func (c persistenceConfig) GetOtelIdentifier() string     { return "go-notion" }

// runtime is everything a command needs, opened once per invocation.
type runtime struct {
	logger   *glog.BaseLogger
	client   *persistence.Client
	stores   *sqlstore.RepositoryFactory
	service  *notion.Service
	facade   *notion.Facade
	shutdown func()
}

func newLogger() *glog.BaseLogger {
	return gologger.NewLogger(os.Stderr, "notion", viper.GetString("log-level"), viper.GetString("log-format"))
}

func openPersistence(ctx context.Context, logger glog.Logger) (*persistence.Client, error) {
	driver := strings.ToLower(strings.TrimSpace(viper.GetString("db-driver")))
	dsn := strings.TrimSpace(viper.GetString("dsn"))
	if dsn == "" {
		return nil, fmt.Errorf("--dsn is required")
	}

	var dialect schema.Dialect
	var migrationDialect string
	switch driver {
	case driverSQLite:
		dialect = sqlitedialect.New()
		migrationDialect = notionmigrations.DialectSQLite
	case driverPostgres:
		dialect = pgdialect.New()
		migrationDialect = notionmigrations.DialectPostgres
	default:
		return nil, fmt.Errorf("unsupported --db-driver %q", driver)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == driverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(persistenceConfig{
		driver: driver,
		server: dsn,
		debug:  viper.GetBool("db-debug"),
	}, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("persistence client: %w", err)
	}

	_, err = notionmigrations.Register(ctx, func(_ context.Context, registered string, source string, fsys fs.FS) error {
		if registered != migrationDialect {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		logger.Debug("notion migrations registered", "dialect", registered, "source", source)
		return nil
	}, notionmigrations.WithValidationTargets(migrationDialect))
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// openRuntime opens the database, applies migrations and assembles the
// service on top of the sql stores.
func openRuntime(ctx context.Context) (*runtime, error) {
	logger := newLogger()
	client, err := openPersistence(ctx, logger)
	if err != nil {
		return nil, err
	}
	closeClient := func() { _ = client.Close() }

	if err := client.Migrate(ctx); err != nil {
		closeClient()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	stores, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		closeClient()
		return nil, err
	}
	cacheConfig := repositorycache.DefaultConfig()
	cacheConfig.TTL = 30 * time.Second
	cacheService, err := repositorycache.NewCacheService(cacheConfig)
	if err != nil {
		closeClient()
		return nil, fmt.Errorf("subscriber cache: %w", err)
	}
	if err := stores.WithCache(cacheService); err != nil {
		closeClient()
		return nil, err
	}

	cfg := notion.Config{}
	cfg.API.Key = viper.GetString("api-key")
	cfg.API.BaseURL = viper.GetString("api-base-url")
	cfg.Workspace.DefaultName = viper.GetString("workspace")

	// kv store, token signal and audited deliverer are built from the client.
	service, err := notion.Setup(ctx, cfg,
		notion.WithLoggerProvider(logger),
		notion.WithLogger(logger),
		notion.WithPersistenceClient(client),
		notion.WithSubscriberLister(stores.SubscriberRegistry()),
	)
	if err != nil {
		closeClient()
		return nil, err
	}
	facade, err := notion.NewServiceFacade(service)
	if err != nil {
		closeClient()
		return nil, err
	}

	return &runtime{
		logger:   logger,
		client:   client,
		stores:   stores,
		service:  service,
		facade:   facade,
		shutdown: closeClient,
	}, nil
}

func withRuntime(ctx context.Context, fn func(ctx context.Context, rt *runtime) error) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.shutdown()
	return fn(ctx, rt)
}
