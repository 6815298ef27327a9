package core

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

// Dependencies is the resolved collaborator set used to assemble the runtime.
type Dependencies struct {
	Config           Config
	Logger           Logger
	LoggerProvider   LoggerProvider
	ErrorMapper      ErrorMapper
	ConfigProvider   ConfigProvider
	OptionsResolver  OptionsResolver
	HTTPClient       HTTPDoer
	Sleep            func(ctx context.Context, d time.Duration) error
	KVStore          KVStore
	Subscribers      SubscriberLister
	Deliverer        Deliverer
	TokenSignal      TokenSignal
	PersistenceStore any
}

type dependencyBuilder struct {
	runtimeConfig   Config
	logger          Logger
	loggerProvider  LoggerProvider
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	httpClient      HTTPDoer
	sleep           func(ctx context.Context, d time.Duration) error
	kvStore         KVStore
	subscribers     SubscriberLister
	deliverer       Deliverer
	tokenSignal     TokenSignal
	persistence     any
}

type Option func(*dependencyBuilder)

func WithLogger(logger Logger) Option {
	return func(b *dependencyBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *dependencyBuilder) {
		b.loggerProvider = provider
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *dependencyBuilder) {
		b.errorMapper = mapper
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *dependencyBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *dependencyBuilder) {
		b.optionsResolver = resolver
	}
}

func WithHTTPClient(client HTTPDoer) Option {
	return func(b *dependencyBuilder) {
		b.httpClient = client
	}
}

// WithSleep replaces the executor's wait between retries.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(b *dependencyBuilder) {
		b.sleep = sleep
	}
}

func WithKVStore(store KVStore) Option {
	return func(b *dependencyBuilder) {
		b.kvStore = store
	}
}

func WithSubscriberLister(lister SubscriberLister) Option {
	return func(b *dependencyBuilder) {
		b.subscribers = lister
	}
}

func WithDeliverer(deliverer Deliverer) Option {
	return func(b *dependencyBuilder) {
		b.deliverer = deliverer
	}
}

func WithTokenSignal(signal TokenSignal) Option {
	return func(b *dependencyBuilder) {
		b.tokenSignal = signal
	}
}

// WithPersistenceClient supplies a database handle (a go-persistence-bun
// client or a *bun.DB). Stores not set explicitly stay nil here and are built
// from it when the service is assembled.
func WithPersistenceClient(client any) Option {
	return func(b *dependencyBuilder) {
		b.persistence = client
	}
}

// ResolveDependencies applies options over defaults and resolves the layered config.
func ResolveDependencies(ctx context.Context, runtime Config, options ...Option) (Dependencies, error) {
	builder := defaultDependencyBuilder(runtime)
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	logger := ResolveLogger("notion", builder.loggerProvider, builder.logger)
	if builder.errorMapper == nil {
		builder.errorMapper = MapError
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.httpClient == nil {
		builder.httpClient = &http.Client{}
	}
	if builder.persistence == nil {
		if builder.kvStore == nil {
			builder.kvStore = NewMemoryKVStore()
		}
		if builder.subscribers == nil {
			builder.subscribers = NewMemorySubscriberRegistry()
		}
		if builder.deliverer == nil {
			builder.deliverer = NewLoggingDeliverer(logger)
		}
		if builder.tokenSignal == nil {
			builder.tokenSignal = NewMemoryTokenSignal()
		}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(ctx, defaults)
	if err != nil {
		return Dependencies{}, fmt.Errorf("core: load config: %w", err)
	}
	resolved, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return Dependencies{}, fmt.Errorf("core: resolve config: %w", err)
	}

	return Dependencies{
		Config:           resolved,
		Logger:           logger,
		LoggerProvider:   builder.loggerProvider,
		ErrorMapper:      builder.errorMapper,
		ConfigProvider:   builder.configProvider,
		OptionsResolver:  builder.optionsResolver,
		HTTPClient:       builder.httpClient,
		Sleep:            builder.sleep,
		KVStore:          builder.kvStore,
		Subscribers:      builder.subscribers,
		Deliverer:        builder.deliverer,
		TokenSignal:      builder.tokenSignal,
		PersistenceStore: builder.persistence,
	}, nil
}

func defaultDependencyBuilder(runtime Config) dependencyBuilder {
	loggerProvider, logger := glog.Resolve("notion", nil, nil)
	return dependencyBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		errorMapper:     MapError,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

type staticRawConfigLoader map[string]any

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l) == 0 {
		return map[string]any{}, nil
	}
	return maps.Clone(map[string]any(l)), nil
}

// NewStaticConfigLoader serves a fixed raw map, e.g. values collected from CLI flags.
func NewStaticConfigLoader(values map[string]any) RawConfigLoader {
	return staticRawConfigLoader(values)
}

// CfgxConfigProvider decodes the raw map served by Loader over the defaults.
type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	var loader RawConfigLoader = staticRawConfigLoader(nil)
	if p != nil && p.Loader != nil {
		loader = p.Loader
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return decodeConfig(raw, defaults)
}

func decodeConfig(raw map[string]any, defaults Config) (Config, error) {
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

// Resolve layers runtime over loaded over defaults and decodes the merge.
func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("notion.defaults", 0),
			configToLayerMap(defaults, true),
			opts.WithSnapshotID[map[string]any]("notion.defaults"),
		),
		opts.NewLayer(
			opts.NewScope("notion.config", 10),
			configToLayerMap(loaded, false),
			opts.WithSnapshotID[map[string]any]("notion.config"),
		),
		opts.NewLayer(
			opts.NewScope("notion.runtime", 20),
			configToLayerMap(runtime, false),
			opts.WithSnapshotID[map[string]any]("notion.runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: build config layers: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: merge config layers: %w", err)
	}
	return decodeConfig(merged.Value, defaults)
}

// configToLayerMap renders cfg as a nested map for one options layer. Unless
// includeZero is set, empty strings and non-positive numbers are left out so
// the layer does not mask lower ones.
func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	put := func(target map[string]any, key string, value any, set bool) {
		if includeZero || set {
			target[key] = value
		}
	}
	nonBlank := func(value string) bool { return strings.TrimSpace(value) != "" }

	api := map[string]any{}
	put(api, "key", cfg.API.Key, nonBlank(cfg.API.Key))
	put(api, "base_url", cfg.API.BaseURL, nonBlank(cfg.API.BaseURL))
	put(api, "version", cfg.API.Version, nonBlank(cfg.API.Version))
	put(api, "retry_attempts", cfg.API.RetryAttempts, cfg.API.RetryAttempts > 0)
	put(api, "request_timeout_ms", cfg.API.RequestTimeoutMS, cfg.API.RequestTimeoutMS > 0)

	workspace := map[string]any{}
	put(workspace, "default_name", cfg.Workspace.DefaultName, nonBlank(cfg.Workspace.DefaultName))

	webhooks := map[string]any{}
	put(webhooks, "path", cfg.Webhooks.Path, nonBlank(cfg.Webhooks.Path))
	put(webhooks, "token_key", cfg.Webhooks.TokenKey, nonBlank(cfg.Webhooks.TokenKey))
	put(webhooks, "max_body_bytes", cfg.Webhooks.MaxBodyBytes, cfg.Webhooks.MaxBodyBytes > 0)

	layer := map[string]any{}
	put(layer, "service_name", cfg.ServiceName, nonBlank(cfg.ServiceName))
	for key, section := range map[string]map[string]any{"api": api, "workspace": workspace, "webhooks": webhooks} {
		if len(section) > 0 {
			layer[key] = section
		}
	}
	return layer
}
