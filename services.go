package notion

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
	"github.com/goliatone/go-notion/inbound"
	"github.com/goliatone/go-notion/transport"
	"github.com/goliatone/go-notion/webhooks"
)

type Config = core.Config

type Option = core.Option

type Dependencies = core.Dependencies

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithErrorMapper       = core.WithErrorMapper
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithHTTPClient        = core.WithHTTPClient
	WithSleep             = core.WithSleep
	WithKVStore           = core.WithKVStore
	WithSubscriberLister  = core.WithSubscriberLister
	WithDeliverer         = core.WithDeliverer
	WithTokenSignal       = core.WithTokenSignal
	WithPersistenceClient = core.WithPersistenceClient
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// Service is the assembled integration: the API client over the resilient
// executor plus the webhook pipeline.
type Service struct {
	deps     core.Dependencies
	executor *transport.Executor
	client   *api.Client
	tokens   *webhooks.TokenLifecycle
	router   *webhooks.Router
	endpoint *webhooks.Endpoint
	handler  http.Handler
}

// NewService resolves dependencies and wires every component without touching
// the network or the token signal.
func NewService(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	deps, err := core.ResolveDependencies(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := deps.Config.Validate(); err != nil {
		return nil, mapBuildError(deps.ErrorMapper, err)
	}
	deps.Logger = workspaceLogger(deps.Logger, deps.Config.Workspace.DefaultName)
	if err := attachPersistenceStores(&deps); err != nil {
		return nil, mapBuildError(deps.ErrorMapper, err)
	}

	executor := transport.NewExecutor(deps.HTTPClient, deps.Config, deps.Logger)
	if deps.Sleep != nil {
		executor.Sleep = deps.Sleep
	}
	client := api.NewClient(executor, deps.Config.API.Key, deps.Logger)

	tokens := webhooks.NewTokenLifecycle(deps.KVStore, deps.TokenSignal, deps.Config.TokenKey(), deps.Logger)
	router := webhooks.NewRouter(deps.Subscribers, deps.Deliverer, deps.Logger)
	endpoint := webhooks.NewEndpoint(tokens, webhooks.NewSignatureVerifier(), router, deps.Logger)

	return &Service{
		deps:     deps,
		executor: executor,
		client:   client,
		tokens:   tokens,
		router:   router,
		endpoint: endpoint,
		handler: inbound.NewHandler(endpoint, inbound.HandlerConfig{
			Path:         deps.Config.Webhooks.Path,
			MaxBodyBytes: deps.Config.Webhooks.MaxBodyBytes,
			Logger:       deps.Logger,
		}),
	}, nil
}

// Setup builds the service and resyncs the token signal once. A resync
// failure is logged and never fails startup.
func Setup(ctx context.Context, cfg Config, opts ...Option) (*Service, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := NewService(ctx, cfg, opts...)
	if err != nil {
		return nil, err
	}
	published, err := svc.tokens.Resync(ctx)
	if err != nil {
		core.Log(ctx, svc.deps.Logger, core.LevelWarn, "notion webhook token resync at startup failed", map[string]any{
			"error": err.Error(),
		})
		return svc, nil
	}
	if published {
		core.Log(ctx, svc.deps.Logger, core.LevelInfo, "notion webhook token republished to signal", nil)
	}
	return svc, nil
}

// workspaceLogger tags every line with the configured workspace name when the
// logger can bind fields.
func workspaceLogger(logger core.Logger, workspace string) core.Logger {
	workspace = strings.TrimSpace(workspace)
	if workspace == "" {
		return logger
	}
	if fieldsLogger, ok := logger.(core.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{"workspace": workspace})
	}
	return logger
}

func mapBuildError(mapper core.ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.deps.Config
}

func (s *Service) Dependencies() Dependencies {
	if s == nil {
		return Dependencies{}
	}
	return s.deps
}

func (s *Service) Executor() *transport.Executor {
	if s == nil {
		return nil
	}
	return s.executor
}

func (s *Service) Client() *api.Client {
	if s == nil {
		return nil
	}
	return s.client
}

func (s *Service) Tokens() *webhooks.TokenLifecycle {
	if s == nil {
		return nil
	}
	return s.tokens
}

func (s *Service) Router() *webhooks.Router {
	if s == nil {
		return nil
	}
	return s.router
}

func (s *Service) Endpoint() *webhooks.Endpoint {
	if s == nil {
		return nil
	}
	return s.endpoint
}

// HTTPHandler serves the webhook endpoint at the configured path.
func (s *Service) HTTPHandler() http.Handler {
	if s == nil {
		return http.NotFoundHandler()
	}
	return s.handler
}

// SubscriberRegistry returns the configured lister when it also accepts
// writes.
func (s *Service) SubscriberRegistry() (core.SubscriberRegistry, bool) {
	if s == nil || s.deps.Subscribers == nil {
		return nil, false
	}
	registry, ok := s.deps.Subscribers.(core.SubscriberRegistry)
	return registry, ok
}
