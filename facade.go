package notion

import (
	"fmt"

	notioncommand "github.com/goliatone/go-notion/command"
	"github.com/goliatone/go-notion/core"
	notionquery "github.com/goliatone/go-notion/query"
)

// CommandQueryService is what the facade needs from the API side.
type CommandQueryService interface {
	notioncommand.MutatingService
	notionquery.Reader
}

type Commands struct {
	CreatePage           *notioncommand.CreatePageCommand
	UpdatePage           *notioncommand.UpdatePageCommand
	ArchivePage          *notioncommand.ArchivePageCommand
	CreateDatabase       *notioncommand.CreateDatabaseCommand
	UpdateDatabase       *notioncommand.UpdateDatabaseCommand
	AppendBlockChildren  *notioncommand.AppendBlockChildrenCommand
	UpdateBlock          *notioncommand.UpdateBlockCommand
	DeleteBlock          *notioncommand.DeleteBlockCommand
	CreateComment        *notioncommand.CreateCommentCommand
	RegisterSubscriber   *notioncommand.RegisterSubscriberCommand
	UnregisterSubscriber *notioncommand.UnregisterSubscriberCommand
	ResyncToken          *notioncommand.ResyncTokenCommand
}

type Queries struct {
	GetPage            *notionquery.GetPageQuery
	GetDatabaseSchema  *notionquery.GetDatabaseSchemaQuery
	QueryDatabase      *notionquery.QueryDatabaseQuery
	ListDatabases      *notionquery.ListDatabasesQuery
	GetBlockChildren   *notionquery.GetBlockChildrenQuery
	Search             *notionquery.SearchQuery
	GetComments        *notionquery.GetCommentsQuery
	GetUser            *notionquery.GetUserQuery
	ListUsers          *notionquery.ListUsersQuery
	GetBotUser         *notionquery.GetBotUserQuery
	ListSubscribers    *notionquery.ListSubscribersQuery
	WebhookTokenStatus *notionquery.WebhookTokenStatusQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	registry core.SubscriberRegistry
	lister   core.SubscriberLister
	tokens   TokenManager
}

// TokenManager is the token side the facade exposes.
type TokenManager interface {
	notioncommand.TokenResyncer
	notionquery.TokenReader
}

func WithSubscriberRegistry(registry core.SubscriberRegistry) FacadeOption {
	return func(options *facadeOptions) {
		options.registry = registry
		if registry != nil {
			options.lister = registry
		}
	}
}

func WithTokenLifecycle(tokens TokenManager) FacadeOption {
	return func(options *facadeOptions) {
		options.tokens = tokens
	}
}

// NewFacade wires one handler per operation. Subscriber and token handlers
// report a dependency error when their collaborator was not supplied.
func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("notion: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	var resyncer notioncommand.TokenResyncer
	var reader notionquery.TokenReader
	if cfg.tokens != nil {
		resyncer = cfg.tokens
		reader = cfg.tokens
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreatePage:           notioncommand.NewCreatePageCommand(service),
		UpdatePage:           notioncommand.NewUpdatePageCommand(service),
		ArchivePage:          notioncommand.NewArchivePageCommand(service),
		CreateDatabase:       notioncommand.NewCreateDatabaseCommand(service),
		UpdateDatabase:       notioncommand.NewUpdateDatabaseCommand(service),
		AppendBlockChildren:  notioncommand.NewAppendBlockChildrenCommand(service),
		UpdateBlock:          notioncommand.NewUpdateBlockCommand(service),
		DeleteBlock:          notioncommand.NewDeleteBlockCommand(service),
		CreateComment:        notioncommand.NewCreateCommentCommand(service),
		RegisterSubscriber:   notioncommand.NewRegisterSubscriberCommand(cfg.registry),
		UnregisterSubscriber: notioncommand.NewUnregisterSubscriberCommand(cfg.registry),
		ResyncToken:          notioncommand.NewResyncTokenCommand(resyncer),
	}
	facade.queries = Queries{
		GetPage:            notionquery.NewGetPageQuery(service),
		GetDatabaseSchema:  notionquery.NewGetDatabaseSchemaQuery(service),
		QueryDatabase:      notionquery.NewQueryDatabaseQuery(service),
		ListDatabases:      notionquery.NewListDatabasesQuery(service),
		GetBlockChildren:   notionquery.NewGetBlockChildrenQuery(service),
		Search:             notionquery.NewSearchQuery(service),
		GetComments:        notionquery.NewGetCommentsQuery(service),
		GetUser:            notionquery.NewGetUserQuery(service),
		ListUsers:          notionquery.NewListUsersQuery(service),
		GetBotUser:         notionquery.NewGetBotUserQuery(service),
		ListSubscribers:    notionquery.NewListSubscribersQuery(cfg.lister),
		WebhookTokenStatus: notionquery.NewWebhookTokenStatusQuery(reader),
	}
	return facade, nil
}

// NewServiceFacade builds the facade over an assembled Service.
func NewServiceFacade(svc *Service) (*Facade, error) {
	if svc == nil {
		return nil, fmt.Errorf("notion: service is required")
	}
	opts := []FacadeOption{WithTokenLifecycle(svc.Tokens())}
	if registry, ok := svc.SubscriberRegistry(); ok {
		opts = append(opts, WithSubscriberRegistry(registry))
	} else {
		opts = append(opts, func(options *facadeOptions) {
			options.lister = svc.Dependencies().Subscribers
		})
	}
	return NewFacade(svc.Client(), opts...)
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
