package gocommand

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	notion "github.com/goliatone/go-notion"
	"github.com/goliatone/go-notion/api"
	notioncommand "github.com/goliatone/go-notion/command"
	"github.com/goliatone/go-notion/core"
	notionquery "github.com/goliatone/go-notion/query"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) Registry() *command.Registry {
	if a == nil {
		return nil
	}
	return a.registry
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	if a == nil || a.registry == nil {
		return false
	}
	return a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if a == nil || a.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return a.registry.Initialize()
}

func SubscribeCommand[T any](cmd command.Commander[T], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
}

func SubscribeQuery[T any, R any](qry command.Querier[T, R], runnerOpts ...runner.Option) commanddispatcher.Subscription {
	return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
}

// Dispatch checks the message contract before handing msg to its command.
func Dispatch[T any](ctx context.Context, msg T) error {
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

// Query checks the message contract before handing msg to its query.
func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	if err := ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return commanddispatcher.Query[T, R](ctx, msg)
}

// RegisterAndSubscribe subscribes cmd on the dispatcher and records it in the
// registry. The subscription is released when registration fails.
func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	return adapter.keep(cmd, func() commanddispatcher.Subscription {
		return SubscribeCommand(cmd, runnerOpts...)
	})
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	return adapter.keep(qry, func() commanddispatcher.Subscription {
		return SubscribeQuery(qry, runnerOpts...)
	})
}

func (a *RegistryAdapter) keep(handler any, subscribe func() commanddispatcher.Subscription) (commanddispatcher.Subscription, error) {
	if a == nil || a.registry == nil {
		return nil, fmt.Errorf("gocommand: registry is not configured")
	}
	subscription := subscribe()
	if err := a.registry.RegisterCommand(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}

// Subscriptions collects dispatcher subscriptions so they can be released together.
type Subscriptions []commanddispatcher.Subscription

func (s Subscriptions) Unsubscribe() {
	for _, subscription := range s {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
}

// RegisterFacade registers and subscribes every facade command and query so
// hosts can drive the integration through Dispatch and Query.
func RegisterFacade(adapter *RegistryAdapter, facade *notion.Facade, runnerOpts ...runner.Option) (Subscriptions, error) {
	if facade == nil {
		return nil, fmt.Errorf("gocommand: facade is required")
	}
	commands := facade.Commands()
	queries := facade.Queries()

	subs := Subscriptions{}
	register := func(subscribe func() (commanddispatcher.Subscription, error)) error {
		subscription, err := subscribe()
		if err != nil {
			return err
		}
		subs = append(subs, subscription)
		return nil
	}

	steps := []func() (commanddispatcher.Subscription, error){
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.CreatePageMessage](adapter, commands.CreatePage, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.UpdatePageMessage](adapter, commands.UpdatePage, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.ArchivePageMessage](adapter, commands.ArchivePage, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.CreateDatabaseMessage](adapter, commands.CreateDatabase, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.UpdateDatabaseMessage](adapter, commands.UpdateDatabase, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.AppendBlockChildrenMessage](adapter, commands.AppendBlockChildren, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.UpdateBlockMessage](adapter, commands.UpdateBlock, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.DeleteBlockMessage](adapter, commands.DeleteBlock, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.CreateCommentMessage](adapter, commands.CreateComment, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.RegisterSubscriberMessage](adapter, commands.RegisterSubscriber, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.UnregisterSubscriberMessage](adapter, commands.UnregisterSubscriber, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribe[notioncommand.ResyncTokenMessage](adapter, commands.ResyncToken, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetPageMessage, api.Page](adapter, queries.GetPage, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetDatabaseSchemaMessage, api.Database](adapter, queries.GetDatabaseSchema, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.QueryDatabaseMessage, api.List](adapter, queries.QueryDatabase, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.ListDatabasesMessage, api.DatabaseList](adapter, queries.ListDatabases, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetBlockChildrenMessage, api.List](adapter, queries.GetBlockChildren, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.SearchMessage, api.List](adapter, queries.Search, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetCommentsMessage, api.List](adapter, queries.GetComments, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetUserMessage, api.User](adapter, queries.GetUser, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.ListUsersMessage, api.List](adapter, queries.ListUsers, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.GetBotUserMessage, api.BotUser](adapter, queries.GetBotUser, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.ListSubscribersMessage, []core.SubscriberRegistration](adapter, queries.ListSubscribers, runnerOpts...)
		},
		func() (commanddispatcher.Subscription, error) {
			return RegisterAndSubscribeQuery[notionquery.WebhookTokenStatusMessage, notionquery.WebhookTokenStatus](adapter, queries.WebhookTokenStatus, runnerOpts...)
		},
	}
	for _, step := range steps {
		if err := register(step); err != nil {
			subs.Unsubscribe()
			return nil, err
		}
	}
	return subs, nil
}
