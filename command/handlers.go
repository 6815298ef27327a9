package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
)

// MutatingService is the write side of the operation units. *api.Client
// satisfies it.
type MutatingService interface {
	CreatePage(ctx context.Context, in api.CreatePageInput) (api.Page, error)
	UpdatePage(ctx context.Context, in api.UpdatePageInput) (api.Page, error)
	ArchivePage(ctx context.Context, pageID string) (api.ArchivedPage, error)
	CreateDatabase(ctx context.Context, in api.CreateDatabaseInput) (api.Database, error)
	UpdateDatabase(ctx context.Context, in api.UpdateDatabaseInput) (api.Database, error)
	AppendBlockChildren(ctx context.Context, in api.AppendBlockChildrenInput) (api.List, error)
	UpdateBlock(ctx context.Context, in api.UpdateBlockInput) (api.Block, error)
	DeleteBlock(ctx context.Context, blockID string) (api.DeletedBlock, error)
	CreateComment(ctx context.Context, in api.CreateCommentInput) (api.Comment, error)
}

type TokenResyncer interface {
	Resync(ctx context.Context) (bool, error)
}

type CreatePageCommand struct {
	service MutatingService
}

func NewCreatePageCommand(service MutatingService) *CreatePageCommand {
	return &CreatePageCommand{service: service}
}

func (c *CreatePageCommand) Execute(ctx context.Context, msg CreatePageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: page service is required")
	}
	out, err := c.service.CreatePage(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdatePageCommand struct {
	service MutatingService
}

func NewUpdatePageCommand(service MutatingService) *UpdatePageCommand {
	return &UpdatePageCommand{service: service}
}

func (c *UpdatePageCommand) Execute(ctx context.Context, msg UpdatePageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: page service is required")
	}
	out, err := c.service.UpdatePage(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ArchivePageCommand struct {
	service MutatingService
}

func NewArchivePageCommand(service MutatingService) *ArchivePageCommand {
	return &ArchivePageCommand{service: service}
}

func (c *ArchivePageCommand) Execute(ctx context.Context, msg ArchivePageMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: page service is required")
	}
	out, err := c.service.ArchivePage(ctx, msg.PageID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateDatabaseCommand struct {
	service MutatingService
}

func NewCreateDatabaseCommand(service MutatingService) *CreateDatabaseCommand {
	return &CreateDatabaseCommand{service: service}
}

func (c *CreateDatabaseCommand) Execute(ctx context.Context, msg CreateDatabaseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: database service is required")
	}
	out, err := c.service.CreateDatabase(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateDatabaseCommand struct {
	service MutatingService
}

func NewUpdateDatabaseCommand(service MutatingService) *UpdateDatabaseCommand {
	return &UpdateDatabaseCommand{service: service}
}

func (c *UpdateDatabaseCommand) Execute(ctx context.Context, msg UpdateDatabaseMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: database service is required")
	}
	out, err := c.service.UpdateDatabase(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AppendBlockChildrenCommand struct {
	service MutatingService
}

func NewAppendBlockChildrenCommand(service MutatingService) *AppendBlockChildrenCommand {
	return &AppendBlockChildrenCommand{service: service}
}

func (c *AppendBlockChildrenCommand) Execute(ctx context.Context, msg AppendBlockChildrenMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: block service is required")
	}
	out, err := c.service.AppendBlockChildren(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateBlockCommand struct {
	service MutatingService
}

func NewUpdateBlockCommand(service MutatingService) *UpdateBlockCommand {
	return &UpdateBlockCommand{service: service}
}

func (c *UpdateBlockCommand) Execute(ctx context.Context, msg UpdateBlockMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: block service is required")
	}
	out, err := c.service.UpdateBlock(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeleteBlockCommand struct {
	service MutatingService
}

func NewDeleteBlockCommand(service MutatingService) *DeleteBlockCommand {
	return &DeleteBlockCommand{service: service}
}

func (c *DeleteBlockCommand) Execute(ctx context.Context, msg DeleteBlockMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: block service is required")
	}
	out, err := c.service.DeleteBlock(ctx, msg.BlockID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateCommentCommand struct {
	service MutatingService
}

func NewCreateCommentCommand(service MutatingService) *CreateCommentCommand {
	return &CreateCommentCommand{service: service}
}

func (c *CreateCommentCommand) Execute(ctx context.Context, msg CreateCommentMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: comment service is required")
	}
	out, err := c.service.CreateComment(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RegisterSubscriberCommand struct {
	registry core.SubscriberRegistry
}

func NewRegisterSubscriberCommand(registry core.SubscriberRegistry) *RegisterSubscriberCommand {
	return &RegisterSubscriberCommand{registry: registry}
}

func (c *RegisterSubscriberCommand) Execute(ctx context.Context, msg RegisterSubscriberMessage) error {
	if c == nil || c.registry == nil {
		return commandDependencyError("command: subscriber registry is required")
	}
	if err := c.registry.Register(ctx, msg.Registration); err != nil {
		return err
	}
	storeResult(ctx, msg.Registration)
	return nil
}

type UnregisterSubscriberCommand struct {
	registry core.SubscriberRegistry
}

func NewUnregisterSubscriberCommand(registry core.SubscriberRegistry) *UnregisterSubscriberCommand {
	return &UnregisterSubscriberCommand{registry: registry}
}

func (c *UnregisterSubscriberCommand) Execute(ctx context.Context, msg UnregisterSubscriberMessage) error {
	if c == nil || c.registry == nil {
		return commandDependencyError("command: subscriber registry is required")
	}
	return c.registry.Unregister(ctx, msg.RegistrationID)
}

// ResyncTokenCommand republishes the stored verification token to the
// operator signal. The stored result reports whether a publish happened.
type ResyncTokenCommand struct {
	tokens TokenResyncer
}

func NewResyncTokenCommand(tokens TokenResyncer) *ResyncTokenCommand {
	return &ResyncTokenCommand{tokens: tokens}
}

func (c *ResyncTokenCommand) Execute(ctx context.Context, _ ResyncTokenMessage) error {
	if c == nil || c.tokens == nil {
		return commandDependencyError("command: token lifecycle is required")
	}
	published, err := c.tokens.Resync(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, published)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
