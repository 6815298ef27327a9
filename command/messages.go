package command

import (
	"strings"

	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
)

const (
	TypeCreatePage           = "notion.command.page.create"
	TypeUpdatePage           = "notion.command.page.update"
	TypeArchivePage          = "notion.command.page.archive"
	TypeCreateDatabase       = "notion.command.database.create"
	TypeUpdateDatabase       = "notion.command.database.update"
	TypeAppendBlockChildren  = "notion.command.block.append_children"
	TypeUpdateBlock          = "notion.command.block.update"
	TypeDeleteBlock          = "notion.command.block.delete"
	TypeCreateComment        = "notion.command.comment.create"
	TypeRegisterSubscriber   = "notion.command.subscriber.register"
	TypeUnregisterSubscriber = "notion.command.subscriber.unregister"
	TypeResyncToken          = "notion.command.webhook_token.resync"
)

type CreatePageMessage struct {
	Input api.CreatePageInput
}

func (CreatePageMessage) Type() string { return TypeCreatePage }

func (m CreatePageMessage) Validate() error {
	if err := requireField("parent_id", m.Input.ParentID); err != nil {
		return err
	}
	switch strings.TrimSpace(m.Input.ParentType) {
	case "", api.ParentPage, api.ParentDatabase:
	default:
		return commandValidationError("parent_type", "must be page or database")
	}
	if m.Input.TemplateType == api.TemplateByID {
		return requireField("template_id", m.Input.TemplateID)
	}
	return nil
}

type UpdatePageMessage struct {
	Input api.UpdatePageInput
}

func (UpdatePageMessage) Type() string { return TypeUpdatePage }

func (m UpdatePageMessage) Validate() error {
	return requireField("page_id", m.Input.PageID)
}

type ArchivePageMessage struct {
	PageID string
}

func (ArchivePageMessage) Type() string { return TypeArchivePage }

func (m ArchivePageMessage) Validate() error {
	return requireField("page_id", m.PageID)
}

type CreateDatabaseMessage struct {
	Input api.CreateDatabaseInput
}

func (CreateDatabaseMessage) Type() string { return TypeCreateDatabase }

func (m CreateDatabaseMessage) Validate() error {
	if err := requireField("parent_page_id", m.Input.ParentPageID); err != nil {
		return err
	}
	if err := requireField("title", m.Input.Title); err != nil {
		return err
	}
	if len(m.Input.Properties) == 0 {
		return commandValidationError("properties", "at least one property is required")
	}
	return nil
}

type UpdateDatabaseMessage struct {
	Input api.UpdateDatabaseInput
}

func (UpdateDatabaseMessage) Type() string { return TypeUpdateDatabase }

func (m UpdateDatabaseMessage) Validate() error {
	return requireField("database_id", m.Input.DatabaseID)
}

type AppendBlockChildrenMessage struct {
	Input api.AppendBlockChildrenInput
}

func (AppendBlockChildrenMessage) Type() string { return TypeAppendBlockChildren }

func (m AppendBlockChildrenMessage) Validate() error {
	if err := requireField("parent_id", m.Input.ParentID); err != nil {
		return err
	}
	if len(m.Input.Children) == 0 {
		return commandValidationError("children", "at least one block is required")
	}
	return nil
}

type UpdateBlockMessage struct {
	Input api.UpdateBlockInput
}

func (UpdateBlockMessage) Type() string { return TypeUpdateBlock }

func (m UpdateBlockMessage) Validate() error {
	if err := requireField("block_id", m.Input.BlockID); err != nil {
		return err
	}
	if len(m.Input.Content) == 0 && m.Input.Archived == nil {
		return commandValidationError("content", "content or archived is required")
	}
	return nil
}

type DeleteBlockMessage struct {
	BlockID string
}

func (DeleteBlockMessage) Type() string { return TypeDeleteBlock }

func (m DeleteBlockMessage) Validate() error {
	return requireField("block_id", m.BlockID)
}

type CreateCommentMessage struct {
	Input api.CreateCommentInput
}

func (CreateCommentMessage) Type() string { return TypeCreateComment }

func (m CreateCommentMessage) Validate() error {
	if err := requireField("page_id", m.Input.PageID); err != nil {
		return err
	}
	if len(m.Input.RichText) == 0 {
		return commandValidationError("rich_text", "comment text is required")
	}
	return nil
}

type RegisterSubscriberMessage struct {
	Registration core.SubscriberRegistration
}

func (RegisterSubscriberMessage) Type() string { return TypeRegisterSubscriber }

func (m RegisterSubscriberMessage) Validate() error {
	return commandWrapValidation(m.Registration.Validate(), "command: invalid subscriber registration")
}

type UnregisterSubscriberMessage struct {
	RegistrationID string
}

func (UnregisterSubscriberMessage) Type() string { return TypeUnregisterSubscriber }

func (m UnregisterSubscriberMessage) Validate() error {
	return requireField("registration_id", m.RegistrationID)
}

type ResyncTokenMessage struct{}

func (ResyncTokenMessage) Type() string { return TypeResyncToken }

func (ResyncTokenMessage) Validate() error { return nil }

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return commandValidationError(field, "is required")
	}
	return nil
}
