package query

import (
	"strings"

	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
)

const (
	TypeGetPage           = "notion.query.page.get"
	TypeGetDatabaseSchema = "notion.query.database.schema"
	TypeQueryDatabase     = "notion.query.database.query"
	TypeListDatabases     = "notion.query.database.list"
	TypeGetBlockChildren  = "notion.query.block.children"
	TypeSearch            = "notion.query.search"
	TypeGetComments       = "notion.query.comment.list"
	TypeGetUser           = "notion.query.user.get"
	TypeListUsers         = "notion.query.user.list"
	TypeGetBotUser        = "notion.query.user.bot"
	TypeListSubscribers   = "notion.query.subscriber.list"
	TypeWebhookToken      = "notion.query.webhook_token.status"
)

type GetPageMessage struct {
	PageID          string
	IncludeChildren bool
}

func (GetPageMessage) Type() string { return TypeGetPage }

func (m GetPageMessage) Validate() error { return requireField("page_id", m.PageID) }

type GetDatabaseSchemaMessage struct {
	DatabaseID string
}

func (GetDatabaseSchemaMessage) Type() string { return TypeGetDatabaseSchema }

func (m GetDatabaseSchemaMessage) Validate() error { return requireField("database_id", m.DatabaseID) }

type QueryDatabaseMessage struct {
	Input api.QueryDatabaseInput
}

func (QueryDatabaseMessage) Type() string { return TypeQueryDatabase }

func (m QueryDatabaseMessage) Validate() error {
	if err := requireField("database_id", m.Input.DatabaseID); err != nil {
		return err
	}
	return validatePageSize(m.Input.PageSize)
}

type ListDatabasesMessage struct {
	Page api.ListInput
}

func (ListDatabasesMessage) Type() string { return TypeListDatabases }

func (m ListDatabasesMessage) Validate() error { return validatePageSize(m.Page.PageSize) }

type GetBlockChildrenMessage struct {
	BlockID string
	Page    api.ListInput
}

func (GetBlockChildrenMessage) Type() string { return TypeGetBlockChildren }

func (m GetBlockChildrenMessage) Validate() error {
	if err := requireField("block_id", m.BlockID); err != nil {
		return err
	}
	return validatePageSize(m.Page.PageSize)
}

type SearchMessage struct {
	Input api.SearchInput
}

func (SearchMessage) Type() string { return TypeSearch }

func (m SearchMessage) Validate() error { return validatePageSize(m.Input.PageSize) }

type GetCommentsMessage struct {
	BlockID string
	Page    api.ListInput
}

func (GetCommentsMessage) Type() string { return TypeGetComments }

func (m GetCommentsMessage) Validate() error {
	if err := requireField("block_id", m.BlockID); err != nil {
		return err
	}
	return validatePageSize(m.Page.PageSize)
}

type GetUserMessage struct {
	UserID string
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error { return requireField("user_id", m.UserID) }

type ListUsersMessage struct {
	Page api.ListInput
}

func (ListUsersMessage) Type() string { return TypeListUsers }

func (m ListUsersMessage) Validate() error { return validatePageSize(m.Page.PageSize) }

type GetBotUserMessage struct{}

func (GetBotUserMessage) Type() string { return TypeGetBotUser }

func (GetBotUserMessage) Validate() error { return nil }

type ListSubscribersMessage struct {
	Category core.Category
}

func (ListSubscribersMessage) Type() string { return TypeListSubscribers }

func (m ListSubscribersMessage) Validate() error {
	if !m.Category.Valid() {
		return queryValidationError("category", "must be page, database, data_source or comment")
	}
	return nil
}

type WebhookTokenStatusMessage struct{}

func (WebhookTokenStatusMessage) Type() string { return TypeWebhookToken }

func (WebhookTokenStatusMessage) Validate() error { return nil }

func requireField(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return queryValidationError(field, "is required")
	}
	return nil
}

func validatePageSize(size int) error {
	if size < 0 {
		return queryValidationError("page_size", "must be >= 0")
	}
	return nil
}
