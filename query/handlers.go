package query

import (
	"context"

	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
)

// Reader is the read side of the operation units. *api.Client satisfies it.
type Reader interface {
	GetPage(ctx context.Context, pageID string, includeChildren bool) (api.Page, error)
	GetDatabaseSchema(ctx context.Context, databaseID string) (api.Database, error)
	QueryDatabase(ctx context.Context, in api.QueryDatabaseInput) (api.List, error)
	ListDatabases(ctx context.Context, in api.ListInput) (api.DatabaseList, error)
	GetBlockChildren(ctx context.Context, blockID string, in api.ListInput) (api.List, error)
	Search(ctx context.Context, in api.SearchInput) (api.List, error)
	GetComments(ctx context.Context, blockID string, in api.ListInput) (api.List, error)
	GetUser(ctx context.Context, userID string) (api.User, error)
	ListUsers(ctx context.Context, in api.ListInput) (api.List, error)
	GetBotUser(ctx context.Context) (api.BotUser, error)
}

type TokenReader interface {
	Current(ctx context.Context) (token string, ok bool, err error)
}

// WebhookTokenStatus never carries the token itself.
type WebhookTokenStatus struct {
	Provisioned bool
}

type GetPageQuery struct {
	reader Reader
}

func NewGetPageQuery(reader Reader) *GetPageQuery {
	return &GetPageQuery{reader: reader}
}

func (q *GetPageQuery) Query(ctx context.Context, msg GetPageMessage) (api.Page, error) {
	if q == nil || q.reader == nil {
		return api.Page{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetPage(ctx, msg.PageID, msg.IncludeChildren)
}

type GetDatabaseSchemaQuery struct {
	reader Reader
}

func NewGetDatabaseSchemaQuery(reader Reader) *GetDatabaseSchemaQuery {
	return &GetDatabaseSchemaQuery{reader: reader}
}

func (q *GetDatabaseSchemaQuery) Query(ctx context.Context, msg GetDatabaseSchemaMessage) (api.Database, error) {
	if q == nil || q.reader == nil {
		return api.Database{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetDatabaseSchema(ctx, msg.DatabaseID)
}

type QueryDatabaseQuery struct {
	reader Reader
}

func NewQueryDatabaseQuery(reader Reader) *QueryDatabaseQuery {
	return &QueryDatabaseQuery{reader: reader}
}

func (q *QueryDatabaseQuery) Query(ctx context.Context, msg QueryDatabaseMessage) (api.List, error) {
	if q == nil || q.reader == nil {
		return api.List{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.QueryDatabase(ctx, msg.Input)
}

type ListDatabasesQuery struct {
	reader Reader
}

func NewListDatabasesQuery(reader Reader) *ListDatabasesQuery {
	return &ListDatabasesQuery{reader: reader}
}

func (q *ListDatabasesQuery) Query(ctx context.Context, msg ListDatabasesMessage) (api.DatabaseList, error) {
	if q == nil || q.reader == nil {
		return api.DatabaseList{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.ListDatabases(ctx, msg.Page)
}

type GetBlockChildrenQuery struct {
	reader Reader
}

func NewGetBlockChildrenQuery(reader Reader) *GetBlockChildrenQuery {
	return &GetBlockChildrenQuery{reader: reader}
}

func (q *GetBlockChildrenQuery) Query(ctx context.Context, msg GetBlockChildrenMessage) (api.List, error) {
	if q == nil || q.reader == nil {
		return api.List{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetBlockChildren(ctx, msg.BlockID, msg.Page)
}

type SearchQuery struct {
	reader Reader
}

func NewSearchQuery(reader Reader) *SearchQuery {
	return &SearchQuery{reader: reader}
}

func (q *SearchQuery) Query(ctx context.Context, msg SearchMessage) (api.List, error) {
	if q == nil || q.reader == nil {
		return api.List{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.Search(ctx, msg.Input)
}

type GetCommentsQuery struct {
	reader Reader
}

func NewGetCommentsQuery(reader Reader) *GetCommentsQuery {
	return &GetCommentsQuery{reader: reader}
}

func (q *GetCommentsQuery) Query(ctx context.Context, msg GetCommentsMessage) (api.List, error) {
	if q == nil || q.reader == nil {
		return api.List{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetComments(ctx, msg.BlockID, msg.Page)
}

type GetUserQuery struct {
	reader Reader
}

func NewGetUserQuery(reader Reader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (api.User, error) {
	if q == nil || q.reader == nil {
		return api.User{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetUser(ctx, msg.UserID)
}

type ListUsersQuery struct {
	reader Reader
}

func NewListUsersQuery(reader Reader) *ListUsersQuery {
	return &ListUsersQuery{reader: reader}
}

func (q *ListUsersQuery) Query(ctx context.Context, msg ListUsersMessage) (api.List, error) {
	if q == nil || q.reader == nil {
		return api.List{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.ListUsers(ctx, msg.Page)
}

type GetBotUserQuery struct {
	reader Reader
}

func NewGetBotUserQuery(reader Reader) *GetBotUserQuery {
	return &GetBotUserQuery{reader: reader}
}

func (q *GetBotUserQuery) Query(ctx context.Context, _ GetBotUserMessage) (api.BotUser, error) {
	if q == nil || q.reader == nil {
		return api.BotUser{}, queryDependencyError("query: notion reader is required")
	}
	return q.reader.GetBotUser(ctx)
}

type ListSubscribersQuery struct {
	lister core.SubscriberLister
}

func NewListSubscribersQuery(lister core.SubscriberLister) *ListSubscribersQuery {
	return &ListSubscribersQuery{lister: lister}
}

func (q *ListSubscribersQuery) Query(
	ctx context.Context,
	msg ListSubscribersMessage,
) ([]core.SubscriberRegistration, error) {
	if q == nil || q.lister == nil {
		return nil, queryDependencyError("query: subscriber lister is required")
	}
	return q.lister.ListSubscribers(ctx, msg.Category)
}

type WebhookTokenStatusQuery struct {
	tokens TokenReader
}

func NewWebhookTokenStatusQuery(tokens TokenReader) *WebhookTokenStatusQuery {
	return &WebhookTokenStatusQuery{tokens: tokens}
}

func (q *WebhookTokenStatusQuery) Query(ctx context.Context, _ WebhookTokenStatusMessage) (WebhookTokenStatus, error) {
	if q == nil || q.tokens == nil {
		return WebhookTokenStatus{}, queryDependencyError("query: token reader is required")
	}
	_, ok, err := q.tokens.Current(ctx)
	if err != nil {
		return WebhookTokenStatus{}, err
	}
	return WebhookTokenStatus{Provisioned: ok}, nil
}
