package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-notion/api"
	"github.com/goliatone/go-notion/core"
)

var (
	_ gocmd.Querier[GetPageMessage, api.Page]                              = (*GetPageQuery)(nil)
	_ gocmd.Querier[GetDatabaseSchemaMessage, api.Database]                = (*GetDatabaseSchemaQuery)(nil)
	_ gocmd.Querier[QueryDatabaseMessage, api.List]                        = (*QueryDatabaseQuery)(nil)
	_ gocmd.Querier[ListDatabasesMessage, api.DatabaseList]                = (*ListDatabasesQuery)(nil)
	_ gocmd.Querier[GetBlockChildrenMessage, api.List]                     = (*GetBlockChildrenQuery)(nil)
	_ gocmd.Querier[SearchMessage, api.List]                               = (*SearchQuery)(nil)
	_ gocmd.Querier[GetCommentsMessage, api.List]                          = (*GetCommentsQuery)(nil)
	_ gocmd.Querier[GetUserMessage, api.User]                              = (*GetUserQuery)(nil)
	_ gocmd.Querier[ListUsersMessage, api.List]                            = (*ListUsersQuery)(nil)
	_ gocmd.Querier[GetBotUserMessage, api.BotUser]                        = (*GetBotUserQuery)(nil)
	_ gocmd.Querier[ListSubscribersMessage, []core.SubscriberRegistration] = (*ListSubscribersQuery)(nil)
	_ gocmd.Querier[WebhookTokenStatusMessage, WebhookTokenStatus]         = (*WebhookTokenStatusQuery)(nil)

	_ Reader = (*api.Client)(nil)
)
