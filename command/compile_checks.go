package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-notion/api"
)

var (
	_ gocmd.Commander[CreatePageMessage]           = (*CreatePageCommand)(nil)
	_ gocmd.Commander[UpdatePageMessage]           = (*UpdatePageCommand)(nil)
	_ gocmd.Commander[ArchivePageMessage]          = (*ArchivePageCommand)(nil)
	_ gocmd.Commander[CreateDatabaseMessage]       = (*CreateDatabaseCommand)(nil)
	_ gocmd.Commander[UpdateDatabaseMessage]       = (*UpdateDatabaseCommand)(nil)
	_ gocmd.Commander[AppendBlockChildrenMessage]  = (*AppendBlockChildrenCommand)(nil)
	_ gocmd.Commander[UpdateBlockMessage]          = (*UpdateBlockCommand)(nil)
	_ gocmd.Commander[DeleteBlockMessage]          = (*DeleteBlockCommand)(nil)
	_ gocmd.Commander[CreateCommentMessage]        = (*CreateCommentCommand)(nil)
	_ gocmd.Commander[RegisterSubscriberMessage]   = (*RegisterSubscriberCommand)(nil)
	_ gocmd.Commander[UnregisterSubscriberMessage] = (*UnregisterSubscriberCommand)(nil)
	_ gocmd.Commander[ResyncTokenMessage]          = (*ResyncTokenCommand)(nil)

	_ MutatingService = (*api.Client)(nil)
)
