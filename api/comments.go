package api

import (
	"context"

	"github.com/goliatone/go-notion/core"
)

type CreateCommentInput struct {
	PageID       string
	RichText     []any
	DiscussionID string
}

type Comment struct {
	ID             string         `mapstructure:"id"`
	DiscussionID   string         `mapstructure:"discussion_id"`
	CreatedTime    string         `mapstructure:"created_time"`
	LastEditedTime string         `mapstructure:"last_edited_time"`
	CreatedBy      map[string]any `mapstructure:"created_by"`
	RichText       []any          `mapstructure:"rich_text"`
	ParentID       string         `mapstructure:"-"`
}

// CreateComment adds a comment to a page, or replies in a discussion when
// DiscussionID is set.
func (c *Client) CreateComment(ctx context.Context, in CreateCommentInput) (Comment, error) {
	pageID, err := requireID("page id", in.PageID)
	if err != nil {
		return Comment{}, err
	}
	if len(in.RichText) == 0 {
		return Comment{}, core.BadInputError("api: comment rich text is required", map[string]any{"field": "rich_text"})
	}
	body := map[string]any{
		"parent":    map[string]any{"page_id": pageID},
		"rich_text": in.RichText,
	}
	if in.DiscussionID != "" {
		body["discussion_id"] = in.DiscussionID
	}
	raw, err := c.call(ctx, core.MethodPost, "/comments", body)
	if err != nil {
		return Comment{}, err
	}
	var comment Comment
	if err := decode(raw, &comment); err != nil {
		return Comment{}, err
	}
	comment.ParentID = pageID
	return comment, nil
}

func (c *Client) GetComments(ctx context.Context, blockID string, in ListInput) (List, error) {
	id, err := requireID("block id", blockID)
	if err != nil {
		return List{}, err
	}
	params := listParams(in)
	params.Set("block_id", id)
	raw, err := c.call(ctx, core.MethodGet, withQuery("/comments", params), nil)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}
