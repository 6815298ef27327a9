package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/goliatone/go-notion/core"
)

type AppendBlockChildrenInput struct {
	ParentID string
	Children []any
	After    string
}

type UpdateBlockInput struct {
	BlockID string
	// Content is the type keyed payload, e.g. {"paragraph": {...}}.
	Content  map[string]any
	Archived *bool
}

type ListInput struct {
	PageSize    int
	StartCursor string
}

type Block struct {
	ID             string         `mapstructure:"id"`
	Type           string         `mapstructure:"type"`
	CreatedTime    string         `mapstructure:"created_time"`
	LastEditedTime string         `mapstructure:"last_edited_time"`
	HasChildren    bool           `mapstructure:"has_children"`
	Archived       bool           `mapstructure:"archived"`
	Content        map[string]any `mapstructure:"-"`
}

type DeletedBlock struct {
	ID          string
	Deleted     bool
	DeletedTime time.Time
}

func (c *Client) AppendBlockChildren(ctx context.Context, in AppendBlockChildrenInput) (List, error) {
	id, err := requireID("parent id", in.ParentID)
	if err != nil {
		return List{}, err
	}
	if len(in.Children) == 0 {
		return List{}, core.BadInputError("api: block children are required", map[string]any{"field": "children"})
	}
	body := map[string]any{"children": in.Children}
	if in.After != "" {
		body["after"] = ParseID(in.After)
	}
	raw, err := c.call(ctx, core.MethodPatch, "/blocks/"+id+"/children", body)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}

func (c *Client) GetBlockChildren(ctx context.Context, blockID string, in ListInput) (List, error) {
	id, err := requireID("block id", blockID)
	if err != nil {
		return List{}, err
	}
	raw, err := c.call(ctx, core.MethodGet, withQuery("/blocks/"+id+"/children", listParams(in)), nil)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}

func (c *Client) UpdateBlock(ctx context.Context, in UpdateBlockInput) (Block, error) {
	id, err := requireID("block id", in.BlockID)
	if err != nil {
		return Block{}, err
	}
	body := make(map[string]any, len(in.Content)+1)
	for key, value := range in.Content {
		body[key] = value
	}
	if in.Archived != nil {
		body["archived"] = *in.Archived
	}
	raw, err := c.call(ctx, core.MethodPatch, "/blocks/"+id, body)
	if err != nil {
		return Block{}, err
	}
	var block Block
	if err := decode(raw, &block); err != nil {
		return Block{}, err
	}
	if content, ok := raw[block.Type].(map[string]any); ok {
		block.Content = content
	}
	return block, nil
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) (DeletedBlock, error) {
	id, err := requireID("block id", blockID)
	if err != nil {
		return DeletedBlock{}, err
	}
	if _, err := c.call(ctx, core.MethodDelete, "/blocks/"+id, nil); err != nil {
		return DeletedBlock{}, err
	}
	return DeletedBlock{ID: id, Deleted: true, DeletedTime: c.now()}, nil
}

func listParams(in ListInput) url.Values {
	params := url.Values{}
	if in.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(clampPageSize(in.PageSize, DefaultPageSize)))
	}
	if in.StartCursor != "" {
		params.Set("start_cursor", in.StartCursor)
	}
	return params
}

func withQuery(endpoint string, params url.Values) string {
	if len(params) == 0 {
		return endpoint
	}
	return endpoint + "?" + params.Encode()
}
