package api

import (
	"context"

	"github.com/goliatone/go-notion/core"
)

type CreateDatabaseInput struct {
	ParentPageID string
	Title        string
	Properties   map[string]any
	Description  []any
	IsInline     bool
}

type UpdateDatabaseInput struct {
	DatabaseID  string
	Title       *string
	Properties  map[string]any
	Description []any
}

type QueryDatabaseInput struct {
	DatabaseID  string
	Filter      map[string]any
	Sorts       []any
	PageSize    int
	StartCursor string
}

type Database struct {
	ID             string         `mapstructure:"id"`
	URL            string         `mapstructure:"url"`
	CreatedTime    string         `mapstructure:"created_time"`
	LastEditedTime string         `mapstructure:"last_edited_time"`
	Title          []any          `mapstructure:"title"`
	Description    []any          `mapstructure:"description"`
	Properties     map[string]any `mapstructure:"properties"`
	Parent         map[string]any `mapstructure:"parent"`
	IsInline       bool           `mapstructure:"is_inline"`
	Archived       bool           `mapstructure:"archived"`
}

func (c *Client) CreateDatabase(ctx context.Context, in CreateDatabaseInput) (Database, error) {
	parentID, err := requireID("parent page id", in.ParentPageID)
	if err != nil {
		return Database{}, err
	}
	if len(in.Properties) == 0 {
		return Database{}, core.BadInputError("api: database properties are required", map[string]any{"field": "properties"})
	}
	body := map[string]any{
		"parent":     map[string]any{"type": "page_id", "page_id": parentID},
		"title":      PlainRichText(in.Title),
		"properties": in.Properties,
		"is_inline":  in.IsInline,
	}
	if len(in.Description) > 0 {
		body["description"] = in.Description
	}
	raw, err := c.call(ctx, core.MethodPost, "/databases", body)
	if err != nil {
		return Database{}, err
	}
	return decodeDatabase(raw)
}

func (c *Client) GetDatabaseSchema(ctx context.Context, databaseID string) (Database, error) {
	id, err := requireID("database id", databaseID)
	if err != nil {
		return Database{}, err
	}
	raw, err := c.call(ctx, core.MethodGet, "/databases/"+id, nil)
	if err != nil {
		return Database{}, err
	}
	return decodeDatabase(raw)
}

func (c *Client) UpdateDatabase(ctx context.Context, in UpdateDatabaseInput) (Database, error) {
	id, err := requireID("database id", in.DatabaseID)
	if err != nil {
		return Database{}, err
	}
	body := map[string]any{}
	if in.Title != nil {
		body["title"] = PlainRichText(*in.Title)
	}
	if in.Properties != nil {
		body["properties"] = in.Properties
	}
	if in.Description != nil {
		body["description"] = in.Description
	}
	raw, err := c.call(ctx, core.MethodPatch, "/databases/"+id, body)
	if err != nil {
		return Database{}, err
	}
	return decodeDatabase(raw)
}

// QueryDatabase runs one page of a database query. Page size defaults to and
// is capped at MaxPageSize.
func (c *Client) QueryDatabase(ctx context.Context, in QueryDatabaseInput) (List, error) {
	id, err := requireID("database id", in.DatabaseID)
	if err != nil {
		return List{}, err
	}
	body := map[string]any{
		"page_size": clampPageSize(in.PageSize, DefaultPageSize),
	}
	if len(in.Filter) > 0 {
		body["filter"] = in.Filter
	}
	if len(in.Sorts) > 0 {
		body["sorts"] = in.Sorts
	}
	if in.StartCursor != "" {
		body["start_cursor"] = in.StartCursor
	}
	raw, err := c.call(ctx, core.MethodPost, "/databases/"+id+"/query", body)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}

func decodeDatabase(raw map[string]any) (Database, error) {
	var database Database
	if err := decode(raw, &database); err != nil {
		return Database{}, err
	}
	return database, nil
}
