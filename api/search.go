package api

import (
	"context"

	"github.com/goliatone/go-notion/core"
)

type SearchInput struct {
	Query       string
	Filter      map[string]any
	Sort        map[string]any
	PageSize    int
	StartCursor string
}

type DatabaseList struct {
	Databases  []Database
	HasMore    bool
	NextCursor string
}

func (c *Client) Search(ctx context.Context, in SearchInput) (List, error) {
	body := map[string]any{
		"page_size": clampPageSize(in.PageSize, DefaultPageSize),
	}
	if in.Query != "" {
		body["query"] = in.Query
	}
	if len(in.Filter) > 0 {
		body["filter"] = in.Filter
	}
	if len(in.Sort) > 0 {
		body["sort"] = in.Sort
	}
	if in.StartCursor != "" {
		body["start_cursor"] = in.StartCursor
	}
	raw, err := c.call(ctx, core.MethodPost, "/search", body)
	if err != nil {
		return List{}, err
	}
	return decodeList(raw)
}

// ListDatabases searches for every database shared with the integration.
func (c *Client) ListDatabases(ctx context.Context, in ListInput) (DatabaseList, error) {
	list, err := c.Search(ctx, SearchInput{
		Filter:      map[string]any{"property": "object", "value": "database"},
		PageSize:    in.PageSize,
		StartCursor: in.StartCursor,
	})
	if err != nil {
		return DatabaseList{}, err
	}
	out := DatabaseList{
		Databases:  make([]Database, 0, len(list.Results)),
		HasMore:    list.HasMore,
		NextCursor: list.NextCursor,
	}
	for _, result := range list.Results {
		raw, ok := result.(map[string]any)
		if !ok {
			continue
		}
		database, err := decodeDatabase(raw)
		if err != nil {
			return DatabaseList{}, err
		}
		out.Databases = append(out.Databases, database)
	}
	return out, nil
}
