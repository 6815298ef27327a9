package api

import (
	"context"
	"strings"

	"github.com/goliatone/go-notion/core"
)

const (
	ParentDatabase = "database"
	ParentPage     = "page"

	TemplateDefault = "default"
	TemplateByID    = "template_id"
)

type CreatePageInput struct {
	ParentID   string
	ParentType string
	Title      string
	Properties map[string]any
	Content    []any
	Icon       any
	Cover      any
	// TemplateType is "default" or "template_id". Content is ignored when set.
	TemplateType string
	TemplateID   string
}

type UpdatePageInput struct {
	PageID     string
	Properties map[string]any
	Archived   *bool
	// Icon and Cover are sent when their Set flag is true; a nil value clears them.
	Icon     any
	IconSet  bool
	Cover    any
	CoverSet bool
}

type Page struct {
	ID             string         `mapstructure:"id"`
	URL            string         `mapstructure:"url"`
	CreatedTime    string         `mapstructure:"created_time"`
	LastEditedTime string         `mapstructure:"last_edited_time"`
	CreatedBy      map[string]any `mapstructure:"created_by"`
	LastEditedBy   map[string]any `mapstructure:"last_edited_by"`
	Properties     map[string]any `mapstructure:"properties"`
	Parent         map[string]any `mapstructure:"parent"`
	Icon           map[string]any `mapstructure:"icon"`
	Cover          map[string]any `mapstructure:"cover"`
	Archived       bool           `mapstructure:"archived"`
	Children       []any          `mapstructure:"-"`
}

type ArchivedPage struct {
	ID           string
	Archived     bool
	ArchivedTime string
}

func (c *Client) CreatePage(ctx context.Context, in CreatePageInput) (Page, error) {
	parentID, err := requireID("parent id", in.ParentID)
	if err != nil {
		return Page{}, err
	}

	body := map[string]any{}
	isDatabase := strings.TrimSpace(in.ParentType) == ParentDatabase
	if isDatabase {
		body["parent"] = map[string]any{"database_id": parentID}
	} else {
		body["parent"] = map[string]any{"page_id": parentID}
	}
	if isDatabase && len(in.Properties) > 0 {
		body["properties"] = in.Properties
	} else {
		body["properties"] = map[string]any{
			"title": map[string]any{"title": PlainRichText(in.Title)},
		}
	}
	if in.Icon != nil {
		body["icon"] = iconValue(in.Icon)
	}
	if in.Cover != nil {
		body["cover"] = in.Cover
	}
	switch strings.TrimSpace(in.TemplateType) {
	case "":
		if len(in.Content) > 0 {
			body["children"] = in.Content
		}
	case TemplateDefault:
		body["template"] = map[string]any{"type": TemplateDefault}
	case TemplateByID:
		templateID, err := requireID("template id", in.TemplateID)
		if err != nil {
			return Page{}, err
		}
		body["template"] = map[string]any{"type": TemplateByID, "template_id": templateID}
	default:
		return Page{}, core.BadInputError("api: unsupported template type", map[string]any{"template_type": in.TemplateType})
	}

	raw, err := c.call(ctx, core.MethodPost, "/pages", body)
	if err != nil {
		return Page{}, err
	}
	return decodePage(raw)
}

// GetPage loads a page. With includeChildren the first page of its block
// children is loaded too.
func (c *Client) GetPage(ctx context.Context, pageID string, includeChildren bool) (Page, error) {
	id, err := requireID("page id", pageID)
	if err != nil {
		return Page{}, err
	}
	raw, err := c.call(ctx, core.MethodGet, "/pages/"+id, nil)
	if err != nil {
		return Page{}, err
	}
	page, err := decodePage(raw)
	if err != nil {
		return Page{}, err
	}
	if includeChildren {
		children, err := c.call(ctx, core.MethodGet, "/blocks/"+id+"/children", nil)
		if err != nil {
			return Page{}, err
		}
		list, err := decodeList(children)
		if err != nil {
			return Page{}, err
		}
		page.Children = list.Results
	}
	return page, nil
}

func (c *Client) UpdatePage(ctx context.Context, in UpdatePageInput) (Page, error) {
	id, err := requireID("page id", in.PageID)
	if err != nil {
		return Page{}, err
	}
	body := map[string]any{}
	if in.Properties != nil {
		body["properties"] = in.Properties
	}
	if in.Archived != nil {
		body["archived"] = *in.Archived
	}
	if in.IconSet {
		if in.Icon == nil {
			body["icon"] = nil
		} else {
			body["icon"] = iconValue(in.Icon)
		}
	}
	if in.CoverSet {
		body["cover"] = in.Cover
	}
	raw, err := c.call(ctx, core.MethodPatch, "/pages/"+id, body)
	if err != nil {
		return Page{}, err
	}
	return decodePage(raw)
}

// ArchivePage moves a page to the trash. Notion has no hard delete for pages.
func (c *Client) ArchivePage(ctx context.Context, pageID string) (ArchivedPage, error) {
	id, err := requireID("page id", pageID)
	if err != nil {
		return ArchivedPage{}, err
	}
	raw, err := c.call(ctx, core.MethodPatch, "/pages/"+id, map[string]any{"archived": true})
	if err != nil {
		return ArchivedPage{}, err
	}
	page, err := decodePage(raw)
	if err != nil {
		return ArchivedPage{}, err
	}
	if page.ID == "" {
		page.ID = id
	}
	return ArchivedPage{ID: page.ID, Archived: true, ArchivedTime: page.LastEditedTime}, nil
}

func decodePage(raw map[string]any) (Page, error) {
	var page Page
	if err := decode(raw, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}
