package api

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

func TestCreatePage_DatabaseParentUsesProperties(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodPost, "/pages", map[string]any{
		"id":               dashedPage,
		"url":              "https://www.notion.so/" + pageID,
		"created_time":     "2024-01-01T00:00:00.000Z",
		"last_edited_time": "2024-01-02T00:00:00.000Z",
		"archived":         false,
		"icon":             nil,
		"parent":           map[string]any{"type": "database_id", "database_id": pageID},
	})
	client := NewClient(caller, "secret_abc", nil)

	properties := map[string]any{"Name": map[string]any{"title": PlainRichText("Row")}}
	page, err := client.CreatePage(context.Background(), CreatePageInput{
		ParentID:   "https://www.notion.so/acme/Tasks-" + pageID,
		ParentType: ParentDatabase,
		Properties: properties,
		Icon:       ":rocket:",
		Content:    []any{CreateTextBlock("hello", "")},
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	if page.ID != dashedPage || page.CreatedTime == "" || page.Parent["database_id"] != pageID {
		t.Fatalf("unexpected page projection: %#v", page)
	}

	req := caller.last()
	if req.Method != core.MethodPost || req.Endpoint != "/pages" || req.Credential != "secret_abc" {
		t.Fatalf("unexpected request: %#v", req)
	}
	body := bodyMap(req)
	if body["parent"].(map[string]any)["database_id"] != pageID {
		t.Fatalf("expected database parent, got %#v", body["parent"])
	}
	if _, ok := body["properties"].(map[string]any)["Name"]; !ok {
		t.Fatalf("expected caller properties, got %#v", body["properties"])
	}
	if body["icon"].(map[string]any)["emoji"] != "🚀" {
		t.Fatalf("expected parsed emoji icon, got %#v", body["icon"])
	}
	if children, ok := body["children"].([]any); !ok || len(children) != 1 {
		t.Fatalf("expected content as children, got %#v", body["children"])
	}
}

func TestCreatePage_PageParentUsesTitleAndTemplate(t *testing.T) {
	caller := newRecordingCaller()
	client := NewClient(caller, "secret_abc", nil)

	_, err := client.CreatePage(context.Background(), CreatePageInput{
		ParentID:     dashedPage,
		Title:        "Notes",
		Content:      []any{CreateTextBlock("ignored", "")},
		TemplateType: TemplateDefault,
	})
	if err != nil {
		t.Fatalf("create page: %v", err)
	}
	body := bodyMap(caller.last())
	if body["parent"].(map[string]any)["page_id"] != pageID {
		t.Fatalf("expected page parent, got %#v", body["parent"])
	}
	title := body["properties"].(map[string]any)["title"].(map[string]any)["title"].([]any)
	if title[0].(map[string]any)["text"].(map[string]any)["content"] != "Notes" {
		t.Fatalf("unexpected title property: %#v", title)
	}
	if _, ok := body["children"]; ok {
		t.Fatalf("expected children omitted when a template is used")
	}
	if body["template"].(map[string]any)["type"] != TemplateDefault {
		t.Fatalf("expected default template, got %#v", body["template"])
	}
}

func TestCreatePage_RequiresParent(t *testing.T) {
	caller := newRecordingCaller()
	client := NewClient(caller, "secret_abc", nil)
	_, err := client.CreatePage(context.Background(), CreatePageInput{Title: "x"})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.Code != http.StatusBadRequest {
		t.Fatalf("expected bad input error, got %v", err)
	}
	if len(caller.requests) != 0 {
		t.Fatalf("expected no api call")
	}
}

func TestGetPage_IncludesChildren(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodGet, "/pages/"+pageID, map[string]any{"id": dashedPage})
	caller.respond(core.MethodGet, "/blocks/"+pageID+"/children", map[string]any{
		"results":  []any{map[string]any{"id": "b1"}, map[string]any{"id": "b2"}},
		"has_more": false,
	})
	client := NewClient(caller, "secret_abc", nil)

	page, err := client.GetPage(context.Background(), dashedPage, true)
	if err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(page.Children) != 2 {
		t.Fatalf("expected two children, got %#v", page.Children)
	}
	if len(caller.requests) != 2 {
		t.Fatalf("expected page and children calls, got %d", len(caller.requests))
	}

	if _, err := client.GetPage(context.Background(), dashedPage, false); err != nil {
		t.Fatalf("get page: %v", err)
	}
	if len(caller.requests) != 3 {
		t.Fatalf("expected a single call without children, got %d", len(caller.requests))
	}
}

func TestUpdatePage_ClearsIcon(t *testing.T) {
	caller := newRecordingCaller()
	client := NewClient(caller, "secret_abc", nil)
	archived := false

	if _, err := client.UpdatePage(context.Background(), UpdatePageInput{
		PageID:   pageID,
		Archived: &archived,
		IconSet:  true,
	}); err != nil {
		t.Fatalf("update page: %v", err)
	}
	req := caller.last()
	if req.Method != core.MethodPatch || req.Endpoint != "/pages/"+pageID {
		t.Fatalf("unexpected request: %#v", req)
	}
	body := bodyMap(req)
	icon, present := body["icon"]
	if !present || icon != nil {
		t.Fatalf("expected explicit null icon, got %#v", body)
	}
	if body["archived"] != false {
		t.Fatalf("expected archived false, got %#v", body["archived"])
	}
	if _, ok := body["cover"]; ok {
		t.Fatalf("expected cover omitted")
	}
}

func TestArchivePage(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodPatch, "/pages/"+pageID, map[string]any{
		"id":               dashedPage,
		"archived":         true,
		"last_edited_time": "2024-05-01T10:00:00.000Z",
	})
	client := NewClient(caller, "secret_abc", nil)

	out, err := client.ArchivePage(context.Background(), pageID)
	if err != nil {
		t.Fatalf("archive page: %v", err)
	}
	if !out.Archived || out.ArchivedTime != "2024-05-01T10:00:00.000Z" || out.ID != dashedPage {
		t.Fatalf("unexpected archive result: %#v", out)
	}
	if bodyMap(caller.last())["archived"] != true {
		t.Fatalf("expected archived=true body")
	}
}

func TestClient_PropagatesExecutorError(t *testing.T) {
	caller := newRecordingCaller()
	caller.err = core.NewError("Notion API error (object_not_found): missing", goerrors.CategoryNotFound, http.StatusNotFound, core.ServiceErrorClient, nil)
	client := NewClient(caller, "secret_abc", nil)

	_, err := client.GetPage(context.Background(), pageID, false)
	if err != caller.err {
		t.Fatalf("expected executor error unchanged, got %v", err)
	}
}

func TestClient_RequiresCredential(t *testing.T) {
	caller := newRecordingCaller()
	client := NewClient(caller, " ", nil)
	if _, err := client.GetBotUser(context.Background()); err == nil {
		t.Fatalf("expected missing credential error")
	}
	if len(caller.requests) != 0 {
		t.Fatalf("expected no api call")
	}
}
