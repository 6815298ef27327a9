package api

import (
	"context"
	"testing"

	"github.com/goliatone/go-notion/core"
)

func TestQueryDatabase_CapsPageSize(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodPost, "/databases/"+pageID+"/query", map[string]any{
		"results":     []any{map[string]any{"id": "p1"}},
		"has_more":    true,
		"next_cursor": "cursor_2",
	})
	client := NewClient(caller, "secret_abc", nil)

	list, err := client.QueryDatabase(context.Background(), QueryDatabaseInput{
		DatabaseID:  dashedPage,
		PageSize:    500,
		Filter:      map[string]any{"property": "Done", "checkbox": map[string]any{"equals": true}},
		StartCursor: "cursor_1",
	})
	if err != nil {
		t.Fatalf("query database: %v", err)
	}
	if list.Count() != 1 || !list.HasMore || list.NextCursor != "cursor_2" {
		t.Fatalf("unexpected list: %#v", list)
	}
	body := bodyMap(caller.last())
	if body["page_size"] != MaxPageSize {
		t.Fatalf("expected capped page size, got %#v", body["page_size"])
	}
	if body["start_cursor"] != "cursor_1" {
		t.Fatalf("expected start cursor, got %#v", body["start_cursor"])
	}
	if _, ok := body["sorts"]; ok {
		t.Fatalf("expected sorts omitted")
	}
}

func TestQueryDatabase_DefaultPageSizeAndNullCursor(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodPost, "/databases/"+pageID+"/query", map[string]any{
		"results":     []any{},
		"has_more":    false,
		"next_cursor": nil,
	})
	client := NewClient(caller, "secret_abc", nil)

	list, err := client.QueryDatabase(context.Background(), QueryDatabaseInput{DatabaseID: pageID})
	if err != nil {
		t.Fatalf("query database: %v", err)
	}
	if list.NextCursor != "" || list.Count() != 0 {
		t.Fatalf("unexpected list: %#v", list)
	}
	if bodyMap(caller.last())["page_size"] != DefaultPageSize {
		t.Fatalf("expected default page size")
	}
}

func TestCreateDatabase(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodPost, "/databases", map[string]any{
		"id":        "db_1",
		"is_inline": true,
		"title":     PlainRichText("Tasks"),
	})
	client := NewClient(caller, "secret_abc", nil)

	db, err := client.CreateDatabase(context.Background(), CreateDatabaseInput{
		ParentPageID: dashedPage,
		Title:        "Tasks",
		Properties:   map[string]any{"Name": map[string]any{"title": map[string]any{}}},
		IsInline:     true,
	})
	if err != nil {
		t.Fatalf("create database: %v", err)
	}
	if db.ID != "db_1" || !db.IsInline || len(db.Title) != 1 {
		t.Fatalf("unexpected database: %#v", db)
	}
	body := bodyMap(caller.last())
	parent := body["parent"].(map[string]any)
	if parent["type"] != "page_id" || parent["page_id"] != pageID {
		t.Fatalf("unexpected parent: %#v", parent)
	}
	if body["is_inline"] != true {
		t.Fatalf("expected is_inline true")
	}

	if _, err := client.CreateDatabase(context.Background(), CreateDatabaseInput{ParentPageID: pageID}); err == nil {
		t.Fatalf("expected error without properties")
	}
}

func TestUpdateDatabase_OnlySendsProvidedFields(t *testing.T) {
	caller := newRecordingCaller()
	client := NewClient(caller, "secret_abc", nil)
	title := "Renamed"

	if _, err := client.UpdateDatabase(context.Background(), UpdateDatabaseInput{DatabaseID: pageID, Title: &title}); err != nil {
		t.Fatalf("update database: %v", err)
	}
	req := caller.last()
	if req.Method != core.MethodPatch || req.Endpoint != "/databases/"+pageID {
		t.Fatalf("unexpected request: %#v", req)
	}
	body := bodyMap(req)
	if len(body) != 1 {
		t.Fatalf("expected only title, got %#v", body)
	}
}

func TestGetDatabaseSchema(t *testing.T) {
	caller := newRecordingCaller()
	caller.respond(core.MethodGet, "/databases/"+pageID, map[string]any{
		"id":         pageID,
		"properties": map[string]any{"Name": map[string]any{"type": "title"}},
	})
	client := NewClient(caller, "secret_abc", nil)

	db, err := client.GetDatabaseSchema(context.Background(), pageID)
	if err != nil {
		t.Fatalf("get schema: %v", err)
	}
	parsed, err := ParseProperties(map[string]any{"Name": "Row"}, db.Properties)
	if err != nil {
		t.Fatalf("parse with fetched schema: %v", err)
	}
	if parsed.Count() != 1 {
		t.Fatalf("expected schema driven property, got %#v", parsed.Properties)
	}
}
