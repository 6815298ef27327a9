package core

import (
	"fmt"
	"strings"
	"time"
)

type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPatch  Method = "PATCH"
	MethodDelete Method = "DELETE"
)

func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

// ApiCallRequest describes one logical Notion API call. Zero RetryAttempts and
// Timeout fall back to DefaultRetryAttempts and DefaultRequestTimeoutMS.
type ApiCallRequest struct {
	Endpoint      string
	Method        Method
	Body          any
	Credential    string
	RetryAttempts int
	Timeout       time.Duration
}

func (r ApiCallRequest) Validate() error {
	if strings.TrimSpace(r.Endpoint) == "" {
		return fmt.Errorf("core: api call endpoint is required")
	}
	if !strings.HasPrefix(strings.TrimSpace(r.Endpoint), "/") {
		return fmt.Errorf("core: api call endpoint %q must start with /", r.Endpoint)
	}
	if !r.Method.Valid() {
		return fmt.Errorf("core: api call method %q is invalid", r.Method)
	}
	if strings.TrimSpace(r.Credential) == "" {
		return fmt.Errorf("core: api call credential is required")
	}
	if r.RetryAttempts < 0 {
		return fmt.Errorf("core: api call retry attempts must not be negative")
	}
	return nil
}

type Category string

const (
	CategoryPage       Category = "page"
	CategoryDatabase   Category = "database"
	CategoryDataSource Category = "data_source"
	CategoryComment    Category = "comment"
)

func Categories() []Category {
	return []Category{CategoryPage, CategoryDatabase, CategoryDataSource, CategoryComment}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPage, CategoryDatabase, CategoryDataSource, CategoryComment:
		return true
	default:
		return false
	}
}

// CategoryForEventType maps the namespace before the first "." of an event
// type to its registration category.
func CategoryForEventType(eventType string) (Category, bool) {
	eventType = strings.TrimSpace(eventType)
	namespace, _, found := strings.Cut(eventType, ".")
	if !found || namespace == "" {
		return "", false
	}
	category := Category(namespace)
	if !category.Valid() {
		return "", false
	}
	return category, true
}

type SubscriberRegistration struct {
	ID         string
	Category   Category
	EventTypes []string
	EntityID   string
}

func (r SubscriberRegistration) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("core: subscriber registration id is required")
	}
	if !r.Category.Valid() {
		return fmt.Errorf("core: subscriber registration category %q is invalid", r.Category)
	}
	for _, eventType := range r.EventTypes {
		category, ok := CategoryForEventType(eventType)
		if !ok || category != r.Category {
			return fmt.Errorf("core: event type %q does not belong to category %q", eventType, r.Category)
		}
	}
	return nil
}

type EventAuthor struct {
	ID   string
	Type string
}

type EntityRef struct {
	ID   string
	Type string
}

// WebhookEvent is one decoded Notion webhook delivery. Raw keeps the decoded
// envelope so subscribers receive it unmodified.
type WebhookEvent struct {
	ID          string
	Type        string
	Timestamp   time.Time
	WorkspaceID string
	Authors     []EventAuthor
	Entity      EntityRef
	Data        map[string]any
	Raw         map[string]any
}

// DecodeWebhookEvent projects a decoded JSON envelope into a WebhookEvent.
// Unknown or malformed fields are left empty; Raw always holds the input.
func DecodeWebhookEvent(raw map[string]any) WebhookEvent {
	event := WebhookEvent{
		ID:          stringField(raw, "id"),
		Type:        stringField(raw, "type"),
		WorkspaceID: stringField(raw, "workspace_id"),
		Raw:         raw,
	}
	if ts := stringField(raw, "timestamp"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			event.Timestamp = parsed.UTC()
		}
	}
	if entity, ok := raw["entity"].(map[string]any); ok {
		event.Entity = EntityRef{ID: stringField(entity, "id"), Type: stringField(entity, "type")}
	}
	if data, ok := raw["data"].(map[string]any); ok {
		event.Data = data
	}
	if authors, ok := raw["authors"].([]any); ok {
		for _, item := range authors {
			author, ok := item.(map[string]any)
			if !ok {
				continue
			}
			event.Authors = append(event.Authors, EventAuthor{
				ID:   stringField(author, "id"),
				Type: stringField(author, "type"),
			})
		}
	}
	return event
}

// InboundRequest is a transport-neutral view of an inbound HTTP delivery.
type InboundRequest struct {
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
}

type InboundResult struct {
	StatusCode int
	Body       map[string]any
	Metadata   map[string]any
}

func (r InboundRequest) Header(key string) string {
	return HeaderValue(r.Headers, key)
}

// HeaderValue looks up a header case-insensitively.
func HeaderValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func stringField(source map[string]any, key string) string {
	if source == nil {
		return ""
	}
	value, ok := source[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
