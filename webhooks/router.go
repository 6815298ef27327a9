package webhooks

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-notion/core"
)

const (
	DropReasonMissingType      = "missing_type"
	DropReasonUnknownNamespace = "unknown_namespace"
	DropReasonNoMatch          = "no_match"
)

// RouteResult describes what happened to one event.
type RouteResult struct {
	Category  core.Category
	Delivered []string
	Dropped   bool
	Reason    string
}

// Router fans a webhook event out to the registrations of its namespace.
type Router struct {
	Subscribers core.SubscriberLister
	Deliverer   core.Deliverer
	Logger      core.Logger
}

func NewRouter(subscribers core.SubscriberLister, deliverer core.Deliverer, logger core.Logger) *Router {
	return &Router{
		Subscribers: subscribers,
		Deliverer:   deliverer,
		Logger:      core.ResolveLogger("notion.webhooks.router", nil, logger),
	}
}

// Route delivers event once to every matching registration in a single
// dispatch. Unknown namespaces and events without a type are dropped without
// error. Lister and deliverer failures are returned.
func (r *Router) Route(ctx context.Context, event core.WebhookEvent) (RouteResult, error) {
	if r == nil || r.Subscribers == nil || r.Deliverer == nil {
		return RouteResult{}, fmt.Errorf("webhooks: router requires subscribers and deliverer")
	}

	eventType := strings.TrimSpace(event.Type)
	if eventType == "" {
		core.Log(ctx, r.Logger, core.LevelWarn, "notion webhook event without type dropped", map[string]any{
			"event_id": event.ID,
		})
		return RouteResult{Dropped: true, Reason: DropReasonMissingType}, nil
	}

	category, ok := core.CategoryForEventType(eventType)
	if !ok {
		core.Log(ctx, r.Logger, core.LevelWarn, "notion webhook event with unknown namespace dropped", map[string]any{
			"event_id":   event.ID,
			"event_type": eventType,
		})
		return RouteResult{Dropped: true, Reason: DropReasonUnknownNamespace}, nil
	}

	registrations, err := r.Subscribers.ListSubscribers(ctx, category)
	if err != nil {
		return RouteResult{Category: category}, fmt.Errorf("webhooks: list %s subscribers: %w", category, err)
	}

	entityID := EventEntityID(category, event)
	matched := make([]string, 0, len(registrations))
	seen := map[string]struct{}{}
	for _, registration := range registrations {
		if !Matches(registration, eventType, entityID) {
			continue
		}
		if _, dup := seen[registration.ID]; dup {
			continue
		}
		seen[registration.ID] = struct{}{}
		matched = append(matched, registration.ID)
	}

	if len(matched) == 0 {
		core.Log(ctx, r.Logger, core.LevelDebug, "notion webhook event matched no registrations", map[string]any{
			"event_id":   event.ID,
			"event_type": eventType,
			"entity_id":  entityID,
		})
		return RouteResult{Category: category, Dropped: true, Reason: DropReasonNoMatch}, nil
	}

	if err := r.Deliverer.Deliver(ctx, matched, event); err != nil {
		return RouteResult{Category: category}, fmt.Errorf("webhooks: deliver %s: %w", eventType, err)
	}
	core.Log(ctx, r.Logger, core.LevelInfo, "notion webhook event routed", map[string]any{
		"event_id":      event.ID,
		"event_type":    eventType,
		"entity_id":     entityID,
		"registrations": len(matched),
	})
	return RouteResult{Category: category, Delivered: matched}, nil
}

// Matches evaluates the allow-list and entity filters of one registration.
// An entity filter only matches events that carry the same id.
func Matches(registration core.SubscriberRegistration, eventType string, entityID string) bool {
	if len(registration.EventTypes) > 0 && !containsExact(registration.EventTypes, eventType) {
		return false
	}
	if filter := strings.TrimSpace(registration.EntityID); filter != "" {
		if entityID == "" || NormalizeID(filter) != NormalizeID(entityID) {
			return false
		}
	}
	return true
}

// EventEntityID picks the id an entity filter is compared with: data.id, then
// entity.id. Comment events use data.parent.page_id first.
func EventEntityID(category core.Category, event core.WebhookEvent) string {
	if category == core.CategoryComment {
		if parent, ok := event.Data["parent"].(map[string]any); ok {
			if pageID := stringValue(parent["page_id"]); pageID != "" {
				return pageID
			}
		}
		return strings.TrimSpace(event.Entity.ID)
	}
	if id := stringValue(event.Data["id"]); id != "" {
		return id
	}
	return strings.TrimSpace(event.Entity.ID)
}

// NormalizeID lowercases an id and strips the dashes Notion uses in its UUID
// rendering so dashed and compact forms compare equal.
func NormalizeID(id string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(id), "-", ""))
}

func containsExact(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func stringValue(value any) string {
	str, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(str)
}
