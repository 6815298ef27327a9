package sqlstore

import (
	"time"

	"github.com/goliatone/go-notion/core"
	"github.com/uptrace/bun"
)

type kvEntryRecord struct {
	bun.BaseModel `bun:"table:notion_kv_entries,alias:nkv"`

	EntryKey  string    `bun:"entry_key,pk"`
	Value     string    `bun:"value,notnull"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type subscriberRecord struct {
	bun.BaseModel `bun:"table:notion_subscriber_registrations,alias:nsr"`

	ID             string    `bun:"id,pk"`
	RegistrationID string    `bun:"registration_id,notnull"`
	Category       string    `bun:"category,notnull"`
	EventTypes     []string  `bun:"event_types,type:jsonb,notnull"`
	EntityID       string    `bun:"entity_id,notnull"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func newSubscriberRecord(registration core.SubscriberRegistration, now time.Time) *subscriberRecord {
	eventTypes := append([]string{}, registration.EventTypes...)
	return &subscriberRecord{
		RegistrationID: registration.ID,
		Category:       string(registration.Category),
		EventTypes:     eventTypes,
		EntityID:       registration.EntityID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r *subscriberRecord) toDomain() core.SubscriberRegistration {
	if r == nil {
		return core.SubscriberRegistration{}
	}
	var eventTypes []string
	if len(r.EventTypes) > 0 {
		eventTypes = append([]string{}, r.EventTypes...)
	}
	return core.SubscriberRegistration{
		ID:         r.RegistrationID,
		Category:   core.Category(r.Category),
		EventTypes: eventTypes,
		EntityID:   r.EntityID,
	}
}

type deliveryRecord struct {
	bun.BaseModel `bun:"table:notion_webhook_deliveries,alias:nwd"`

	ID              string         `bun:"id,pk"`
	EventID         string         `bun:"event_id,notnull"`
	EventType       string         `bun:"event_type,notnull"`
	RegistrationIDs []string       `bun:"registration_ids,type:jsonb,notnull"`
	Payload         map[string]any `bun:"payload,type:jsonb,notnull"`
	Status          string         `bun:"status,notnull"`
	Error           string         `bun:"error,notnull"`
	DeliveredAt     time.Time      `bun:"delivered_at,nullzero,notnull,default:current_timestamp"`
}

// DeliveryEntry is one recorded webhook dispatch.
type DeliveryEntry struct {
	ID              string
	EventID         string
	EventType       string
	RegistrationIDs []string
	Payload         map[string]any
	Status          string
	Error           string
	DeliveredAt     time.Time
}

func (r *deliveryRecord) toDomain() DeliveryEntry {
	return DeliveryEntry{
		ID:              r.ID,
		EventID:         r.EventID,
		EventType:       r.EventType,
		RegistrationIDs: append([]string{}, r.RegistrationIDs...),
		Payload:         r.Payload,
		Status:          r.Status,
		Error:           r.Error,
		DeliveredAt:     r.DeliveredAt.UTC(),
	}
}
