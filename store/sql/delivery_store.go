package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-notion/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// DeliveryStore keeps an audit trail of routed webhook events.
type DeliveryStore struct {
	db   *bun.DB
	repo repository.Repository[*deliveryRecord]
}

func NewDeliveryStore(db *bun.DB) (*DeliveryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*deliveryRecord](db, deliveryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid delivery repository wiring: %w", err)
		}
	}
	return &DeliveryStore{db: db, repo: repo}, nil
}

func (s *DeliveryStore) Record(
	ctx context.Context,
	registrationIDs []string,
	event core.WebhookEvent,
	deliveryErr error,
) (DeliveryEntry, error) {
	if s == nil || s.db == nil {
		return DeliveryEntry{}, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	record := &deliveryRecord{
		ID:              uuid.NewString(),
		EventID:         event.ID,
		EventType:       event.Type,
		RegistrationIDs: append([]string{}, registrationIDs...),
		Payload:         core.RedactSensitiveMap(event.Raw),
		Status:          DeliveryStatusDelivered,
		DeliveredAt:     time.Now().UTC(),
	}
	if record.Payload == nil {
		record.Payload = map[string]any{}
	}
	if deliveryErr != nil {
		record.Status = DeliveryStatusFailed
		record.Error = deliveryErr.Error()
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return DeliveryEntry{}, err
	}
	return record.toDomain(), nil
}

// ListRecent returns the newest deliveries first.
func (s *DeliveryStore) ListRecent(ctx context.Context, limit int) ([]DeliveryEntry, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: delivery store is not configured")
	}
	if limit <= 0 {
		limit = 50
	}
	records, _, err := s.repo.List(ctx,
		repository.OrderBy("delivered_at DESC"),
		repository.SelectPaginate(limit, 0),
	)
	if err != nil {
		return nil, err
	}
	out := make([]DeliveryEntry, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

// Wrap returns a deliverer that records every dispatch made through next.
// Recording failures do not fail the dispatch.
func (s *DeliveryStore) Wrap(next core.Deliverer, logger core.Logger) core.Deliverer {
	logger = core.ResolveLogger("notion.store.deliveries", nil, logger)
	return core.DelivererFunc(func(ctx context.Context, registrationIDs []string, event core.WebhookEvent) error {
		var deliveryErr error
		if next != nil {
			deliveryErr = next.Deliver(ctx, registrationIDs, event)
		}
		if _, err := s.Record(ctx, registrationIDs, event, deliveryErr); err != nil {
			core.Log(ctx, logger, core.LevelWarn, "notion webhook delivery audit failed", map[string]any{
				"event_id": event.ID,
				"error":    err.Error(),
			})
		}
		return deliveryErr
	})
}
