package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-notion/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SubscriberStore keeps webhook subscriber registrations. Registering an
// existing id replaces its filters.
type SubscriberStore struct {
	db   *bun.DB
	repo repository.Repository[*subscriberRecord]
}

func NewSubscriberStore(db *bun.DB) (*SubscriberStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	// No default list pagination: routing must see every registration of a category.
	repo := repository.NewRepositoryWithConfig[*subscriberRecord](db, subscriberHandlers(), nil)
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscriber repository wiring: %w", err)
		}
	}
	return &SubscriberStore{db: db, repo: repo}, nil
}

func (s *SubscriberStore) Register(ctx context.Context, registration core.SubscriberRegistration) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscriber store is not configured")
	}
	registration.ID = strings.TrimSpace(registration.ID)
	registration.EntityID = strings.TrimSpace(registration.EntityID)
	if err := registration.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		existing, err := s.findByRegistrationTx(ctx, tx, registration.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			record := newSubscriberRecord(registration, now)
			record.ID = uuid.NewString()
			_, err := tx.NewInsert().Model(record).Exec(ctx)
			return err
		}

		existing.Category = string(registration.Category)
		existing.EventTypes = append([]string{}, registration.EventTypes...)
		existing.EntityID = registration.EntityID
		existing.UpdatedAt = now
		_, err = tx.NewUpdate().
			Model(existing).
			Where("id = ?", existing.ID).
			Exec(ctx)
		return err
	})
}

func (s *SubscriberStore) Unregister(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscriber store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("sqlstore: registration id is required")
	}
	_, err := s.db.NewDelete().
		Model((*subscriberRecord)(nil)).
		Where("registration_id = ?", id).
		Exec(ctx)
	return err
}

func (s *SubscriberStore) findByRegistrationTx(
	ctx context.Context,
	tx bun.Tx,
	registrationID string,
) (*subscriberRecord, error) {
	record := &subscriberRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.registration_id = ?", registrationID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if strings.TrimSpace(record.ID) == "" {
		return nil, nil
	}
	return record, nil
}

// Get loads one registration by its id.
func (s *SubscriberStore) Get(ctx context.Context, id string) (core.SubscriberRegistration, error) {
	if s == nil || s.repo == nil {
		return core.SubscriberRegistration{}, fmt.Errorf("sqlstore: subscriber store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("registration_id", "=", strings.TrimSpace(id)),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.SubscriberRegistration{}, err
	}
	if len(records) == 0 {
		return core.SubscriberRegistration{}, fmt.Errorf("sqlstore: subscriber registration %q not found", id)
	}
	return records[0].toDomain(), nil
}

func (s *SubscriberStore) ListSubscribers(ctx context.Context, category core.Category) ([]core.SubscriberRegistration, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscriber store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("category", "=", string(category)),
		repository.OrderBy("registration_id ASC"),
	)
	if err != nil {
		return nil, err
	}
	out := make([]core.SubscriberRegistration, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
