package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryKVStore struct {
	mu     sync.RWMutex
	values map[string]string
	writes int
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{values: map[string]string{}}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("core: memory kv store is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[strings.TrimSpace(key)]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryKVStore) Set(_ context.Context, key string, value string) error {
	if s == nil {
		return fmt.Errorf("core: memory kv store is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("core: kv key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.writes++
	return nil
}

// Writes reports how many Set calls succeeded.
func (s *MemoryKVStore) Writes() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

type MemorySubscriberRegistry struct {
	mu            sync.RWMutex
	registrations map[string]SubscriberRegistration
}

func NewMemorySubscriberRegistry(registrations ...SubscriberRegistration) *MemorySubscriberRegistry {
	registry := &MemorySubscriberRegistry{registrations: map[string]SubscriberRegistration{}}
	for _, registration := range registrations {
		registry.registrations[registration.ID] = cloneRegistration(registration)
	}
	return registry
}

func (r *MemorySubscriberRegistry) Register(_ context.Context, registration SubscriberRegistration) error {
	if r == nil {
		return fmt.Errorf("core: memory subscriber registry is nil")
	}
	if err := registration.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registrations[registration.ID] = cloneRegistration(registration)
	return nil
}

func (r *MemorySubscriberRegistry) Unregister(_ context.Context, id string) error {
	if r == nil {
		return fmt.Errorf("core: memory subscriber registry is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.registrations, strings.TrimSpace(id))
	return nil
}

func (r *MemorySubscriberRegistry) ListSubscribers(_ context.Context, category Category) ([]SubscriberRegistration, error) {
	if r == nil {
		return nil, fmt.Errorf("core: memory subscriber registry is nil")
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SubscriberRegistration, 0, len(r.registrations))
	for _, registration := range r.registrations {
		if registration.Category != category {
			continue
		}
		out = append(out, cloneRegistration(registration))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cloneRegistration(registration SubscriberRegistration) SubscriberRegistration {
	registration.EventTypes = append([]string(nil), registration.EventTypes...)
	return registration
}

type MemoryTokenSignal struct {
	mu        sync.RWMutex
	value     string
	publishes int
}

func NewMemoryTokenSignal() *MemoryTokenSignal {
	return &MemoryTokenSignal{}
}

func (s *MemoryTokenSignal) Current(context.Context) (string, error) {
	if s == nil {
		return "", fmt.Errorf("core: memory token signal is nil")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

func (s *MemoryTokenSignal) Publish(_ context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("core: memory token signal is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = token
	s.publishes++
	return nil
}

func (s *MemoryTokenSignal) Publishes() int {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.publishes
}

// Delivery is one recorded batched dispatch.
type Delivery struct {
	RegistrationIDs []string
	Event           WebhookEvent
}

type RecordingDeliverer struct {
	mu         sync.Mutex
	deliveries []Delivery
	Err        error
}

func NewRecordingDeliverer() *RecordingDeliverer {
	return &RecordingDeliverer{}
}

func (d *RecordingDeliverer) Deliver(_ context.Context, registrationIDs []string, event WebhookEvent) error {
	if d == nil {
		return fmt.Errorf("core: recording deliverer is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return d.Err
	}
	d.deliveries = append(d.deliveries, Delivery{
		RegistrationIDs: append([]string(nil), registrationIDs...),
		Event:           event,
	})
	return nil
}

func (d *RecordingDeliverer) Deliveries() []Delivery {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Delivery(nil), d.deliveries...)
}

// NewLoggingDeliverer logs each dispatch. It is the default when the host
// does not inject its own event emission.
func NewLoggingDeliverer(logger Logger) Deliverer {
	return DelivererFunc(func(ctx context.Context, registrationIDs []string, event WebhookEvent) error {
		Log(ctx, logger, LevelInfo, "notion webhook delivered", map[string]any{
			"event_id":         event.ID,
			"event_type":       event.Type,
			"registration_ids": append([]string(nil), registrationIDs...),
		})
		return nil
	})
}
