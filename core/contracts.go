package core

import (
	"context"
	"errors"
	"net/http"

	glog "github.com/goliatone/go-logger/glog"
)

var ErrKeyNotFound = errors.New("core: key not found")

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// KVStore is the host's durable key-value storage. Get returns ErrKeyNotFound
// when the key was never written.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// SubscriberLister enumerates the registrations of one category. The core
// never mutates what it returns.
type SubscriberLister interface {
	ListSubscribers(ctx context.Context, category Category) ([]SubscriberRegistration, error)
}

// SubscriberRegistry is the writable side used by hosts and stores.
type SubscriberRegistry interface {
	SubscriberLister
	Register(ctx context.Context, registration SubscriberRegistration) error
	Unregister(ctx context.Context, id string) error
}

// Deliverer hands one event to a batch of registrations in a single dispatch.
type Deliverer interface {
	Deliver(ctx context.Context, registrationIDs []string, event WebhookEvent) error
}

type DelivererFunc func(ctx context.Context, registrationIDs []string, event WebhookEvent) error

func (f DelivererFunc) Deliver(ctx context.Context, registrationIDs []string, event WebhookEvent) error {
	return f(ctx, registrationIDs, event)
}

// TokenSignal mirrors the verification token to an operator-visible surface.
type TokenSignal interface {
	Current(ctx context.Context) (string, error)
	Publish(ctx context.Context, token string) error
}

type APICaller interface {
	Execute(ctx context.Context, req ApiCallRequest) (map[string]any, error)
}

type InboundHandler interface {
	Handle(ctx context.Context, req InboundRequest) InboundResult
}
