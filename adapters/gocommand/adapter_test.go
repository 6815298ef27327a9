package gocommand

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-command"
	notion "github.com/goliatone/go-notion"
	notioncommand "github.com/goliatone/go-notion/command"
	"github.com/goliatone/go-notion/core"
	notionquery "github.com/goliatone/go-notion/query"
)

type okMessage struct{}

func (okMessage) Type() string { return "notion.command.adapter_ok" }

type invalidMessage struct{}

func (invalidMessage) Type() string { return "" }

type failingMessage struct{}

func (failingMessage) Type() string { return "notion.command.adapter_fail" }

func (failingMessage) Validate() error { return errors.New("invalid payload") }

type dispatchMessage struct {
	ID string
}

func (dispatchMessage) Type() string { return "notion.command.adapter_test" }

func TestValidateMessageContract(t *testing.T) {
	if err := ValidateMessageContract(okMessage{}); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := ValidateMessageContract(invalidMessage{}); err == nil {
		t.Fatalf("expected empty type to fail contract validation")
	}
	if err := ValidateMessageContract(failingMessage{}); err == nil {
		t.Fatalf("expected Validate() failure to bubble")
	}
}

func TestRegistryAndDispatchWiring(t *testing.T) {
	adapter := NewRegistryAdapter(command.NewRegistry())
	executed := 0
	customResolverCalled := 0

	cmd := command.CommandFunc[dispatchMessage](func(context.Context, dispatchMessage) error {
		executed++
		return nil
	})

	if _, err := RegisterAndSubscribe(adapter, cmd); err != nil {
		t.Fatalf("register and subscribe: %v", err)
	}
	if err := adapter.AddResolver("custom", func(any, command.CommandMeta, *command.Registry) error {
		customResolverCalled++
		return nil
	}); err != nil {
		t.Fatalf("add resolver: %v", err)
	}
	if !adapter.HasResolver("custom") {
		t.Fatalf("expected custom resolver to be registered")
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}
	if customResolverCalled == 0 {
		t.Fatalf("expected resolver hook to run during initialization")
	}

	if err := Dispatch(context.Background(), dispatchMessage{ID: "m1"}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if executed != 1 {
		t.Fatalf("expected command execution count=1, got %d", executed)
	}
}

func TestRegisterFacade_DispatchesCommandsAndQueries(t *testing.T) {
	ctx := context.Background()
	svc, err := notion.NewService(ctx, notion.Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	facade, err := notion.NewServiceFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	adapter := NewRegistryAdapter(command.NewRegistry())
	subs, err := RegisterFacade(adapter, facade)
	if err != nil {
		t.Fatalf("register facade: %v", err)
	}
	defer subs.Unsubscribe()
	if len(subs) != 24 {
		t.Fatalf("expected 24 subscriptions, got %d", len(subs))
	}
	if err := adapter.Initialize(); err != nil {
		t.Fatalf("initialize registry: %v", err)
	}

	if err := Dispatch(ctx, notioncommand.RegisterSubscriberMessage{
		Registration: core.SubscriberRegistration{ID: "sub_dispatch", Category: core.CategoryDatabase},
	}); err != nil {
		t.Fatalf("dispatch register subscriber: %v", err)
	}
	registrations, err := Query[notionquery.ListSubscribersMessage, []core.SubscriberRegistration](ctx, notionquery.ListSubscribersMessage{
		Category: core.CategoryDatabase,
	})
	if err != nil {
		t.Fatalf("query subscribers: %v", err)
	}
	if len(registrations) != 1 || registrations[0].ID != "sub_dispatch" {
		t.Fatalf("unexpected registrations: %#v", registrations)
	}

	status, err := Query[notionquery.WebhookTokenStatusMessage, notionquery.WebhookTokenStatus](ctx, notionquery.WebhookTokenStatusMessage{})
	if err != nil {
		t.Fatalf("query token status: %v", err)
	}
	if status.Provisioned {
		t.Fatalf("expected unprovisioned token")
	}
}

func TestRegisterFacade_RequiresFacade(t *testing.T) {
	if _, err := RegisterFacade(NewRegistryAdapter(nil), nil); err == nil {
		t.Fatalf("expected nil facade error")
	}
}

func TestDispatch_RejectsContractViolationsBeforeDispatch(t *testing.T) {
	if err := Dispatch(context.Background(), invalidMessage{}); err == nil {
		t.Fatalf("expected empty message type to be rejected")
	}
	if _, err := Query[failingMessage, string](context.Background(), failingMessage{}); err == nil {
		t.Fatalf("expected failing Validate() to be rejected")
	}
}
