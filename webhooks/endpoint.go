package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/goliatone/go-notion/core"
)

const (
	ErrorInvalidJSON       = "Invalid JSON payload"
	ErrorInvalidSignature  = "Invalid webhook signature"
	ErrorMissingType       = "Invalid payload: missing type"
	ErrorInvalidToken      = "Invalid payload: empty verification_token"
	ErrorInternal          = "Internal error processing webhook"
	verificationTokenField = "verification_token"
)

// Endpoint answers inbound Notion deliveries: handshake, verification and routing.
type Endpoint struct {
	Tokens   *TokenLifecycle
	Verifier *SignatureVerifier
	Router   *Router
	Logger   core.Logger
}

func NewEndpoint(tokens *TokenLifecycle, verifier *SignatureVerifier, router *Router, logger core.Logger) *Endpoint {
	if verifier == nil {
		verifier = NewSignatureVerifier()
	}
	return &Endpoint{
		Tokens:   tokens,
		Verifier: verifier,
		Router:   router,
		Logger:   core.ResolveLogger("notion.webhooks.endpoint", nil, logger),
	}
}

func (e *Endpoint) Handle(ctx context.Context, req core.InboundRequest) core.InboundResult {
	if e == nil || e.Tokens == nil || e.Router == nil {
		return errorResult(http.StatusInternalServerError, ErrorInternal, nil)
	}

	payload := map[string]any{}
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		core.Log(ctx, e.Logger, core.LevelWarn, "notion webhook payload is not valid json", map[string]any{
			"error": err.Error(),
		})
		return errorResult(http.StatusBadRequest, ErrorInvalidJSON, nil)
	}

	if raw, isHandshake := payload[verificationTokenField]; isHandshake {
		return e.handshake(ctx, raw)
	}

	token, provisioned, err := e.Tokens.Current(ctx)
	if err != nil {
		core.Log(ctx, e.Logger, core.LevelError, "notion webhook token lookup failed", map[string]any{
			"error": err.Error(),
		})
		return errorResult(http.StatusInternalServerError, ErrorInternal, nil)
	}
	if provisioned {
		if !e.Verifier.VerifyRequest(req, token) {
			core.Log(ctx, e.Logger, core.LevelWarn, "notion webhook signature rejected", map[string]any{
				"event_id": stringValue(payload["id"]),
			})
			return errorResult(http.StatusForbidden, ErrorInvalidSignature, nil)
		}
	} else {
		core.Log(ctx, e.Logger, core.LevelWarn, "notion webhook accepted without verification: no token provisioned", map[string]any{
			"event_id": stringValue(payload["id"]),
		})
	}

	event := core.DecodeWebhookEvent(payload)
	if strings.TrimSpace(event.Type) == "" {
		core.Log(ctx, e.Logger, core.LevelWarn, "notion webhook payload without type", map[string]any{
			"event_id": event.ID,
		})
		return errorResult(http.StatusBadRequest, ErrorMissingType, nil)
	}

	result, err := e.Router.Route(ctx, event)
	if err != nil {
		core.Log(ctx, e.Logger, core.LevelError, "notion webhook routing failed", map[string]any{
			"event_id":   event.ID,
			"event_type": event.Type,
			"error":      err.Error(),
		})
		return errorResult(http.StatusInternalServerError, ErrorInternal, map[string]any{
			"event_id":   event.ID,
			"event_type": event.Type,
		})
	}

	return core.InboundResult{
		StatusCode: http.StatusOK,
		Metadata: map[string]any{
			"event_id":      event.ID,
			"event_type":    event.Type,
			"verified":      provisioned,
			"delivered":     len(result.Delivered),
			"dropped":       result.Dropped,
			"drop_reason":   result.Reason,
			"registrations": append([]string(nil), result.Delivered...),
		},
	}
}

func (e *Endpoint) handshake(ctx context.Context, raw any) core.InboundResult {
	token, ok := raw.(string)
	if !ok || strings.TrimSpace(token) == "" {
		return errorResult(http.StatusBadRequest, ErrorInvalidToken, nil)
	}
	if err := e.Tokens.Provision(ctx, token); err != nil {
		core.Log(ctx, e.Logger, core.LevelError, "notion webhook handshake failed", map[string]any{
			"error": err.Error(),
		})
		return errorResult(http.StatusInternalServerError, ErrorInternal, nil)
	}
	return core.InboundResult{
		StatusCode: http.StatusOK,
		Body:       map[string]any{verificationTokenField: token},
		Metadata:   map[string]any{"handshake": true},
	}
}

func errorResult(status int, message string, metadata map[string]any) core.InboundResult {
	return core.InboundResult{
		StatusCode: status,
		Body:       map[string]any{"error": message},
		Metadata:   metadata,
	}
}

var _ core.InboundHandler = (*Endpoint)(nil)
