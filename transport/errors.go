package transport

import (
	"fmt"
	"net/http"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

func transportError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) error {
	return core.NewError(message, category, code, textCode, metadata)
}

func transportWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	metadata map[string]any,
) error {
	return core.WrapError(source, category, message, code, transportTextCode(category), metadata)
}

func transportTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return core.ServiceErrorBadInput
	case goerrors.CategoryRateLimit:
		return core.ServiceErrorRateLimited
	case goerrors.CategoryExternal:
		return core.ServiceErrorTransportFailure
	default:
		return core.ServiceErrorInternal
	}
}

// clientError is a non-retried 4xx. The upstream status is kept as the code.
func clientError(req core.ApiCallRequest, attempts int, upstream upstreamError) error {
	metadata := requestMetadata(req, attempts)
	metadata["status_code"] = upstream.Status
	if upstream.Code != "" {
		metadata["notion_code"] = upstream.Code
	}
	label := upstream.Code
	if label == "" {
		label = fmt.Sprintf("%d", upstream.Status)
	}
	return core.NewError(
		fmt.Sprintf("Notion API error (%s): %s", label, upstream.Message),
		core.CategoryForStatus(upstream.Status),
		upstream.Status,
		core.ServiceErrorClient,
		metadata,
	)
}

func serverError(req core.ApiCallRequest, attempts int, upstream upstreamError) error {
	metadata := requestMetadata(req, attempts)
	metadata["status_code"] = upstream.Status
	if upstream.Code != "" {
		metadata["notion_code"] = upstream.Code
	}
	return core.NewError(
		fmt.Sprintf("Notion API error (%d): %s", upstream.Status, upstream.Message),
		goerrors.CategoryExternal,
		upstream.Status,
		core.ServiceErrorServer,
		metadata,
	)
}

func timeoutError(source error, req core.ApiCallRequest, attempts int, timeout time.Duration) error {
	metadata := requestMetadata(req, attempts)
	metadata["timeout_ms"] = timeout.Milliseconds()
	return core.WrapError(
		source,
		goerrors.CategoryExternal,
		fmt.Sprintf("Notion API request timeout after %dms", timeout.Milliseconds()),
		http.StatusGatewayTimeout,
		core.ServiceErrorTimeout,
		metadata,
	)
}

func requestMetadata(req core.ApiCallRequest, attempts int) map[string]any {
	metadata := map[string]any{
		"endpoint": req.Endpoint,
		"method":   string(req.Method),
	}
	if attempts > 0 {
		metadata["attempts"] = attempts
	}
	return metadata
}
