package inbound

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

func inboundWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	return core.WrapError(source, category, message, code, textCode, metadata)
}

func bodyTooLarge(source error, limit int64) *goerrors.Error {
	return inboundWrapError(
		source,
		goerrors.CategoryBadInput,
		"inbound: request body too large",
		http.StatusRequestEntityTooLarge,
		core.ServiceErrorBadInput,
		map[string]any{"max_body_bytes": limit},
	)
}

func bodyUnreadable(source error) *goerrors.Error {
	return inboundWrapError(
		source,
		goerrors.CategoryBadInput,
		"inbound: read request body",
		http.StatusBadRequest,
		core.ServiceErrorBadInput,
		nil,
	)
}
