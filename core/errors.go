package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ServiceErrorBadInput         = "NOTION_BAD_INPUT"
	ServiceErrorClient           = "NOTION_CLIENT_ERROR"
	ServiceErrorRateLimited      = "NOTION_RATE_LIMITED"
	ServiceErrorServer           = "NOTION_SERVER_ERROR"
	ServiceErrorTimeout          = "NOTION_TIMEOUT"
	ServiceErrorTransportFailure = "NOTION_TRANSPORT_FAILURE"
	ServiceErrorSignature        = "NOTION_INVALID_SIGNATURE"
	ServiceErrorNotFound         = "NOTION_NOT_FOUND"
	ServiceErrorInternal         = "NOTION_INTERNAL_ERROR"
)

// NewError builds a go-errors envelope carrying the HTTP code and text code.
func NewError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func WrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	if source == nil {
		return NewError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func BadInputError(message string, metadata map[string]any) *goerrors.Error {
	return NewError(message, goerrors.CategoryBadInput, http.StatusBadRequest, ServiceErrorBadInput, metadata)
}

func InternalError(message string, metadata map[string]any) *goerrors.Error {
	return NewError(message, goerrors.CategoryInternal, http.StatusInternalServerError, ServiceErrorInternal, metadata)
}

// FieldValidationError reports one rejected field. scope prefixes the
// message, e.g. "command" or "query".
func FieldValidationError(scope string, field string, message string) *goerrors.Error {
	return goerrors.NewValidation(scope+": validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(ServiceErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

// MapError converts any error into the service envelope, keeping rich errors intact.
func MapError(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "throttl"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryRateLimit).WithTextCode(ServiceErrorRateLimited))
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryExternal).
			WithCode(http.StatusGatewayTimeout).
			WithTextCode(ServiceErrorTimeout))
	case strings.Contains(msg, "required"), strings.Contains(msg, "invalid"):
		return ensureErrorEnvelope(goerrors.New(err.Error(), goerrors.CategoryBadInput).WithTextCode(ServiceErrorBadInput))
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureErrorEnvelope(mapped)
}

func ensureErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = categoryHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ServiceErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz, goerrors.CategoryConflict:
		return ServiceErrorClient
	case goerrors.CategoryNotFound:
		return ServiceErrorNotFound
	case goerrors.CategoryRateLimit:
		return ServiceErrorRateLimited
	case goerrors.CategoryExternal:
		return ServiceErrorServer
	default:
		return ServiceErrorInternal
	}
}

func categoryHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryRateLimit:
		return http.StatusTooManyRequests
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// CategoryForStatus classifies a non-429 upstream 4xx status.
func CategoryForStatus(status int) goerrors.Category {
	switch status {
	case http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case http.StatusForbidden:
		return goerrors.CategoryAuthz
	case http.StatusNotFound:
		return goerrors.CategoryNotFound
	case http.StatusConflict:
		return goerrors.CategoryConflict
	case http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	default:
		if status >= http.StatusInternalServerError {
			return goerrors.CategoryExternal
		}
		return goerrors.CategoryBadInput
	}
}
