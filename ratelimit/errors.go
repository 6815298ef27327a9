package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

// ThrottledError is returned when every attempt of a call was answered with 429.
type ThrottledError struct {
	Endpoint   string
	Method     string
	Attempts   int
	RetryAfter time.Duration
	NotionCode string
	Message    string
}

func (e ThrottledError) Error() string {
	message := strings.TrimSpace(e.Message)
	if message == "" {
		message = "rate limited"
	}
	return fmt.Sprintf(
		"ratelimit: %s %s throttled after %d attempts: %s",
		strings.TrimSpace(e.Method),
		strings.TrimSpace(e.Endpoint),
		e.Attempts,
		message,
	)
}

func (e ThrottledError) ToServiceError() *goerrors.Error {
	metadata := map[string]any{
		"endpoint": strings.TrimSpace(e.Endpoint),
		"method":   strings.TrimSpace(e.Method),
		"attempts": e.Attempts,
	}
	if code := strings.TrimSpace(e.NotionCode); code != "" {
		metadata["notion_code"] = code
	}
	if e.RetryAfter > 0 {
		metadata["retry_after_ms"] = e.RetryAfter.Milliseconds()
	}
	return goerrors.New(e.Error(), goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode(core.ServiceErrorRateLimited).
		WithMetadata(metadata)
}
