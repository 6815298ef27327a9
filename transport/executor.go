package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
	"github.com/goliatone/go-notion/ratelimit"
)

const defaultClientTimeout = 2 * time.Minute

// Executor performs one logical Notion API call with per-attempt timeout,
// bounded retries and error classification. It holds no per-call state and is
// safe for concurrent use.
type Executor struct {
	Client               core.HTTPDoer
	BaseURL              string
	APIVersion           string
	RetryAttempts        int
	Timeout              time.Duration
	MaxResponseBodyBytes int64
	Sleep                func(ctx context.Context, d time.Duration) error
	Now                  func() time.Time
	NewBackOff           func() backoff.BackOff
	Logger               core.Logger
}

func NewExecutor(client core.HTTPDoer, cfg core.Config, logger core.Logger) *Executor {
	if client == nil {
		client = &http.Client{Timeout: defaultClientTimeout}
	}
	return &Executor{
		Client:               client,
		BaseURL:              cfg.API.BaseURL,
		APIVersion:           cfg.API.Version,
		RetryAttempts:        cfg.RetryAttempts(),
		Timeout:              cfg.RequestTimeout(),
		MaxResponseBodyBytes: defaultResponseBodyLimit,
		Sleep:                SleepContext,
		Now:                  func() time.Time { return time.Now().UTC() },
		NewBackOff:           NewBackOff,
		Logger:               core.ResolveLogger("notion.transport", nil, logger),
	}
}

// NewBackOff returns the jitter-free doubling schedule starting at one second.
func NewBackOff() backoff.BackOff {
	schedule := backoff.NewExponentialBackOff()
	schedule.InitialInterval = time.Second
	schedule.RandomizationFactor = 0
	schedule.Multiplier = 2
	schedule.MaxInterval = ratelimit.MaxRetryAfter
	schedule.MaxElapsedTime = 0
	schedule.Reset()
	return schedule
}

// SleepContext blocks for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (e *Executor) Execute(ctx context.Context, req core.ApiCallRequest) (map[string]any, error) {
	if e == nil || e.Client == nil {
		return nil, transportError(
			"transport: executor requires an http client",
			goerrors.CategoryInternal,
			http.StatusInternalServerError,
			core.ServiceErrorInternal,
			nil,
		)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req.Endpoint = strings.TrimSpace(req.Endpoint)
	if err := req.Validate(); err != nil {
		return nil, transportWrapError(err, goerrors.CategoryBadInput, err.Error(), http.StatusBadRequest, requestMetadata(req, 0))
	}

	attempts := e.attempts(req)
	timeout := e.timeout(req)
	url := e.baseURL() + req.Endpoint
	schedule := e.backOff()

	var lastErr error
	var elapsed time.Duration
	for attempt := 1; attempt <= attempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		startedAt := e.now()
		res, err := e.send(attemptCtx, req, url)
		elapsed = e.now().Sub(startedAt)
		cancel()

		delay := schedule.NextBackOff()
		if err != nil {
			var rich *goerrors.Error
			if goerrors.As(err, &rich) {
				return nil, err
			}
			if ctx.Err() != nil {
				return nil, transportWrapError(ctx.Err(), goerrors.CategoryExternal, "transport: call cancelled", http.StatusBadGateway, requestMetadata(req, attempt))
			}
			if !isTimeout(err) {
				e.logFailure(ctx, req, attempt, elapsed, err)
				return nil, transportWrapError(err, goerrors.CategoryExternal, "transport: execute http request", http.StatusBadGateway, requestMetadata(req, attempt))
			}
			lastErr = timeoutError(err, req, attempt, timeout)
			if attempt < attempts {
				e.logRetry(ctx, req, attempt, elapsed, delay, "timeout")
				if err := e.sleep(ctx, delay); err != nil {
					return nil, lastErr
				}
			}
			continue
		}

		switch {
		case res.StatusCode >= 200 && res.StatusCode < 300:
			out, decodeErr := decodeSuccess(res)
			if decodeErr != nil {
				return nil, transportWrapError(decodeErr, goerrors.CategoryExternal, "transport: decode response body", http.StatusBadGateway, requestMetadata(req, attempt))
			}
			return out, nil

		case res.StatusCode == http.StatusTooManyRequests:
			upstream := decodeUpstreamError(res)
			hint, hasHint := ratelimit.RetryAfter(res.Header, e.now())
			if hasHint {
				delay = hint
			}
			lastErr = ratelimit.ThrottledError{
				Endpoint:   req.Endpoint,
				Method:     string(req.Method),
				Attempts:   attempt,
				RetryAfter: hint,
				NotionCode: upstream.Code,
				Message:    upstream.Message,
			}.ToServiceError()
			if attempt < attempts {
				e.logRetry(ctx, req, attempt, elapsed, delay, "rate_limited")
				if err := e.sleep(ctx, delay); err != nil {
					return nil, lastErr
				}
			}

		case res.StatusCode >= 500:
			lastErr = serverError(req, attempt, decodeUpstreamError(res))
			if attempt < attempts {
				e.logRetry(ctx, req, attempt, elapsed, delay, "server_error")
				if err := e.sleep(ctx, delay); err != nil {
					return nil, lastErr
				}
			}

		default:
			err := clientError(req, attempt, decodeUpstreamError(res))
			e.logFailure(ctx, req, attempt, elapsed, err)
			return nil, err
		}
	}

	e.logFailure(ctx, req, attempts, elapsed, lastErr)
	return nil, lastErr
}

func (e *Executor) attempts(req core.ApiCallRequest) int {
	if req.RetryAttempts > 0 {
		return req.RetryAttempts
	}
	if e.RetryAttempts > 0 {
		return e.RetryAttempts
	}
	return core.DefaultRetryAttempts
}

func (e *Executor) timeout(req core.ApiCallRequest) time.Duration {
	if req.Timeout > 0 {
		return req.Timeout
	}
	if e.Timeout > 0 {
		return e.Timeout
	}
	return core.DefaultRequestTimeoutMS * time.Millisecond
}

func (e *Executor) baseURL() string {
	base := strings.TrimSpace(e.BaseURL)
	if base == "" {
		base = core.DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

func (e *Executor) apiVersion() string {
	if version := strings.TrimSpace(e.APIVersion); version != "" {
		return version
	}
	return core.DefaultAPIVersion
}

func (e *Executor) backOff() backoff.BackOff {
	if e.NewBackOff != nil {
		if schedule := e.NewBackOff(); schedule != nil {
			return schedule
		}
	}
	return NewBackOff()
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	return SleepContext(ctx, d)
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Executor) logRetry(ctx context.Context, req core.ApiCallRequest, attempt int, elapsed time.Duration, delay time.Duration, reason string) {
	core.Log(ctx, e.Logger, core.LevelWarn, "notion api call retrying", map[string]any{
		"endpoint":    req.Endpoint,
		"method":      string(req.Method),
		"attempt":     attempt,
		"duration_ms": elapsed.Milliseconds(),
		"delay_ms":    delay.Milliseconds(),
		"reason":      reason,
	})
}

// logFailure reports the final outcome; elapsed is the duration of the last attempt.
func (e *Executor) logFailure(ctx context.Context, req core.ApiCallRequest, attempts int, elapsed time.Duration, err error) {
	fields := map[string]any{
		"endpoint":    req.Endpoint,
		"method":      string(req.Method),
		"attempts":    attempts,
		"duration_ms": elapsed.Milliseconds(),
	}
	if mapped := core.MapError(err); mapped != nil {
		fields["error"] = mapped.Message
		fields["text_code"] = mapped.TextCode
		fields["status_code"] = mapped.Code
	}
	core.Log(ctx, e.Logger, core.LevelError, "notion api call failed", fields)
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return true
	}
	return false
}

var _ core.APICaller = (*Executor)(nil)
