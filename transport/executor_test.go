package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-notion/core"
)

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *sleepRecorder) snapshot() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

type failingDoer struct {
	calls int32
	err   error
}

func (d *failingDoer) Do(*http.Request) (*http.Response, error) {
	atomic.AddInt32(&d.calls, 1)
	return nil, d.err
}

func newTestExecutor(t *testing.T, server *httptest.Server, sleeper *sleepRecorder) *Executor {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL
	executor := NewExecutor(server.Client(), cfg, nil)
	executor.Sleep = sleeper.Sleep
	return executor
}

func requireRichError(t *testing.T, err error) *goerrors.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	return rich
}

func TestExecutor_SuccessReturnsExactBody(t *testing.T) {
	payload := `{"object":"page","id":"p1","properties":{"Name":{"title":[{"plain_text":"Hello"}]}},"archived":false,"count":3}`
	var captured *http.Request
	var capturedBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r.Clone(context.Background())
		capturedBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	out, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:   "/pages/p1",
		Method:     core.MethodGet,
		Body:       map[string]any{"ignored": true},
		Credential: "secret_abc",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	want := map[string]any{}
	if err := json.Unmarshal([]byte(payload), &want); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("expected exact body %#v, got %#v", want, out)
	}
	if captured.URL.Path != "/pages/p1" {
		t.Fatalf("unexpected path %q", captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer secret_abc" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if got := captured.Header.Get("Notion-Version"); got != core.DefaultAPIVersion {
		t.Fatalf("unexpected notion version %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if len(capturedBody) != 0 {
		t.Fatalf("expected GET without body, got %q", capturedBody)
	}
	if len(sleeper.snapshot()) != 0 {
		t.Fatalf("expected no sleeps on success")
	}
}

func TestExecutor_PostEncodesJSONBody(t *testing.T) {
	var received map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	executor := newTestExecutor(t, server, &sleepRecorder{})
	out, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:   "/search",
		Method:     core.MethodPost,
		Body:       map[string]any{"query": "roadmap"},
		Credential: "secret_abc",
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty map for empty body, got %#v", out)
	}
	if received["query"] != "roadmap" {
		t.Fatalf("expected encoded body, got %#v", received)
	}
}

func TestExecutor_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"object":"error","status":400,"code":"validation_error","message":"body failed validation"}`))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:   "/pages",
		Method:     core.MethodPost,
		Body:       map[string]any{},
		Credential: "secret_abc",
	})
	rich := requireRichError(t, err)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one attempt, got %d", got)
	}
	if len(sleeper.snapshot()) != 0 {
		t.Fatalf("expected no sleeps for client error")
	}
	if rich.Code != http.StatusBadRequest || rich.TextCode != core.ServiceErrorClient {
		t.Fatalf("unexpected envelope %d %q", rich.Code, rich.TextCode)
	}
	if rich.Metadata["notion_code"] != "validation_error" {
		t.Fatalf("expected upstream code in metadata, got %#v", rich.Metadata["notion_code"])
	}
	if !strings.Contains(rich.Message, "body failed validation") {
		t.Fatalf("expected upstream message, got %q", rich.Message)
	}
}

func TestExecutor_NotFoundMapsCategory(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`))
	}))
	defer server.Close()

	executor := newTestExecutor(t, server, &sleepRecorder{})
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/pages/x", Method: core.MethodGet, Credential: "secret_abc"})
	rich := requireRichError(t, err)
	if rich.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found category, got %q", rich.Category)
	}
}

func TestExecutor_ServerErrorRetriesWithDoublingDelay(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"object":"error","status":503,"code":"service_unavailable","message":"Notion is unavailable"}`))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:      "/databases/db/query",
		Method:        core.MethodPost,
		Credential:    "secret_abc",
		RetryAttempts: 4,
	})
	rich := requireRichError(t, err)
	if got := atomic.LoadInt32(&calls); got != 4 {
		t.Fatalf("expected 4 attempts, got %d", got)
	}
	delays := sleeper.snapshot()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	if !reflect.DeepEqual(delays, want) {
		t.Fatalf("expected doubling delays %v, got %v", want, delays)
	}
	if rich.Code != http.StatusServiceUnavailable || rich.TextCode != core.ServiceErrorServer {
		t.Fatalf("unexpected envelope %d %q", rich.Code, rich.TextCode)
	}
	if rich.Metadata["attempts"] != 4 {
		t.Fatalf("expected attempts metadata, got %#v", rich.Metadata["attempts"])
	}
}

func TestExecutor_ServerErrorRecovers(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"object":"list","results":[]}`))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	out, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/users", Method: core.MethodGet, Credential: "secret_abc"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out["object"] != "list" {
		t.Fatalf("unexpected body %#v", out)
	}
	if delays := sleeper.snapshot(); len(delays) != 1 || delays[0] != time.Second {
		t.Fatalf("expected one 1s delay, got %v", delays)
	}
}

func TestExecutor_RateLimitHonorsRetryAfter(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "5")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"object":"user","id":"bot"}`))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	out, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/users/me", Method: core.MethodGet, Credential: "secret_abc"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out["id"] != "bot" {
		t.Fatalf("unexpected body %#v", out)
	}
	delays := sleeper.snapshot()
	if len(delays) != 1 || delays[0] < 5*time.Second {
		t.Fatalf("expected a wait of at least 5s, got %v", delays)
	}
}

func TestExecutor_RateLimitExhaustedFallsBackToBackoff(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/search", Method: core.MethodPost, Credential: "secret_abc"})
	rich := requireRichError(t, err)
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected default budget of 3 attempts, got %d", got)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if delays := sleeper.snapshot(); !reflect.DeepEqual(delays, want) {
		t.Fatalf("expected backoff delays %v, got %v", want, delays)
	}
	if rich.Code != http.StatusTooManyRequests || rich.TextCode != core.ServiceErrorRateLimited {
		t.Fatalf("unexpected envelope %d %q", rich.Code, rich.TextCode)
	}
	if rich.Category != goerrors.CategoryRateLimit {
		t.Fatalf("expected rate limit category, got %q", rich.Category)
	}
}

func TestExecutor_TimeoutRetriesThenFails(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	sleeper := &sleepRecorder{}
	executor := newTestExecutor(t, server, sleeper)
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:      "/blocks/b1/children",
		Method:        core.MethodGet,
		Credential:    "secret_abc",
		RetryAttempts: 2,
		Timeout:       25 * time.Millisecond,
	})
	rich := requireRichError(t, err)
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
	if delays := sleeper.snapshot(); len(delays) != 1 || delays[0] != time.Second {
		t.Fatalf("expected one 1s delay, got %v", delays)
	}
	if rich.TextCode != core.ServiceErrorTimeout || rich.Code != http.StatusGatewayTimeout {
		t.Fatalf("unexpected envelope %d %q", rich.Code, rich.TextCode)
	}
	if !strings.Contains(rich.Message, "25ms") {
		t.Fatalf("expected configured duration in message, got %q", rich.Message)
	}
}

func TestExecutor_TransportFailureIsNotRetried(t *testing.T) {
	doer := &failingDoer{err: errors.New("dial tcp: connection refused")}
	executor := NewExecutor(doer, core.DefaultConfig(), nil)
	sleeper := &sleepRecorder{}
	executor.Sleep = sleeper.Sleep

	_, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/users", Method: core.MethodGet, Credential: "secret_abc"})
	rich := requireRichError(t, err)
	if got := atomic.LoadInt32(&doer.calls); got != 1 {
		t.Fatalf("expected one attempt, got %d", got)
	}
	if rich.TextCode != core.ServiceErrorTransportFailure || rich.Code != http.StatusBadGateway {
		t.Fatalf("unexpected envelope %d %q", rich.Code, rich.TextCode)
	}
}

func TestExecutor_RejectsInvalidRequest(t *testing.T) {
	doer := &failingDoer{err: errors.New("unreachable")}
	executor := NewExecutor(doer, core.DefaultConfig(), nil)
	_, err := executor.Execute(context.Background(), core.ApiCallRequest{Endpoint: "/users", Method: core.MethodGet})
	rich := requireRichError(t, err)
	if rich.TextCode != core.ServiceErrorBadInput {
		t.Fatalf("expected bad input, got %q", rich.TextCode)
	}
	if atomic.LoadInt32(&doer.calls) != 0 {
		t.Fatalf("expected no http call for invalid request")
	}
}

func TestNewBackOff_IsJitterFreeDoubling(t *testing.T) {
	schedule := NewBackOff()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for i, expected := range want {
		if got := schedule.NextBackOff(); got != expected {
			t.Fatalf("step %d: expected %s, got %s", i, expected, got)
		}
	}
}

func TestExecutor_LogsAttemptDuration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"object":"error","status":502,"code":"bad_gateway","message":"upstream"}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	cfg := core.DefaultConfig()
	cfg.API.BaseURL = server.URL
	executor := NewExecutor(server.Client(), cfg, glog.NewLogger(
		glog.WithWriter(&out),
		glog.WithLoggerTypeJSON(),
		glog.WithLevel("debug"),
	))
	executor.Sleep = (&sleepRecorder{}).Sleep
	clock := time.Unix(1_700_000_000, 0).UTC()
	executor.Now = func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}

	_, err := executor.Execute(context.Background(), core.ApiCallRequest{
		Endpoint:      "/users",
		Method:        core.MethodGet,
		Credential:    "secret_abc",
		RetryAttempts: 2,
	})
	if err == nil {
		t.Fatalf("expected server error")
	}

	durations := map[string]any{}
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("decode log line %q: %v", line, err)
		}
		msg, _ := entry["msg"].(string)
		durations[msg] = entry["duration_ms"]
	}
	for _, msg := range []string{"notion api call retrying", "notion api call failed"} {
		if durations[msg] != float64(250) {
			t.Fatalf("expected duration_ms=250 on %q, got %#v (log %q)", msg, durations[msg], out.String())
		}
	}
}
