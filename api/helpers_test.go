package api

import (
	"context"
	"sync"

	"github.com/goliatone/go-notion/core"
)

type recordingCaller struct {
	mu        sync.Mutex
	requests  []core.ApiCallRequest
	responses map[string]map[string]any
	err       error
}

func newRecordingCaller() *recordingCaller {
	return &recordingCaller{responses: map[string]map[string]any{}}
}

func (c *recordingCaller) respond(method core.Method, endpoint string, body map[string]any) {
	c.responses[string(method)+" "+endpoint] = body
}

func (c *recordingCaller) Execute(_ context.Context, req core.ApiCallRequest) (map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	if body, ok := c.responses[string(req.Method)+" "+req.Endpoint]; ok {
		return body, nil
	}
	return map[string]any{}, nil
}

func (c *recordingCaller) last() core.ApiCallRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return core.ApiCallRequest{}
	}
	return c.requests[len(c.requests)-1]
}

func bodyMap(req core.ApiCallRequest) map[string]any {
	body, _ := req.Body.(map[string]any)
	return body
}

const (
	pageID     = "1a2b3c4d5e6f7a8b9c0d1e2f3a4b5c6d"
	dashedPage = "1a2b3c4d-5e6f-7a8b-9c0d-1e2f3a4b5c6d"
)
