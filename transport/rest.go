package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

const defaultResponseBodyLimit int64 = 10 << 20 // 10 MiB

// response is the raw outcome of a single HTTP attempt.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// send performs one HTTP attempt. ctx carries the per-attempt deadline.
func (e *Executor) send(ctx context.Context, req core.ApiCallRequest, url string) (response, error) {
	var body io.Reader
	if req.Method != core.MethodGet && req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return response{}, transportWrapError(
				err,
				goerrors.CategoryBadInput,
				"transport: encode request body",
				http.StatusBadRequest,
				requestMetadata(req, 0),
			)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), url, body)
	if err != nil {
		return response{}, transportWrapError(
			err,
			goerrors.CategoryBadInput,
			"transport: create http request",
			http.StatusBadRequest,
			requestMetadata(req, 0),
		)
	}
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(req.Credential))
	httpReq.Header.Set("Notion-Version", e.apiVersion())
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpRes, err := e.Client.Do(httpReq)
	if err != nil {
		return response{}, err
	}
	defer httpRes.Body.Close()

	limit := e.MaxResponseBodyBytes
	if limit <= 0 {
		limit = defaultResponseBodyLimit
	}
	payload, err := io.ReadAll(io.LimitReader(httpRes.Body, limit+1))
	if err != nil {
		return response{}, err
	}
	if int64(len(payload)) > limit {
		return response{}, transportError(
			fmt.Sprintf("transport: response body exceeds limit of %d bytes", limit),
			goerrors.CategoryExternal,
			http.StatusBadGateway,
			core.ServiceErrorTransportFailure,
			map[string]any{
				"endpoint":         req.Endpoint,
				"method":           string(req.Method),
				"status_code":      httpRes.StatusCode,
				"response_limit_b": limit,
			},
		)
	}
	return response{
		StatusCode: httpRes.StatusCode,
		Header:     httpRes.Header,
		Body:       payload,
	}, nil
}

// upstreamError is the Notion error object: {"object":"error","status":400,"code":"...","message":"..."}.
type upstreamError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeUpstreamError(res response) upstreamError {
	parsed := upstreamError{}
	if len(bytes.TrimSpace(res.Body)) > 0 {
		_ = json.Unmarshal(res.Body, &parsed)
	}
	if parsed.Status == 0 {
		parsed.Status = res.StatusCode
	}
	if strings.TrimSpace(parsed.Message) == "" {
		parsed.Message = http.StatusText(res.StatusCode)
	}
	return parsed
}

func decodeSuccess(res response) (map[string]any, error) {
	if len(bytes.TrimSpace(res.Body)) == 0 {
		return map[string]any{}, nil
	}
	out := map[string]any{}
	if err := json.Unmarshal(res.Body, &out); err != nil {
		return nil, err
	}
	return out, nil
}
