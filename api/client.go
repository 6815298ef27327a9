package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
	"github.com/mitchellh/mapstructure"
)

const (
	MaxPageSize     = 100
	DefaultPageSize = 100
)

// Client composes the executor with the integration credential. It is safe
// for concurrent use.
type Client struct {
	Caller     core.APICaller
	Credential string
	Logger     core.Logger
	Now        func() time.Time
}

func NewClient(caller core.APICaller, credential string, logger core.Logger) *Client {
	return &Client{
		Caller:     caller,
		Credential: strings.TrimSpace(credential),
		Logger:     core.ResolveLogger("notion.api", nil, logger),
		Now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

func (c *Client) call(ctx context.Context, method core.Method, endpoint string, body any) (map[string]any, error) {
	if c == nil || c.Caller == nil {
		return nil, core.InternalError("api: client requires an api caller", nil)
	}
	if c.Credential == "" {
		return nil, core.BadInputError("api: notion credential is required", map[string]any{
			"endpoint": endpoint,
			"method":   string(method),
		})
	}
	out, err := c.Caller.Execute(ctx, core.ApiCallRequest{
		Endpoint:   endpoint,
		Method:     method,
		Body:       body,
		Credential: c.Credential,
	})
	if err != nil {
		return nil, err
	}
	core.Log(ctx, c.Logger, core.LevelDebug, "notion api call completed", map[string]any{
		"endpoint": endpoint,
		"method":   string(method),
	})
	return out, nil
}

// decode projects a raw response onto out using mapstructure tags.
func decode(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return core.WrapError(err, goerrors.CategoryExternal, "api: decode notion response", http.StatusBadGateway, core.ServiceErrorInternal, nil)
	}
	return nil
}

func requireID(field string, value string) (string, error) {
	id := ParseID(value)
	if id == "" {
		return "", core.BadInputError(fmt.Sprintf("api: %s is required", field), map[string]any{"field": field})
	}
	return id, nil
}

// clampPageSize caps size at MaxPageSize. Zero keeps fallback.
func clampPageSize(size int, fallback int) int {
	if size <= 0 {
		return fallback
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// List is the paginated envelope shared by list and search endpoints.
type List struct {
	Results    []any  `mapstructure:"results"`
	HasMore    bool   `mapstructure:"has_more"`
	NextCursor string `mapstructure:"next_cursor"`
}

func (l List) Count() int { return len(l.Results) }

func decodeList(raw map[string]any) (List, error) {
	var out List
	if err := decode(raw, &out); err != nil {
		return List{}, err
	}
	if out.Results == nil {
		out.Results = []any{}
	}
	return out, nil
}
