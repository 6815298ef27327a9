package inbound

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-notion/core"
)

type HandlerConfig struct {
	Path         string
	MaxBodyBytes int64
	Logger       core.Logger
}

// NewHandler mounts handler at POST cfg.Path and a GET /healthz liveness check.
func NewHandler(handler core.InboundHandler, cfg HandlerConfig) http.Handler {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		path = core.DefaultWebhookPath
	}
	limit := cfg.MaxBodyBytes
	if limit <= 0 {
		limit = core.DefaultMaxBodyBytes
	}
	logger := core.ResolveLogger("notion.inbound", nil, cfg.Logger)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	router.Post(path, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
		if err != nil {
			rich := bodyUnreadable(err)
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				rich = bodyTooLarge(err, limit)
			}
			core.Log(r.Context(), logger, core.LevelWarn, "notion webhook body rejected", map[string]any{
				"request_id": middleware.GetReqID(r.Context()),
				"error":      rich.Message,
			})
			writeError(w, rich)
			return
		}

		result := handler.Handle(r.Context(), core.InboundRequest{
			Headers: FlattenHeaders(r.Header),
			Body:    body,
			Metadata: map[string]any{
				"request_id":  middleware.GetReqID(r.Context()),
				"remote_addr": r.RemoteAddr,
				"path":        r.URL.Path,
			},
		})
		status := result.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		core.Log(r.Context(), logger, core.LevelDebug, "notion webhook answered", map[string]any{
			"request_id":  middleware.GetReqID(r.Context()),
			"status_code": status,
		})
		if result.Body == nil {
			w.WriteHeader(status)
			return
		}
		writeJSON(w, status, result.Body)
	})
	return router
}

// FlattenHeaders joins repeated values with "," keyed by canonical name.
func FlattenHeaders(headers http.Header) map[string]string {
	if len(headers) == 0 {
		return map[string]string{}
	}
	flat := make(map[string]string, len(headers))
	for key, values := range headers {
		if len(values) == 0 {
			flat[key] = ""
			continue
		}
		flat[key] = strings.Join(values, ",")
	}
	return flat
}

func writeError(w http.ResponseWriter, err *goerrors.Error) {
	status := err.Code
	if status == 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"error":     err.Message,
		"text_code": err.TextCode,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
