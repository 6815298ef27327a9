package core

import "strings"

const RedactedValue = "[REDACTED]"

// sensitiveKeys are redacted on exact (case-insensitive) match.
var sensitiveKeys = map[string]struct{}{
	"authorization":        {},
	"verification_token":   {},
	"x-notion-signature":   {},
	"notion_webhook_token": {},
}

// sensitiveKeyMarkers are redacted when they appear anywhere in a key.
var sensitiveKeyMarkers = []string{"secret", "token", "api_key", "apikey", "credential", "signature"}

// sensitiveValuePrefixes catch Notion integration secrets and bearer headers
// stored under innocuous keys.
var sensitiveValuePrefixes = []string{"secret_", "ntn_", "bearer "}

// identifierKeys are never redacted; the audit trail depends on them.
var identifierKeys = map[string]struct{}{
	"event_id":        {},
	"event_type":      {},
	"entity_id":       {},
	"workspace_id":    {},
	"subscription_id": {},
	"registration_id": {},
	"request_id":      {},
	"endpoint":        {},
}

// RedactSensitiveMap returns a deep copy of fields with credentials replaced
// by RedactedValue. The input is never modified.
func RedactSensitiveMap(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		if sensitiveKey(key) {
			out[key] = RedactedValue
			continue
		}
		out[key] = redactValue(value)
	}
	return out
}

func redactValue(value any) any {
	switch typed := value.(type) {
	case string:
		if sensitiveString(typed) {
			return RedactedValue
		}
		return typed
	case map[string]any:
		return RedactSensitiveMap(typed)
	case map[string]string:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = item
		}
		return RedactSensitiveMap(out)
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = RedactSensitiveMap(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = redactValue(item)
		}
		return out
	default:
		return value
	}
}

func sensitiveKey(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	if _, ok := identifierKeys[key]; ok {
		return false
	}
	if _, ok := sensitiveKeys[key]; ok {
		return true
	}
	for _, marker := range sensitiveKeyMarkers {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}

func sensitiveString(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, prefix := range sensitiveValuePrefixes {
		if strings.HasPrefix(value, prefix) {
			return true
		}
	}
	return false
}
