package api

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goliatone/go-notion/core"
)

const dateOnlyLayout = "2006-01-02"

// ParsedProperties is the result of coercing simple values against a schema.
type ParsedProperties struct {
	Properties map[string]any
	Skipped    []string
}

func (p ParsedProperties) Count() int { return len(p.Properties) }

// ParseProperties converts simple key/value pairs into Notion property values
// using the property types declared in schema. Keys missing from the schema
// and read-only types are skipped.
func ParseProperties(properties map[string]any, schema map[string]any) (ParsedProperties, error) {
	out := ParsedProperties{Properties: map[string]any{}}
	keys := make([]string, 0, len(properties))
	for key := range properties {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		propertyType := schemaType(schema[key])
		if propertyType == "" || propertyType == "formula" || propertyType == "rollup" {
			out.Skipped = append(out.Skipped, key)
			continue
		}
		value, err := coerceProperty(propertyType, properties[key])
		if err != nil {
			return ParsedProperties{}, core.BadInputError(
				fmt.Sprintf("api: property %q: %v", key, err),
				map[string]any{"property": key, "type": propertyType},
			)
		}
		out.Properties[key] = value
	}
	return out, nil
}

func schemaType(entry any) string {
	switch typed := entry.(type) {
	case map[string]any:
		return stringOf(typed["type"])
	case string:
		return strings.TrimSpace(typed)
	default:
		return ""
	}
}

func coerceProperty(propertyType string, value any) (map[string]any, error) {
	switch propertyType {
	case "title":
		return map[string]any{"title": PlainRichText(textOf(value))}, nil
	case "rich_text":
		return map[string]any{"rich_text": PlainRichText(textOf(value))}, nil
	case "number":
		number, err := numberOf(value)
		if err != nil {
			return nil, err
		}
		return map[string]any{"number": number}, nil
	case "checkbox":
		return map[string]any{"checkbox": truthy(value)}, nil
	case "select", "status":
		return map[string]any{propertyType: map[string]any{"name": textOf(value)}}, nil
	case "multi_select":
		items := listOf(value)
		options := make([]any, 0, len(items))
		for _, item := range items {
			options = append(options, map[string]any{"name": textOf(item)})
		}
		return map[string]any{"multi_select": options}, nil
	case "date":
		return map[string]any{"date": map[string]any{"start": dateOf(value)}}, nil
	case "url", "email", "phone_number":
		return map[string]any{propertyType: textOf(value)}, nil
	case "people":
		items := listOf(value)
		people := make([]any, 0, len(items))
		for _, item := range items {
			people = append(people, map[string]any{"object": "user", "id": textOf(item)})
		}
		return map[string]any{"people": people}, nil
	case "relation":
		items := listOf(value)
		relations := make([]any, 0, len(items))
		for _, item := range items {
			relations = append(relations, map[string]any{"id": ParseID(textOf(item))})
		}
		return map[string]any{"relation": relations}, nil
	default:
		return map[string]any{propertyType: value}, nil
	}
}

func textOf(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

func stringOf(value any) string {
	str, _ := value.(string)
	return strings.TrimSpace(str)
}

func listOf(value any) []any {
	switch typed := value.(type) {
	case nil:
		return nil
	case []any:
		return typed
	case []string:
		out := make([]any, 0, len(typed))
		for _, item := range typed {
			out = append(out, item)
		}
		return out
	default:
		return []any{value}
	}
}

func numberOf(value any) (float64, error) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case string:
		number, err := strconv.ParseFloat(strings.TrimSpace(typed), 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", typed)
		}
		return number, nil
	default:
		return 0, fmt.Errorf("unsupported number value %T", value)
	}
}

func truthy(value any) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case bool:
		return typed
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		if err != nil {
			return strings.TrimSpace(typed) != ""
		}
		return parsed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	default:
		return true
	}
}

// dateOf renders a date property start. Date-only input stays date-only,
// anything with a time component is rendered as RFC 3339. Unparseable strings
// are sent as given.
func dateOf(value any) string {
	switch typed := value.(type) {
	case time.Time:
		return typed.Format(time.RFC3339)
	case *time.Time:
		if typed == nil {
			return ""
		}
		return typed.Format(time.RFC3339)
	}
	raw := strings.TrimSpace(textOf(value))
	if raw == "" {
		return raw
	}
	parsed, err := dateparse.ParseAny(raw)
	if err != nil {
		return raw
	}
	if len(raw) <= len(dateOnlyLayout) && parsed.Hour() == 0 && parsed.Minute() == 0 && parsed.Second() == 0 {
		return parsed.Format(dateOnlyLayout)
	}
	return parsed.Format(time.RFC3339)
}
