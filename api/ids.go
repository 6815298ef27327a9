package api

import "strings"

const idLength = 32

// ParseID accepts a raw id, a dashed UUID or a Notion URL and returns the
// compact 32 character id. Unrecognised input is returned without dashes.
func ParseID(idOrURL string) string {
	value := strings.TrimSpace(idOrURL)
	if strings.HasPrefix(value, "http") {
		segment := value[strings.LastIndex(value, "/")+1:]
		if i := strings.Index(segment, "?"); i >= 0 {
			segment = segment[:i]
		}
		candidate := segment[strings.LastIndex(segment, "-")+1:]
		if compact := stripDashes(candidate); len(compact) == idLength {
			return compact
		}
		if compact := stripDashes(segment); len(compact) == idLength {
			return compact
		}
	}
	return stripDashes(value)
}

func stripDashes(value string) string {
	return strings.ReplaceAll(value, "-", "")
}
