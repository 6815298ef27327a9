package ratelimit

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryAfter reads the Retry-After hint from response headers. The value may be
// delay-seconds or an HTTP date; dates in the past yield no hint.
func RetryAfter(headers http.Header, now time.Time) (time.Duration, bool) {
	if headers == nil {
		return 0, false
	}
	return ParseRetryAfter(headers.Get("Retry-After"), now)
}

// MaxRetryAfter caps any server hint, matching the ceiling of the retry
// backoff schedule.
const MaxRetryAfter = 5 * time.Minute

// ParseRetryAfter accepts delay-seconds (fractions allowed) or an HTTP date.
// Hints above MaxRetryAfter are clamped to it.
func ParseRetryAfter(raw string, now time.Time) (time.Duration, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err == nil || errors.Is(err, strconv.ErrRange) {
		if math.IsNaN(seconds) || seconds <= 0 {
			return 0, false
		}
		if seconds >= MaxRetryAfter.Seconds() {
			return MaxRetryAfter, true
		}
		return time.Duration(seconds * float64(time.Second)), true
	}
	if retryAt, err := httpDate(raw); err == nil {
		if retryAt.After(now) {
			return min(retryAt.Sub(now), MaxRetryAfter), true
		}
	}
	return 0, false
}

func httpDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("ratelimit: empty date")
	}
	if parsed, err := http.ParseTime(value); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.Parse(time.RFC1123Z, value); err == nil {
		return parsed.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("ratelimit: invalid http date")
}
