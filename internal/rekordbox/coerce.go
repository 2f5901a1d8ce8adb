// file: internal/rekordbox/coerce.go
// version: 1.0.1
// guid: 8b9c0d1e-2f3a-4b5c-6d7e-8f9a0b1c2d3e

package rekordbox

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Field coercion combinators. Every per-field rule in the normalizer is one
// of these applied to a raw attribute string; a failed coercion degrades to
// the field's default instead of failing the parse.

// nonEmpty trims the value and returns nil for empty strings
func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// stringOr returns the trimmed value, or fallback when empty
func stringOr(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

// boundedInt parses an integer and requires lo <= v <= hi
func boundedInt(s string, lo, hi int) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < lo || v > hi {
		return nil
	}
	return &v
}

// positiveInt parses an integer and requires v > 0
func positiveInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// nonNegativeInt parses an integer and requires v >= 0
func nonNegativeInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// positiveFloat parses a float and requires a finite value > 0
func positiveFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil
	}
	return &v
}

// durationSeconds parses a non-negative integer, defaulting to 0
func durationSeconds(s string) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// dateFormats accepted for DateAdded, tried in order
var dateFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// dateOrNow parses a date, falling back to now on any failure
func dateOrNow(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return now
}

// SplitGenres splits a multi-valued genre field on ";", trimming each
// segment and dropping empty ones. An empty result is nil, not an empty
// slice, so an absent genre list never shows up as [].
func SplitGenres(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if g := strings.TrimSpace(part); g != "" {
			out = append(out, g)
		}
	}
	return out
}
