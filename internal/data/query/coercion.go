package query

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Coercion converts a raw filter string to the field's storage type. ok is
// false when raw is not a valid value of that type.
type Coercion func(raw string) (value any, ok bool)

// Coercions maps filter fields to their coercion. Fields without an entry
// are compared as strings.
type Coercions map[string]Coercion

func (c Coercions) clause(field, raw string) Predicate {
	fn, ok := c[field]
	if !ok || fn == nil {
		return Eq{Field: field, Value: raw}
	}
	v, ok := fn(raw)
	if !ok {
		return Never{Field: field, Raw: raw}
	}
	return Eq{Field: field, Value: v}
}

// Bool maps exactly "true" to true and every other value to false.
func Bool(raw string) (any, bool) {
	return strings.TrimSpace(raw) == "true", true
}

func Int(raw string) (any, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	return n, true
}

func Float(raw string) (any, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

func UUID(raw string) (any, bool) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, false
	}
	return id, true
}

// Time accepts RFC 3339 timestamps and plain dates.
func Time(raw string) (any, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return nil, false
}
