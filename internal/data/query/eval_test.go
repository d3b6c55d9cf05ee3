package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Getter returns a record's value for field. ok is false when the record
// has no such field.
type Getter func(field string) (value any, ok bool)

// MapGetter adapts a map to a Getter.
func MapGetter(m map[string]any) Getter {
	return func(field string) (any, bool) {
		v, ok := m[field]
		return v, ok
	}
}

// Eval reports whether the record behind get satisfies p.
func Eval(p Predicate, get Getter) bool {
	switch v := p.(type) {
	case nil, MatchAll:
		return true
	case Never:
		return false
	case Eq:
		got, ok := get(v.Field)
		return ok && equalValues(got, v.Value)
	case ContainsFold:
		got, ok := get(v.Field)
		if !ok || got == nil {
			return false
		}
		return strings.Contains(strings.ToLower(fmt.Sprint(got)), strings.ToLower(v.Term))
	case And:
		for _, c := range v {
			if !Eval(c, get) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range v {
			if Eval(c, get) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	switch bv := b.(type) {
	case uuid.UUID:
		return fmt.Sprint(a) == bv.String()
	case time.Time:
		if at, ok := a.(time.Time); ok {
			return at.Equal(bv)
		}
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
