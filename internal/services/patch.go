package services

import (
	"encoding/json"
	"sort"
	"strings"
)

// Patch is a partial update body keyed by JSON field name.
type Patch map[string]json.RawMessage

// ParsePatch decodes a JSON object. Anything else is a validation error.
func ParsePatch(op string, raw []byte) (Patch, error) {
	var p Patch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, invalid(op, "body must be a JSON object: "+err.Error())
	}
	if p == nil {
		p = Patch{}
	}
	return p, nil
}

// readOnlyFields are never written by a patch.
var readOnlyFields = []string{"id", "created_at", "updated_at"}

func (p Patch) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Without returns a copy of p minus keys.
func (p Patch) Without(keys ...string) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}

// ApplyTo overlays the patch onto dst, leaving absent fields untouched.
func (p Patch) ApplyTo(op string, dst any) error {
	raw, err := json.Marshal(map[string]json.RawMessage(p))
	if err != nil {
		return invalid(op, err.Error())
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return invalid(op, "invalid field value: "+err.Error())
	}
	return nil
}

// Columns lists the patch keys that are writable columns, sorted.
func (p Patch) Columns(hasColumn func(string) bool) []string {
	out := make([]string, 0, len(p))
	for k := range p {
		k = strings.TrimSpace(k)
		if k == "" || !hasColumn(k) {
			continue
		}
		skip := false
		for _, ro := range readOnlyFields {
			if k == ro {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
