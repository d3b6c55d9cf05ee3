package query

import (
	"fmt"
	"sort"
	"strings"
)

// Predicate is a storage-neutral boolean condition over a record's fields.
type Predicate interface {
	isPredicate()
}

// MatchAll matches every record.
type MatchAll struct{}

// Never matches no record. It stands in for a filter whose value could not
// be coerced to the field's type.
type Never struct {
	Field string
	Raw   string
}

// Eq matches records whose Field equals Value.
type Eq struct {
	Field string
	Value any
}

// ContainsFold matches records whose Field contains Term, case-insensitively.
// Term is literal text.
type ContainsFold struct {
	Field string
	Term  string
}

type And []Predicate
type Or []Predicate

func (MatchAll) isPredicate()     {}
func (Never) isPredicate()        {}
func (Eq) isPredicate()           {}
func (ContainsFold) isPredicate() {}
func (And) isPredicate()          {}
func (Or) isPredicate()           {}

// FilterSet is a search term plus field equality filters. Fields must
// already be restricted to the resource's filterable columns.
type FilterSet struct {
	SearchTerm string
	Fields     map[string]string
}

// Build combines an optional search clause and an optional filter clause.
//
// The search clause ORs a ContainsFold over every searchable field and is
// omitted when the term is blank or nothing is searchable. The filter
// clause ANDs one Eq per field, with values converted by coercions. When
// both are present they are ANDed; when neither is, the result is MatchAll.
func Build(fs FilterSet, searchable []string, coercions Coercions) Predicate {
	var parts And

	if term := strings.TrimSpace(fs.SearchTerm); term != "" && len(searchable) > 0 {
		search := make(Or, 0, len(searchable))
		for _, field := range searchable {
			search = append(search, ContainsFold{Field: field, Term: term})
		}
		parts = append(parts, search)
	}

	if len(fs.Fields) > 0 {
		keys := make([]string, 0, len(fs.Fields))
		for k := range fs.Fields {
			if k == ParamSearch {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		filters := make(And, 0, len(keys))
		for _, k := range keys {
			filters = append(filters, coercions.clause(k, fs.Fields[k]))
		}
		if len(filters) > 0 {
			parts = append(parts, filters)
		}
	}

	switch len(parts) {
	case 0:
		return MatchAll{}
	case 1:
		return parts[0]
	default:
		return parts
	}
}

// String renders p for logs and test failure messages.
func String(p Predicate) string {
	switch v := p.(type) {
	case nil, MatchAll:
		return "TRUE"
	case Never:
		return "FALSE"
	case Eq:
		return fmt.Sprintf("%s = %v", v.Field, v.Value)
	case ContainsFold:
		return fmt.Sprintf("%s ~* %q", v.Field, v.Term)
	case And:
		return join(v, " AND ")
	case Or:
		return join(v, " OR ")
	default:
		return fmt.Sprintf("%T", p)
	}
}

func join(ps []Predicate, sep string) string {
	parts := make([]string, 0, len(ps))
	for _, p := range ps {
		parts = append(parts, String(p))
	}
	return "(" + strings.Join(parts, sep) + ")"
}
