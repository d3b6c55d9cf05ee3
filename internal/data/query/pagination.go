package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	ParamPage      = "page"
	ParamLimit     = "limit"
	ParamSortBy    = "sortBy"
	ParamSortOrder = "sortOrder"
	ParamSearch    = "searchTerm"

	DefaultLimit = 10
)

type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection accepts asc, desc, ascending, descending, 1 and -1
// (case-insensitive). Anything else is ascending.
func ParseSortDirection(raw string) SortDirection {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc", "descending", "-1":
		return SortDesc
	default:
		return SortAsc
	}
}

type SortKey struct {
	Field     string
	Direction SortDirection
}

func Asc(field string) SortKey  { return SortKey{Field: field, Direction: SortAsc} }
func Desc(field string) SortKey { return SortKey{Field: field, Direction: SortDesc} }

// PageOptions is the raw paging request. Zero values mean "not supplied".
type PageOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// Page is a resolved paging request.
type Page struct {
	Page  int
	Limit int
	Skip  int
	Sort  []SortKey
}

// Meta is the paging envelope returned with every listing.
type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func (p Page) Meta(total int64) Meta {
	return Meta{Page: p.Page, Limit: p.Limit, Total: total}
}

// Resolver applies paging defaults. DefaultSort is used whenever the
// request does not carry both a sort field and a sort direction.
type Resolver struct {
	DefaultLimit int
	// MaxLimit caps oversized limits; 0 disables the cap.
	MaxLimit    int
	DefaultSort []SortKey
}

// NewResolver returns a resolver with the given default sort and the
// package default page size.
func NewResolver(defaultSort ...SortKey) Resolver {
	return Resolver{DefaultLimit: DefaultLimit, DefaultSort: defaultSort}
}

// WithDefaultSort returns a copy of r using sort as its default ordering.
func (r Resolver) WithDefaultSort(sort ...SortKey) Resolver {
	r.DefaultSort = sort
	return r
}

func (r Resolver) Resolve(opts PageOptions) Page {
	page := opts.Page
	if page <= 0 {
		page = 1
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = r.DefaultLimit
		if limit <= 0 {
			limit = DefaultLimit
		}
	}
	if r.MaxLimit > 0 && limit > r.MaxLimit {
		limit = r.MaxLimit
	}
	// Keep (page-1)*limit within int.
	if maxPage := math.MaxInt/limit + 1; page > maxPage {
		page = maxPage
	}

	var sort []SortKey
	field := strings.TrimSpace(opts.SortBy)
	order := strings.TrimSpace(opts.SortOrder)
	if field != "" && order != "" {
		sort = []SortKey{{Field: field, Direction: ParseSortDirection(order)}}
	} else {
		sort = append(sort, r.DefaultSort...)
	}

	return Page{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
		Sort:  sort,
	}
}

// ParsePageOptions reads page, limit, sortBy and sortOrder from values.
// Unparsable numbers are treated as absent.
func ParsePageOptions(values url.Values) PageOptions {
	return PageOptions{
		Page:      atoi(values.Get(ParamPage)),
		Limit:     atoi(values.Get(ParamLimit)),
		SortBy:    strings.TrimSpace(values.Get(ParamSortBy)),
		SortOrder: strings.TrimSpace(values.Get(ParamSortOrder)),
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
