package query

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveDefaults(t *testing.T) {
	r := NewResolver(Desc("created_at"))

	p := r.Resolve(PageOptions{})
	require.Equal(t, 1, p.Page)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 0, p.Skip)
	require.Equal(t, []SortKey{Desc("created_at")}, p.Sort)
}

func TestResolveSkip(t *testing.T) {
	r := NewResolver()
	cases := []struct {
		name  string
		in    PageOptions
		page  int
		limit int
		skip  int
	}{
		{"second page of five", PageOptions{Page: 2, Limit: 5}, 2, 5, 5},
		{"negative page", PageOptions{Page: -3, Limit: 4}, 1, 4, 0},
		{"zero limit", PageOptions{Page: 3}, 3, 10, 20},
		{"negative limit", PageOptions{Page: 1, Limit: -1}, 1, 10, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := r.Resolve(tc.in)
			require.Equal(t, tc.page, p.Page)
			require.Equal(t, tc.limit, p.Limit)
			require.Equal(t, tc.skip, p.Skip)
		})
	}
}

func TestResolveHugePageDoesNotOverflow(t *testing.T) {
	r := NewResolver()
	p := r.Resolve(ParsePageOptions(url.Values{"page": {"4611686018427387905"}}))
	require.Positive(t, p.Skip)
	require.Equal(t, (p.Page-1)*p.Limit, p.Skip)

	p = r.Resolve(PageOptions{Page: 3, Limit: math.MaxInt})
	require.Equal(t, 2, p.Page)
	require.Equal(t, math.MaxInt, p.Skip)
}

func TestResolveMaxLimit(t *testing.T) {
	r := Resolver{DefaultLimit: 20, MaxLimit: 50}
	require.Equal(t, 50, r.Resolve(PageOptions{Limit: 500}).Limit)
	require.Equal(t, 20, r.Resolve(PageOptions{}).Limit)

	unlimited := Resolver{DefaultLimit: 20}
	require.Equal(t, 500, unlimited.Resolve(PageOptions{Limit: 500}).Limit)
}

func TestResolveSortRequiresFieldAndOrder(t *testing.T) {
	r := NewResolver(Asc("module_id"), Asc("order"))

	p := r.Resolve(PageOptions{SortBy: "title"})
	require.Equal(t, []SortKey{Asc("module_id"), Asc("order")}, p.Sort)

	p = r.Resolve(PageOptions{SortBy: "title", SortOrder: "desc"})
	require.Equal(t, []SortKey{Desc("title")}, p.Sort)

	p = r.Resolve(PageOptions{SortBy: "title", SortOrder: "sideways"})
	require.Equal(t, []SortKey{Asc("title")}, p.Sort)
}

func TestParseSortDirection(t *testing.T) {
	for raw, want := range map[string]SortDirection{
		"asc": SortAsc, "ASC": SortAsc, "ascending": SortAsc, "1": SortAsc,
		"desc": SortDesc, "Descending": SortDesc, "-1": SortDesc,
		"": SortAsc, "bogus": SortAsc,
	} {
		require.Equal(t, want, ParseSortDirection(raw), raw)
	}
}

func TestParsePageOptions(t *testing.T) {
	v := url.Values{}
	v.Set("page", "3")
	v.Set("limit", "abc")
	v.Set("sortBy", " title ")
	v.Set("sortOrder", "desc")

	got := ParsePageOptions(v)
	require.Equal(t, PageOptions{Page: 3, Limit: 0, SortBy: "title", SortOrder: "desc"}, got)

	p := NewResolver().Resolve(got)
	require.Equal(t, 10, p.Limit)
	require.Equal(t, 20, p.Skip)
}

func TestPageMeta(t *testing.T) {
	p := NewResolver().Resolve(PageOptions{Page: 2, Limit: 5})
	require.Equal(t, Meta{Page: 2, Limit: 5, Total: 42}, p.Meta(42))
}
