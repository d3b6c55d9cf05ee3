package services

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
)

// ListRequest is a parsed listing request.
type ListRequest struct {
	Page    query.PageOptions
	Filters query.FilterSet
}

// ParseListRequest reads paging and the filters spec allows from values.
func ParseListRequest(values url.Values, spec query.Spec) ListRequest {
	return ListRequest{
		Page:    query.ParsePageOptions(values),
		Filters: query.ParseFilterSet(values, spec.Filterable),
	}
}

type ListResult[T any] struct {
	Data []*T       `json:"data"`
	Meta query.Meta `json:"meta"`
}

// listPage runs the page query and the total count concurrently. extra,
// when set, is ANDed with the request predicate.
func listPage[T any](
	ctx context.Context,
	repo table.Table[T],
	spec query.Spec,
	resolver query.Resolver,
	req ListRequest,
	extra query.Predicate,
	preloads ...table.Preload,
) (*ListResult[T], error) {
	page := spec.Resolver(resolver).Resolve(req.Page)
	pred := spec.Predicate(req.Filters)
	if extra != nil {
		pred = query.And{extra, pred}
	}

	var (
		rows  []*T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = repo.FindMany(gctx, nil, pred, page.Sort, page.Skip, page.Limit, preloads...)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = repo.Count(gctx, nil, pred)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*T{}
	}
	return &ListResult[T]{Data: rows, Meta: page.Meta(total)}, nil
}
