package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/dbctx"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

// OrderedService is a CRUDService whose rows keep a dense 1-based order
// within a parent group. Creates, moves and deletes shift siblings in the
// same transaction.
type OrderedService[T any] interface {
	CRUDService[T]
	// CreateAt inserts row at desired (nil appends; out-of-range values
	// are clamped).
	CreateAt(ctx context.Context, row *T, desired *int) (*T, error)
	ListByGroup(ctx context.Context, group uuid.UUID, req ListRequest) (*ListResult[T], error)
	// Reorder moves id to order within its current group.
	Reorder(ctx context.Context, id uuid.UUID, order int) (*T, error)
}

// OrderEvents receives committed order changes. The redis order bus
// satisfies it.
type OrderEvents interface {
	Publish(ctx context.Context, change domainagg.OrderChange) error
}

// OrderingDeps are shared by every ordered service.
type OrderingDeps struct {
	Retry   aggregates.RetryPolicy
	Hooks   aggregates.Hooks
	Events  OrderEvents
	Metrics *observability.Metrics
}

type orderedRow[T any] interface {
	*T
	GetID() uuid.UUID
	GetGroupID() uuid.UUID
	SetOrder(int)
}

type orderedService[T any, PT orderedRow[T]] struct {
	*crudService[T]
	agg      aggregates.OrderedGroupAggregate
	deps     OrderingDeps
	groupKey string
	// cascade runs inside the delete transaction before the row goes.
	cascade func(dbc dbctx.Context, id uuid.UUID) error
}

func newOrderedService[T any, PT orderedRow[T]](
	db *gorm.DB,
	baseLog *logger.Logger,
	repo table.OrderedTable[T],
	agg aggregates.OrderedGroupAggregate,
	resolver query.Resolver,
	deps OrderingDeps,
	cfg crudConfig[T],
) *orderedService[T, PT] {
	return &orderedService[T, PT]{
		crudService: newCRUDService[T](db, baseLog, repo, resolver, cfg),
		agg:         agg,
		deps:        deps,
		groupKey:    repo.GroupColumn(),
	}
}

// Create treats a zero order as "not supplied" and appends.
func (s *orderedService[T, PT]) Create(ctx context.Context, row *T) (*T, error) {
	var desired *int
	if row != nil {
		if o := orderOf(row); o != 0 {
			desired = &o
		}
	}
	return s.CreateAt(ctx, row, desired)
}

func (s *orderedService[T, PT]) CreateAt(ctx context.Context, row *T, desired *int) (*T, error) {
	op := s.op("create")
	if row == nil {
		return nil, invalid(op, "body required")
	}
	if s.cfg.prepare != nil {
		if err := s.cfg.prepare(ctx, row); err != nil {
			return nil, err
		}
	}
	if err := validateRow(op, row); err != nil {
		return nil, err
	}
	group := PT(row).GetGroupID()
	change, err := aggregates.RetryConflicts(ctx, s.deps.Retry, s.deps.Hooks, op, func() (domainagg.OrderChange, error) {
		return s.agg.Insert(ctx, aggregates.InsertInput{
			GroupID: group,
			Desired: desired,
			Write: func(dbc dbctx.Context, order int) (uuid.UUID, error) {
				PT(row).SetOrder(order)
				if err := s.repo.Create(dbc.Ctx, dbc.Tx, row); err != nil {
					return uuid.Nil, err
				}
				return PT(row).GetID(), nil
			},
		})
	})
	if err != nil {
		s.log.Warn("ordered create failed", "error", err, s.groupKey, group)
		return nil, err
	}
	s.publish(ctx, change)
	return s.Get(ctx, change.RecordID)
}

func (s *orderedService[T, PT]) ListByGroup(ctx context.Context, group uuid.UUID, req ListRequest) (*ListResult[T], error) {
	op := s.op("list")
	if group == uuid.Nil {
		return nil, invalid(op, s.groupKey+" required")
	}
	// The group is fixed, so the default order is the position within it.
	spec := s.cfg.spec
	spec.DefaultSort = []query.SortKey{query.Asc(table.OrderColumn)}
	out, err := listPage(ctx, s.repo, spec, s.resolver, req, query.Eq{Field: s.groupKey, Value: group}, s.cfg.listPreloads...)
	if err != nil {
		s.log.Warn("list by group failed", "error", err, s.groupKey, group)
		return nil, storeError(op, s.cfg.resource, err)
	}
	return out, nil
}

func (s *orderedService[T, PT]) Reorder(ctx context.Context, id uuid.UUID, order int) (*T, error) {
	return s.move(ctx, s.op("reorder"), id, nil, &order, nil)
}

// Update moves the row when the patch carries the order or group key, and
// writes the remaining fields in the same transaction.
func (s *orderedService[T, PT]) Update(ctx context.Context, id uuid.UUID, patch Patch) (*T, error) {
	op := s.op("update")
	if !patch.Has(table.OrderColumn) && !patch.Has(s.groupKey) {
		return s.crudService.Update(ctx, id, patch)
	}

	var (
		toOrder *int
		toGroup *uuid.UUID
	)
	if raw, ok := patch[table.OrderColumn]; ok {
		if err := json.Unmarshal(raw, &toOrder); err != nil {
			return nil, invalid(op, "order must be an integer")
		}
	}
	if raw, ok := patch[s.groupKey]; ok {
		if err := json.Unmarshal(raw, &toGroup); err != nil {
			return nil, invalid(op, s.groupKey+" must be a uuid")
		}
	}
	rest := patch.Without(table.OrderColumn, s.groupKey)
	write := func(dbc dbctx.Context, _ uuid.UUID, _ int) error {
		row, fields, err := s.merge(dbc.Ctx, dbc.Tx, op, id, rest)
		if err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		_, err = s.repo.Update(dbc.Ctx, dbc.Tx, id, row, fields)
		return err
	}
	return s.move(ctx, op, id, toGroup, toOrder, write)
}

func (s *orderedService[T, PT]) move(ctx context.Context, op string, id uuid.UUID, toGroup *uuid.UUID, toOrder *int, write func(dbctx.Context, uuid.UUID, int) error) (*T, error) {
	if id == uuid.Nil {
		return nil, invalid(op, "id required")
	}
	change, err := aggregates.RetryConflicts(ctx, s.deps.Retry, s.deps.Hooks, op, func() (domainagg.OrderChange, error) {
		return s.agg.Move(ctx, aggregates.MoveInput{ID: id, ToGroup: toGroup, ToOrder: toOrder, Write: write})
	})
	if err != nil {
		s.log.Warn("ordered move failed", "error", err, "id", id)
		return nil, err
	}
	s.publish(ctx, change)
	return s.Get(ctx, id)
}

func (s *orderedService[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	op := s.op("delete")
	if id == uuid.Nil {
		return invalid(op, "id required")
	}
	var write func(dbctx.Context, uuid.UUID) error
	if s.cascade != nil {
		write = func(dbc dbctx.Context, _ uuid.UUID) error { return s.cascade(dbc, id) }
	}
	change, err := aggregates.RetryConflicts(ctx, s.deps.Retry, s.deps.Hooks, op, func() (domainagg.OrderChange, error) {
		return s.agg.Delete(ctx, aggregates.DeleteInput{ID: id, Write: write})
	})
	if err != nil {
		s.log.Warn("ordered delete failed", "error", err, "id", id)
		return err
	}
	s.publish(ctx, change)
	return nil
}

// publish runs after commit. A failed publish is logged and counted; the
// write itself has already succeeded.
func (s *orderedService[T, PT]) publish(ctx context.Context, change domainagg.OrderChange) {
	if s.deps.Events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.deps.Events.Publish(pctx, change); err != nil {
		s.log.Warn("order event publish failed", "error", err, "op", change.Op, "record_id", change.RecordID)
		s.deps.Metrics.IncOrderEvent(change.Resource, "failed")
		return
	}
	s.deps.Metrics.IncOrderEvent(change.Resource, "published")
}

func orderOf(row any) int {
	if o, ok := row.(interface{ GetOrder() int }); ok {
		return o.GetOrder()
	}
	return 0
}
