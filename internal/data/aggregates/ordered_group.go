package aggregates

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/ordering"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/pkg/dbctx"
	"gorm.io/gorm"
)

// OrderedStore is the slice of an ordered table repo the aggregate needs.
// table.OrderedTable satisfies it.
type OrderedStore interface {
	TableName() string
	GroupColumn() string
	LockGroups(ctx context.Context, tx *gorm.DB, groups ...uuid.UUID) ([]uuid.UUID, error)
	Position(ctx context.Context, tx *gorm.DB, id uuid.UUID) (uuid.UUID, int, error)
	CountInGroup(ctx context.Context, tx *gorm.DB, group uuid.UUID) (int64, error)
	ShiftOrders(ctx context.Context, tx *gorm.DB, s ordering.Shift) (int64, error)
	SetPosition(ctx context.Context, tx *gorm.DB, id, group uuid.UUID, order int) (int64, error)
	GroupItems(ctx context.Context, tx *gorm.DB, group uuid.UUID) ([]ordering.Item, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
}

type OrderedGroupConfig struct {
	// Resource names the ordered rows ("lesson"), ParentResource the group
	// owner ("module").
	Resource       string
	ParentResource string
	// VerifyDensity re-reads every touched group before commit.
	VerifyDensity bool
}

// InsertInput creates one row. Write receives the planned order and must
// persist the row inside dbc.Tx, returning its id.
type InsertInput struct {
	GroupID uuid.UUID
	Desired *int
	Write   func(dbc dbctx.Context, order int) (uuid.UUID, error)
}

// MoveInput repositions a row. A nil ToGroup keeps the current group; a nil
// ToOrder keeps the current order within the group, or appends when the
// group changes. Write is optional and runs after the row has been placed.
type MoveInput struct {
	ID      uuid.UUID
	ToGroup *uuid.UUID
	ToOrder *int
	Write   func(dbc dbctx.Context, group uuid.UUID, order int) error
}

// DeleteInput removes a row. Write is optional and runs before the row is
// deleted, for dependent cleanup.
type DeleteInput struct {
	ID    uuid.UUID
	Write func(dbc dbctx.Context, group uuid.UUID) error
}

type OrderedGroupAggregate interface {
	domainagg.Aggregate
	Insert(ctx context.Context, in InsertInput) (domainagg.OrderChange, error)
	Move(ctx context.Context, in MoveInput) (domainagg.OrderChange, error)
	Delete(ctx context.Context, in DeleteInput) (domainagg.OrderChange, error)
}

type orderedGroupAggregate struct {
	deps  BaseDeps
	store OrderedStore
	cfg   OrderedGroupConfig
}

func NewOrderedGroupAggregate(deps BaseDeps, store OrderedStore, cfg OrderedGroupConfig) OrderedGroupAggregate {
	deps = deps.withDefaults()
	cfg.Resource = strings.TrimSpace(cfg.Resource)
	if cfg.Resource == "" && store != nil {
		cfg.Resource = store.TableName()
	}
	if strings.TrimSpace(cfg.ParentResource) == "" {
		cfg.ParentResource = "group"
	}
	deps.Log = deps.Log.With("aggregate", "OrderedGroupAggregate", "resource", cfg.Resource)
	return &orderedGroupAggregate{deps: deps, store: store, cfg: cfg}
}

func (a *orderedGroupAggregate) Contract() domainagg.Contract {
	return domainagg.OrderedGroupAggregateContract
}

func (a *orderedGroupAggregate) op(name string) string {
	return "aggregate." + a.cfg.Resource + "." + name
}

func (a *orderedGroupAggregate) Insert(ctx context.Context, in InsertInput) (domainagg.OrderChange, error) {
	op := a.op("insert")
	change := domainagg.OrderChange{Resource: a.cfg.Resource, Op: domainagg.OrderOpInsert, GroupID: in.GroupID}
	if in.GroupID == uuid.Nil {
		return change, domainagg.NewError(domainagg.CodeValidation, op, a.store.GroupColumn()+" is required", nil)
	}
	if in.Write == nil {
		return change, domainagg.NewError(domainagg.CodeInternal, op, "missing write", nil)
	}

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		if err := a.lock(dbc, op, in.GroupID); err != nil {
			return err
		}
		n, err := a.store.CountInGroup(dbc.Ctx, dbc.Tx, in.GroupID)
		if err != nil {
			return fmt.Errorf("count group: %w", err)
		}
		plan := ordering.PlanInsert(in.GroupID, int(n), in.Desired)
		shifted, err := a.apply(dbc, plan)
		if err != nil {
			return err
		}
		id, err := in.Write(dbc, plan.Target)
		if err != nil {
			return err
		}
		if err := a.verify(dbc, in.GroupID); err != nil {
			return err
		}
		change.RecordID = id
		change.Order = plan.Target
		change.Shifted = shifted
		return nil
	})
	if err != nil {
		return domainagg.OrderChange{}, err
	}
	a.deps.Log.Debug("ordered insert", "group_id", change.GroupID, "record_id", change.RecordID, "order", change.Order, "shifted", change.Shifted)
	return change, nil
}

func (a *orderedGroupAggregate) Move(ctx context.Context, in MoveInput) (domainagg.OrderChange, error) {
	op := a.op("move")
	change := domainagg.OrderChange{Resource: a.cfg.Resource, Op: domainagg.OrderOpMove, RecordID: in.ID}
	if in.ID == uuid.Nil {
		return change, domainagg.NewError(domainagg.CodeValidation, op, "id is required", nil)
	}
	if in.ToGroup != nil && *in.ToGroup == uuid.Nil {
		return change, domainagg.NewError(domainagg.CodeValidation, op, a.store.GroupColumn()+" must not be empty", nil)
	}

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		from, _, err := a.position(dbc, op, in.ID)
		if err != nil {
			return err
		}
		to := from
		if in.ToGroup != nil {
			to = *in.ToGroup
		}
		if err := a.lock(dbc, op, from, to); err != nil {
			return err
		}
		// Re-read under the lock; a concurrent move may have won the race.
		cur, old, err := a.position(dbc, op, in.ID)
		if err != nil {
			return err
		}
		if cur != from {
			return RetryableError(a.cfg.Resource + " changed group during move")
		}

		fromN, err := a.store.CountInGroup(dbc.Ctx, dbc.Tx, from)
		if err != nil {
			return fmt.Errorf("count group: %w", err)
		}
		var plan ordering.Plan
		if to == from {
			target := old
			if in.ToOrder != nil {
				target = *in.ToOrder
			}
			plan, err = ordering.PlanMove(from, in.ID, int(fromN), old, target)
		} else {
			toN, cerr := a.store.CountInGroup(dbc.Ctx, dbc.Tx, to)
			if cerr != nil {
				return fmt.Errorf("count group: %w", cerr)
			}
			plan, err = ordering.PlanTransfer(from, to, in.ID, int(fromN), old, int(toN), in.ToOrder)
		}
		if err != nil {
			return err
		}
		shifted, err := a.apply(dbc, plan)
		if err != nil {
			return err
		}
		if to != from || plan.Target != old {
			if _, err := a.store.SetPosition(dbc.Ctx, dbc.Tx, in.ID, to, plan.Target); err != nil {
				return fmt.Errorf("set position: %w", err)
			}
		}
		if in.Write != nil {
			if err := in.Write(dbc, to, plan.Target); err != nil {
				return err
			}
		}
		if err := a.verify(dbc, from, to); err != nil {
			return err
		}

		change.GroupID = to
		if to != from {
			fromCopy := from
			change.FromGroupID = &fromCopy
		}
		change.Order = plan.Target
		change.Shifted = shifted
		return nil
	})
	if err != nil {
		return domainagg.OrderChange{}, err
	}
	a.deps.Log.Debug("ordered move", "group_id", change.GroupID, "record_id", change.RecordID, "order", change.Order, "shifted", change.Shifted)
	return change, nil
}

func (a *orderedGroupAggregate) Delete(ctx context.Context, in DeleteInput) (domainagg.OrderChange, error) {
	op := a.op("delete")
	change := domainagg.OrderChange{Resource: a.cfg.Resource, Op: domainagg.OrderOpDelete, RecordID: in.ID}
	if in.ID == uuid.Nil {
		return change, domainagg.NewError(domainagg.CodeValidation, op, "id is required", nil)
	}

	err := executeWrite(ctx, a.deps, op, func(dbc dbctx.Context) error {
		group, _, err := a.position(dbc, op, in.ID)
		if err != nil {
			return err
		}
		if err := a.lock(dbc, op, group); err != nil {
			return err
		}
		cur, order, err := a.position(dbc, op, in.ID)
		if err != nil {
			return err
		}
		if cur != group {
			return RetryableError(a.cfg.Resource + " changed group during delete")
		}
		n, err := a.store.CountInGroup(dbc.Ctx, dbc.Tx, group)
		if err != nil {
			return fmt.Errorf("count group: %w", err)
		}
		plan, err := ordering.PlanDelete(group, in.ID, int(n), order)
		if err != nil {
			return err
		}
		if in.Write != nil {
			if err := in.Write(dbc, group); err != nil {
				return err
			}
		}
		deleted, err := a.store.DeleteByIDs(dbc.Ctx, dbc.Tx, []uuid.UUID{in.ID})
		if err != nil {
			return fmt.Errorf("delete: %w", err)
		}
		if deleted != 1 {
			return domainagg.NotFound(op, a.cfg.Resource)
		}
		shifted, err := a.apply(dbc, plan)
		if err != nil {
			return err
		}
		if err := a.verify(dbc, group); err != nil {
			return err
		}
		change.GroupID = group
		change.Order = order
		change.Shifted = shifted
		return nil
	})
	if err != nil {
		return domainagg.OrderChange{}, err
	}
	a.deps.Log.Debug("ordered delete", "group_id", change.GroupID, "record_id", change.RecordID, "order", change.Order, "shifted", change.Shifted)
	return change, nil
}

func (a *orderedGroupAggregate) position(dbc dbctx.Context, op string, id uuid.UUID) (uuid.UUID, int, error) {
	group, order, err := a.store.Position(dbc.Ctx, dbc.Tx, id)
	if err != nil {
		if isNotFound(err) {
			return uuid.Nil, 0, domainagg.NotFound(op, a.cfg.Resource)
		}
		return uuid.Nil, 0, fmt.Errorf("read position: %w", err)
	}
	return group, order, nil
}

// lock takes the parent row locks and fails when any parent is missing.
func (a *orderedGroupAggregate) lock(dbc dbctx.Context, op string, groups ...uuid.UUID) error {
	want := uniqueGroups(groups)
	found, err := a.store.LockGroups(dbc.Ctx, dbc.Tx, want...)
	if err != nil {
		return fmt.Errorf("lock groups: %w", err)
	}
	if len(found) != len(want) {
		return domainagg.NotFound(op, a.cfg.ParentResource)
	}
	return nil
}

func (a *orderedGroupAggregate) apply(dbc dbctx.Context, plan ordering.Plan) (int64, error) {
	var total int64
	for _, s := range plan.Shifts {
		n, err := a.store.ShiftOrders(dbc.Ctx, dbc.Tx, s)
		if err != nil {
			return total, fmt.Errorf("shift %s: %w", s, err)
		}
		total += n
	}
	return total, nil
}

func (a *orderedGroupAggregate) verify(dbc dbctx.Context, groups ...uuid.UUID) error {
	if !a.cfg.VerifyDensity {
		return nil
	}
	for _, g := range uniqueGroups(groups) {
		items, err := a.store.GroupItems(dbc.Ctx, dbc.Tx, g)
		if err != nil {
			return fmt.Errorf("verify group: %w", err)
		}
		if !ordering.IsDense(items) {
			return InvariantError(fmt.Sprintf("%s group %s is not dense after write", a.cfg.Resource, g))
		}
	}
	return nil
}

func uniqueGroups(groups []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(groups))
	seen := make(map[uuid.UUID]struct{}, len(groups))
	for _, g := range groups {
		if _, ok := seen[g]; ok {
			continue
		}
		seen[g] = struct{}{}
		out = append(out, g)
	}
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || domainagg.IsCode(err, domainagg.CodeNotFound)
}
