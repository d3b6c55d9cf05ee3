package table

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/ordering"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const OrderColumn = "order"

// OrderedTable is a Table whose rows are numbered 1..N within a group
// column that references a parent table.
type OrderedTable[T any] interface {
	Table[T]
	GroupColumn() string
	ParentTable() string
	// LockGroups locks the parent rows of groups for the rest of tx and
	// returns the ids that exist. Locks are taken in a fixed id order.
	LockGroups(ctx context.Context, tx *gorm.DB, groups ...uuid.UUID) ([]uuid.UUID, error)
	Position(ctx context.Context, tx *gorm.DB, id uuid.UUID) (group uuid.UUID, order int, err error)
	CountInGroup(ctx context.Context, tx *gorm.DB, group uuid.UUID) (int64, error)
	ShiftOrders(ctx context.Context, tx *gorm.DB, s ordering.Shift) (int64, error)
	SetPosition(ctx context.Context, tx *gorm.DB, id, group uuid.UUID, order int) (int64, error)
	GroupItems(ctx context.Context, tx *gorm.DB, group uuid.UUID) ([]ordering.Item, error)
	Groups(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error)
}

type Ordered[T any] struct {
	*Base[T]
	groupColumn string
	parentTable string
}

func NewOrdered[T any](db *gorm.DB, baseLog *logger.Logger, repoName, groupColumn, parentTable string) *Ordered[T] {
	return &Ordered[T]{
		Base:        New[T](db, baseLog, repoName),
		groupColumn: groupColumn,
		parentTable: parentTable,
	}
}

func (r *Ordered[T]) GroupColumn() string { return r.groupColumn }
func (r *Ordered[T]) ParentTable() string { return r.parentTable }

func (r *Ordered[T]) LockGroups(ctx context.Context, tx *gorm.DB, groups ...uuid.UUID) ([]uuid.UUID, error) {
	if len(groups) == 0 {
		return nil, nil
	}
	ids := append([]uuid.UUID(nil), groups...)
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	q := r.conn(ctx, tx).Table(r.parentTable).
		Where(clause.IN{Column: clause.Column{Name: "id"}, Values: uuidValues(ids)}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}
	var found []uuid.UUID
	if err := q.Pluck("id", &found).Error; err != nil {
		return nil, err
	}
	return found, nil
}

func (r *Ordered[T]) Position(ctx context.Context, tx *gorm.DB, id uuid.UUID) (uuid.UUID, int, error) {
	var (
		group uuid.UUID
		order int
	)
	row := r.conn(ctx, tx).Model(new(T)).
		Clauses(clause.Select{Columns: []clause.Column{{Name: r.groupColumn}, {Name: OrderColumn}}}).
		Where(idEq(id)).
		Row()
	if err := row.Scan(&group, &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, 0, gorm.ErrRecordNotFound
		}
		return uuid.Nil, 0, err
	}
	return group, order, nil
}

func (r *Ordered[T]) CountInGroup(ctx context.Context, tx *gorm.DB, group uuid.UUID) (int64, error) {
	var n int64
	err := r.conn(ctx, tx).Model(new(T)).Where(r.groupEq(group)).Count(&n).Error
	return n, err
}

// ShiftOrders applies s with a single UPDATE and returns the rows moved.
func (r *Ordered[T]) ShiftOrders(ctx context.Context, tx *gorm.DB, s ordering.Shift) (int64, error) {
	if s.Delta == 0 {
		return 0, nil
	}
	orderCol := clause.Column{Name: OrderColumn}
	q := r.conn(ctx, tx).Model(new(T)).
		Where(r.groupEq(s.Group)).
		Where(clause.Gte{Column: orderCol, Value: s.From})
	if s.To != 0 {
		q = q.Where(clause.Lte{Column: orderCol, Value: s.To})
	}
	if s.Exclude != uuid.Nil {
		q = q.Where(clause.Neq{Column: clause.Column{Name: "id"}, Value: s.Exclude})
	}
	res := q.UpdateColumn(OrderColumn, gorm.Expr("? + ?", orderCol, s.Delta))
	return res.RowsAffected, res.Error
}

func (r *Ordered[T]) SetPosition(ctx context.Context, tx *gorm.DB, id, group uuid.UUID, order int) (int64, error) {
	res := r.conn(ctx, tx).Model(new(T)).Where(idEq(id)).UpdateColumns(map[string]any{
		r.groupColumn: group,
		OrderColumn:   order,
		"updated_at":  time.Now().UTC(),
	})
	return res.RowsAffected, res.Error
}

// GroupItems returns the group's members sorted by order.
func (r *Ordered[T]) GroupItems(ctx context.Context, tx *gorm.DB, group uuid.UUID) ([]ordering.Item, error) {
	var rows []struct {
		ID        uuid.UUID
		Order     int
		CreatedAt time.Time
	}
	err := r.conn(ctx, tx).Model(new(T)).
		Clauses(clause.Select{Columns: []clause.Column{{Name: "id"}, {Name: OrderColumn}, {Name: "created_at"}}}).
		Where(r.groupEq(group)).
		Order(clause.OrderByColumn{Column: clause.Column{Name: OrderColumn}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}}).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	items := make([]ordering.Item, len(rows))
	for i, row := range rows {
		items[i] = ordering.Item{ID: row.ID, Order: row.Order, CreatedAt: row.CreatedAt}
	}
	return items, nil
}

// Groups lists every group id that has at least one member.
func (r *Ordered[T]) Groups(ctx context.Context, tx *gorm.DB) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx, tx).Model(new(T)).Distinct().Pluck(r.groupColumn, &ids).Error
	return ids, err
}

func (r *Ordered[T]) groupEq(group uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: r.groupColumn}, Value: group}
}
