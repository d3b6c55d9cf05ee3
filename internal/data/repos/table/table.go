package table

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Preload names an association to load with each row, optionally sorted.
type Preload struct {
	Association string
	Sort        []query.SortKey
}

// Table is the generic row store every resource repo is built on.
type Table[T any] interface {
	TableName() string
	HasColumn(name string) bool
	Create(ctx context.Context, tx *gorm.DB, rows ...*T) error
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...Preload) (*T, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*T, error)
	FindMany(ctx context.Context, tx *gorm.DB, pred query.Predicate, sort []query.SortKey, skip, limit int, preloads ...Preload) ([]*T, error)
	Count(ctx context.Context, tx *gorm.DB, pred query.Predicate) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, row *T, fields []string) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error)
	DeleteWhere(ctx context.Context, tx *gorm.DB, pred query.Predicate) (int64, error)
}

type Base[T any] struct {
	db     *gorm.DB
	log    *logger.Logger
	schema *schema.Schema
}

// New parses T's schema once so column checks need no round trip.
func New[T any](db *gorm.DB, baseLog *logger.Logger, repoName string) *Base[T] {
	repoLog := baseLog.With("repo", repoName)
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		repoLog.Error("parse schema failed", "error", err)
	}
	return &Base[T]{db: db, log: repoLog, schema: stmt.Schema}
}

func (r *Base[T]) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx)
}

func (r *Base[T]) TableName() string {
	if r.schema == nil {
		return ""
	}
	return r.schema.Table
}

// HasColumn reports whether name is a persisted column of T.
func (r *Base[T]) HasColumn(name string) bool {
	if r.schema == nil {
		return false
	}
	_, ok := r.schema.FieldsByDBName[name]
	return ok
}

// Columns returns T's persisted column names in declaration order.
func (r *Base[T]) Columns() []string {
	if r.schema == nil {
		return nil
	}
	return append([]string(nil), r.schema.DBNames...)
}

func (r *Base[T]) Create(ctx context.Context, tx *gorm.DB, rows ...*T) error {
	if len(rows) == 0 {
		return nil
	}
	return r.conn(ctx, tx).Create(rows).Error
}

func (r *Base[T]) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID, preloads ...Preload) (*T, error) {
	var out T
	q := withPreloads(r.conn(ctx, tx), preloads)
	if err := q.Where(idEq(id)).Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Base[T]) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*T, error) {
	var results []*T
	if len(ids) == 0 {
		return results, nil
	}
	if err := r.conn(ctx, tx).
		Where(clause.IN{Column: clause.Column{Name: "id"}, Values: uuidValues(ids)}).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// FindMany lists rows matching pred. Sort keys naming unknown columns are
// dropped, and id is appended as a tiebreaker for stable paging.
func (r *Base[T]) FindMany(ctx context.Context, tx *gorm.DB, pred query.Predicate, sort []query.SortKey, skip, limit int, preloads ...Preload) ([]*T, error) {
	q := query.Apply(r.conn(ctx, tx).Model(new(T)), pred)
	q = query.ApplySort(q, append(append([]query.SortKey(nil), sort...), query.Asc("id")), r.HasColumn)
	if skip > 0 {
		q = q.Offset(skip)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	q = withPreloads(q, preloads)

	var results []*T
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Base[T]) Count(ctx context.Context, tx *gorm.DB, pred query.Predicate) (int64, error) {
	var n int64
	err := query.Apply(r.conn(ctx, tx).Model(new(T)), pred).Count(&n).Error
	return n, err
}

// Update writes exactly fields from row to the row with the given id and
// reports how many rows matched.
func (r *Base[T]) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, row *T, fields []string) (int64, error) {
	if row == nil || len(fields) == 0 {
		return 0, nil
	}
	res := r.conn(ctx, tx).Model(new(T)).Where(idEq(id)).Select(fields).Updates(row)
	return res.RowsAffected, res.Error
}

func (r *Base[T]) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.conn(ctx, tx).
		Where(clause.IN{Column: clause.Column{Name: "id"}, Values: uuidValues(ids)}).
		Delete(new(T))
	return res.RowsAffected, res.Error
}

// DeleteWhere removes every row matching pred. MatchAll is refused.
func (r *Base[T]) DeleteWhere(ctx context.Context, tx *gorm.DB, pred query.Predicate) (int64, error) {
	e := query.Expression(pred)
	if e == nil {
		return 0, errors.New("refusing unconditional delete")
	}
	res := r.conn(ctx, tx).Where(e).Delete(new(T))
	return res.RowsAffected, res.Error
}

func withPreloads(q *gorm.DB, preloads []Preload) *gorm.DB {
	for _, p := range preloads {
		if p.Association == "" {
			continue
		}
		if len(p.Sort) == 0 {
			q = q.Preload(p.Association)
			continue
		}
		sort := p.Sort
		q = q.Preload(p.Association, func(db *gorm.DB) *gorm.DB {
			return query.ApplySort(db, sort, nil)
		})
	}
	return q
}

func idEq(id uuid.UUID) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "id"}, Value: id}
}

func uuidValues(ids []uuid.UUID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
