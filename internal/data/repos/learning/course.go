package learning

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type CourseRepo interface {
	table.Table[types.Course]
	// GetWithModules loads a course with its modules in order.
	GetWithModules(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
}

type courseRepo struct {
	*table.Base[types.Course]
	db *gorm.DB
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{Base: table.New[types.Course](db, baseLog, "CourseRepo"), db: db}
}

func (r *courseRepo) GetWithModules(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Course, error) {
	return r.GetByID(ctx, tx, id,
		table.Preload{Association: "Category"},
		table.Preload{Association: "Modules", Sort: []query.SortKey{query.Asc("order")}},
	)
}

func (r *courseRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	return slugExists(ctx, tx, r.db, &types.Course{}, slug)
}
