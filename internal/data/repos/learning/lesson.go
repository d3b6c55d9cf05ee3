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

// LessonRepo stores lessons ordered within their module.
type LessonRepo interface {
	table.OrderedTable[types.Lesson]
	GetWithModule(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error)
	// DeleteByModuleIDs removes every lesson of the given modules.
	DeleteByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error)
}

type lessonRepo struct {
	*table.Ordered[types.Lesson]
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{
		Ordered: table.NewOrdered[types.Lesson](db, baseLog, "LessonRepo", "module_id", types.CourseModule{}.TableName()),
	}
}

func (r *lessonRepo) GetWithModule(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Lesson, error) {
	return r.GetByID(ctx, tx, id, table.Preload{Association: "Module"})
}

func (r *lessonRepo) DeleteByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) (int64, error) {
	if len(moduleIDs) == 0 {
		return 0, nil
	}
	or := make(query.Or, 0, len(moduleIDs))
	for _, id := range moduleIDs {
		or = append(or, query.Eq{Field: "module_id", Value: id})
	}
	return r.DeleteWhere(ctx, tx, or)
}
