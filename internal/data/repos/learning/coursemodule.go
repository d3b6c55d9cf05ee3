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

// CourseModuleRepo stores modules ordered within their course.
type CourseModuleRepo interface {
	table.OrderedTable[types.CourseModule]
	GetWithLessons(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseModule, error)
}

type courseModuleRepo struct {
	*table.Ordered[types.CourseModule]
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{
		Ordered: table.NewOrdered[types.CourseModule](db, baseLog, "CourseModuleRepo", "course_id", types.Course{}.TableName()),
	}
}

func (r *courseModuleRepo) GetWithLessons(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CourseModule, error) {
	return r.GetByID(ctx, tx, id,
		table.Preload{Association: "Course"},
		table.Preload{Association: "Lessons", Sort: []query.SortKey{query.Asc("order")}},
	)
}
