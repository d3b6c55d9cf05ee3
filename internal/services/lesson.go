package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type LessonService = OrderedService[types.Lesson]

// NewLessonService keeps lessons ordered within their module. agg must be
// built over lessonRepo.
func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	lessonRepo repos.LessonRepo,
	agg aggregates.OrderedGroupAggregate,
	resolver query.Resolver,
	deps OrderingDeps,
) LessonService {
	return newOrderedService[types.Lesson](db, baseLog, lessonRepo, agg, resolver, deps, crudConfig[types.Lesson]{
		service:      "LessonService",
		resource:     "lesson",
		spec:         query.Lessons,
		getPreloads:  []table.Preload{{Association: "Module"}},
		listPreloads: []table.Preload{{Association: "Module"}},
	})
}
