package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/dbctx"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type ModuleService = OrderedService[types.CourseModule]

// NewModuleService keeps modules ordered within their course. Deleting a
// module removes its lessons in the same transaction.
func NewModuleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	agg aggregates.OrderedGroupAggregate,
	resolver query.Resolver,
	deps OrderingDeps,
) ModuleService {
	preloads := []table.Preload{
		{Association: "Course"},
		{Association: "Lessons", Sort: []query.SortKey{query.Asc(table.OrderColumn)}},
	}
	s := newOrderedService[types.CourseModule](db, baseLog, moduleRepo, agg, resolver, deps, crudConfig[types.CourseModule]{
		service:      "ModuleService",
		resource:     "module",
		spec:         query.Modules,
		getPreloads:  preloads,
		listPreloads: preloads,
	})
	s.cascade = func(dbc dbctx.Context, id uuid.UUID) error {
		// Lesson writers lock the module row; holding it here keeps a
		// concurrent lesson insert from landing in a deleted module.
		if _, err := lessonRepo.LockGroups(dbc.Ctx, dbc.Tx, id); err != nil {
			return fmt.Errorf("lock module lessons: %w", err)
		}
		n, err := lessonRepo.DeleteByModuleIDs(dbc.Ctx, dbc.Tx, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("delete module lessons: %w", err)
		}
		s.log.Debug("module lessons removed", "module_id", id, "lessons", n)
		return nil
	}
	return s
}
