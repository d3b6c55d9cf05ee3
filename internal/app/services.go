package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/aggregates"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type Services struct {
	Category     services.CategoryService
	Course       services.CourseService
	Module       services.ModuleService
	Lesson       services.LessonService
	Quiz         services.QuizService
	QuizQuestion services.QuizQuestionService
	QuizOption   services.QuizOptionService
	QuizAttempt  services.QuizAttemptService
	Assignment   services.AssignmentService
	Submission   services.SubmissionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics, events services.OrderEvents) Services {
	log.Info("Wiring services...")

	resolver := query.NewResolver()
	if cfg.DefaultLimit > 0 {
		resolver.DefaultLimit = cfg.DefaultLimit
	}
	resolver.MaxLimit = cfg.MaxLimit

	hooks := aggregates.NewObservabilityHooks(metrics)
	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: hooks}
	lessonAgg := aggregates.NewOrderedGroupAggregate(base, r.Lesson, aggregates.OrderedGroupConfig{
		Resource:       "lesson",
		ParentResource: "module",
		VerifyDensity:  cfg.VerifyDensity,
	})
	moduleAgg := aggregates.NewOrderedGroupAggregate(base, r.CourseModule, aggregates.OrderedGroupConfig{
		Resource:       "module",
		ParentResource: "course",
		VerifyDensity:  cfg.VerifyDensity,
	})
	for _, agg := range []aggregates.OrderedGroupAggregate{lessonAgg, moduleAgg} {
		c := agg.Contract()
		log.Info("aggregate wired",
			"contract", c.Name,
			"tx_owned", c.RequiresAggregateOwnedTx(),
			"read_policy", c.ReadPolicy,
		)
	}

	policy := aggregates.DefaultRetryPolicy
	if cfg.ReorderTries > 0 {
		policy.MaxAttempts = cfg.ReorderTries
	}
	deps := services.OrderingDeps{
		Retry:   policy,
		Hooks:   hooks,
		Events:  events,
		Metrics: metrics,
	}

	return Services{
		Category:     services.NewCategoryService(db, log, r.Category, resolver),
		Course:       services.NewCourseService(db, log, r.Course, resolver),
		Module:       services.NewModuleService(db, log, r.CourseModule, r.Lesson, moduleAgg, resolver, deps),
		Lesson:       services.NewLessonService(db, log, r.Lesson, lessonAgg, resolver, deps),
		Quiz:         services.NewQuizService(db, log, r.Quiz, resolver),
		QuizQuestion: services.NewQuizQuestionService(db, log, r.QuizQuestion, resolver),
		QuizOption:   services.NewQuizOptionService(db, log, r.QuizOption, resolver),
		QuizAttempt:  services.NewQuizAttemptService(db, log, r.QuizAttempt, resolver),
		Assignment:   services.NewAssignmentService(db, log, r.Assignment, resolver),
		Submission:   services.NewSubmissionService(db, log, r.Submission, resolver),
	}
}
