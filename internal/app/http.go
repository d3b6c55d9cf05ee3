package app

import (
	"gorm.io/gorm"

	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/http"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type Handlers struct {
	Health       *httpH.HealthHandler
	Category     *httpH.CRUDHandler[types.Category]
	Course       *httpH.CRUDHandler[types.Course]
	Module       *httpH.OrderedHandler[types.CourseModule]
	Lesson       *httpH.OrderedHandler[types.Lesson]
	Quiz         *httpH.CRUDHandler[types.Quiz]
	QuizQuestion *httpH.CRUDHandler[types.QuizQuestion]
	QuizOption   *httpH.CRUDHandler[types.QuizOption]
	QuizAttempt  *httpH.CRUDHandler[types.QuizAttempt]
	Assignment   *httpH.CRUDHandler[types.Assignment]
	Submission   *httpH.CRUDHandler[types.Submission]
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db, log),
		Category:     httpH.NewCRUDHandler(s.Category, "Category"),
		Course:       httpH.NewCRUDHandler(s.Course, "Course"),
		Module:       httpH.NewOrderedHandler(s.Module, "Module"),
		Lesson:       httpH.NewOrderedHandler(s.Lesson, "Lesson"),
		Quiz:         httpH.NewCRUDHandler(s.Quiz, "Quiz"),
		QuizQuestion: httpH.NewCRUDHandler(s.QuizQuestion, "Quiz question"),
		QuizOption:   httpH.NewCRUDHandler(s.QuizOption, "Quiz option"),
		QuizAttempt:  httpH.NewCRUDHandler(s.QuizAttempt, "Quiz attempt"),
		Assignment:   httpH.NewCRUDHandler(s.Assignment, "Assignment"),
		Submission:   httpH.NewCRUDHandler(s.Submission, "Submission"),
	}
}

func wireServer(cfg Config, log *logger.Logger, metrics *observability.Metrics, h Handlers) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         cfg.Otel.ServiceName,
		Tracing:             cfg.Otel.Enabled,
		CORSOrigins:         cfg.CORSOrigins,
		RequestTimeout:      cfg.RequestTimeout,
		HealthHandler:       h.Health,
		CategoryHandler:     h.Category,
		CourseHandler:       h.Course,
		ModuleHandler:       h.Module,
		LessonHandler:       h.Lesson,
		QuizHandler:         h.Quiz,
		QuizQuestionHandler: h.QuizQuestion,
		QuizOptionHandler:   h.QuizOption,
		QuizAttemptHandler:  h.QuizAttempt,
		AssignmentHandler:   h.Assignment,
		SubmissionHandler:   h.Submission,
	})
}
