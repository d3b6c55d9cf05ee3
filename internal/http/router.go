package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	types "github.com/yungbote/lms-backend/internal/domain"
	httpH "github.com/yungbote/lms-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lms-backend/internal/http/middleware"
	"github.com/yungbote/lms-backend/internal/observability"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	Tracing        bool
	CORSOrigins    []string
	RequestTimeout time.Duration

	CategoryHandler     *httpH.CRUDHandler[types.Category]
	CourseHandler       *httpH.CRUDHandler[types.Course]
	ModuleHandler       *httpH.OrderedHandler[types.CourseModule]
	LessonHandler       *httpH.OrderedHandler[types.Lesson]
	QuizHandler         *httpH.CRUDHandler[types.Quiz]
	QuizQuestionHandler *httpH.CRUDHandler[types.QuizQuestion]
	QuizOptionHandler   *httpH.CRUDHandler[types.QuizOption]
	QuizAttemptHandler  *httpH.CRUDHandler[types.QuizAttempt]
	AssignmentHandler   *httpH.CRUDHandler[types.Assignment]
	SubmissionHandler   *httpH.CRUDHandler[types.Submission]

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	api.Use(httpMW.Timeout(cfg.RequestTimeout))
	{
		crud(api, "/category", cfg.CategoryHandler)
		crud(api, "/course", cfg.CourseHandler)

		// Module
		if h := cfg.ModuleHandler; h != nil {
			crud(api, "/module", h.CRUDHandler)
			api.PATCH("/module/:id/order", h.Reorder)
		}

		// Lesson
		if h := cfg.LessonHandler; h != nil {
			api.GET("/lesson/module/:moduleId", h.ListByGroup("moduleId"))
			crud(api, "/lesson", h.CRUDHandler)
			api.PATCH("/lesson/:id/order", h.Reorder)
		}

		crud(api, "/quiz", cfg.QuizHandler)
		crud(api, "/quiz-question", cfg.QuizQuestionHandler)
		crud(api, "/quiz-option", cfg.QuizOptionHandler)
		crud(api, "/quiz-attempt", cfg.QuizAttemptHandler)
		crud(api, "/assignment", cfg.AssignmentHandler)
		crud(api, "/submission", cfg.SubmissionHandler)
	}

	return r
}

func crud[T any](g *gin.RouterGroup, path string, h *httpH.CRUDHandler[T]) {
	if h == nil {
		return
	}
	g.POST(path, h.Create)
	g.GET(path, h.List)
	g.GET(path+"/:id", h.Get)
	g.PATCH(path+"/:id", h.Update)
	g.DELETE(path+"/:id", h.Delete)
}
