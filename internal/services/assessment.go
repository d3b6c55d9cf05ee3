package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type (
	QuizService         = CRUDService[types.Quiz]
	QuizQuestionService = CRUDService[types.QuizQuestion]
	QuizOptionService   = CRUDService[types.QuizOption]
	QuizAttemptService  = CRUDService[types.QuizAttempt]
	AssignmentService   = CRUDService[types.Assignment]
	SubmissionService   = CRUDService[types.Submission]
)

// NewQuizService loads questions and their options on Get, and questions
// alone on listings.
func NewQuizService(db *gorm.DB, baseLog *logger.Logger, repo repos.QuizRepo, resolver query.Resolver) QuizService {
	return newCRUDService[types.Quiz](db, baseLog, repo, resolver, crudConfig[types.Quiz]{
		service:  "QuizService",
		resource: "quiz",
		spec:     query.Quizzes,
		getPreloads: []table.Preload{
			{Association: "Questions", Sort: []query.SortKey{query.Asc(table.OrderColumn), query.Asc("created_at")}},
			{Association: "Questions.Options", Sort: []query.SortKey{query.Asc(table.OrderColumn), query.Asc("created_at")}},
		},
		listPreloads: []table.Preload{
			{Association: "Questions", Sort: []query.SortKey{query.Asc(table.OrderColumn), query.Asc("created_at")}},
		},
	})
}

func NewQuizQuestionService(db *gorm.DB, baseLog *logger.Logger, repo repos.QuizQuestionRepo, resolver query.Resolver) QuizQuestionService {
	return newCRUDService[types.QuizQuestion](db, baseLog, repo, resolver, crudConfig[types.QuizQuestion]{
		service:      "QuizQuestionService",
		resource:     "quiz-question",
		spec:         query.QuizQuestions,
		getPreloads:  []table.Preload{{Association: "Options", Sort: []query.SortKey{query.Asc(table.OrderColumn)}}},
		listPreloads: []table.Preload{{Association: "Options", Sort: []query.SortKey{query.Asc(table.OrderColumn)}}},
	})
}

func NewQuizOptionService(db *gorm.DB, baseLog *logger.Logger, repo repos.QuizOptionRepo, resolver query.Resolver) QuizOptionService {
	return newCRUDService[types.QuizOption](db, baseLog, repo, resolver, crudConfig[types.QuizOption]{
		service:  "QuizOptionService",
		resource: "quiz-option",
		spec:     query.QuizOptions,
	})
}

func NewQuizAttemptService(db *gorm.DB, baseLog *logger.Logger, repo repos.QuizAttemptRepo, resolver query.Resolver) QuizAttemptService {
	return newCRUDService[types.QuizAttempt](db, baseLog, repo, resolver, crudConfig[types.QuizAttempt]{
		service:  "QuizAttemptService",
		resource: "quiz-attempt",
		spec:     query.QuizAttempts,
	})
}

func NewAssignmentService(db *gorm.DB, baseLog *logger.Logger, repo repos.AssignmentRepo, resolver query.Resolver) AssignmentService {
	return newCRUDService[types.Assignment](db, baseLog, repo, resolver, crudConfig[types.Assignment]{
		service:  "AssignmentService",
		resource: "assignment",
		spec:     query.Assignments,
	})
}

func NewSubmissionService(db *gorm.DB, baseLog *logger.Logger, repo repos.SubmissionRepo, resolver query.Resolver) SubmissionService {
	return newCRUDService[types.Submission](db, baseLog, repo, resolver, crudConfig[types.Submission]{
		service:  "SubmissionService",
		resource: "submission",
		spec:     query.Submissions,
	})
}
