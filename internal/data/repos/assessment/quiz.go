package assessment

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type QuizRepo interface {
	table.Table[types.Quiz]
	// GetWithQuestions loads a quiz with its questions and their options.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Quiz, error)
}

type quizRepo struct {
	*table.Base[types.Quiz]
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{Base: table.New[types.Quiz](db, baseLog, "QuizRepo")}
}

func (r *quizRepo) GetWithQuestions(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Quiz, error) {
	byOrder := []query.SortKey{query.Asc("order"), query.Asc("created_at")}
	return r.GetByID(ctx, tx, id,
		table.Preload{Association: "Questions", Sort: byOrder},
		table.Preload{Association: "Questions.Options", Sort: byOrder},
	)
}

type QuizQuestionRepo interface {
	table.Table[types.QuizQuestion]
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return table.New[types.QuizQuestion](db, baseLog, "QuizQuestionRepo")
}

type QuizOptionRepo interface {
	table.Table[types.QuizOption]
}

func NewQuizOptionRepo(db *gorm.DB, baseLog *logger.Logger) QuizOptionRepo {
	return table.New[types.QuizOption](db, baseLog, "QuizOptionRepo")
}

type QuizAttemptRepo interface {
	table.Table[types.QuizAttempt]
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return table.New[types.QuizAttempt](db, baseLog, "QuizAttemptRepo")
}
