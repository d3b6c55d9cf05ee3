// Package domain re-exports entity types so callers can import a single
// package as types.
package domain

import (
	"github.com/yungbote/lms-backend/internal/domain/assessment"
	"github.com/yungbote/lms-backend/internal/domain/learning"
)

type (
	Category       = learning.Category
	Course         = learning.Course
	CourseModule   = learning.CourseModule
	Lesson         = learning.Lesson
	LessonResource = learning.LessonResource

	Quiz         = assessment.Quiz
	QuizQuestion = assessment.QuizQuestion
	QuizOption   = assessment.QuizOption
	QuizAttempt  = assessment.QuizAttempt
	QuizAnswer   = assessment.QuizAnswer
	Assignment   = assessment.Assignment
	Submission   = assessment.Submission
)

// AllModels lists every persisted entity in migration order.
func AllModels() []any {
	return []any{
		&Category{},
		&Course{},
		&CourseModule{},
		&Lesson{},
		&Quiz{},
		&QuizQuestion{},
		&QuizOption{},
		&QuizAttempt{},
		&Assignment{},
		&Submission{},
	}
}
