package repos

import (
	"github.com/yungbote/lms-backend/internal/data/repos/assessment"
	"github.com/yungbote/lms-backend/internal/data/repos/learning"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type CategoryRepo = learning.CategoryRepo
type CourseRepo = learning.CourseRepo
type CourseModuleRepo = learning.CourseModuleRepo
type LessonRepo = learning.LessonRepo

type QuizRepo = assessment.QuizRepo
type QuizQuestionRepo = assessment.QuizQuestionRepo
type QuizOptionRepo = assessment.QuizOptionRepo
type QuizAttemptRepo = assessment.QuizAttemptRepo
type AssignmentRepo = assessment.AssignmentRepo
type SubmissionRepo = assessment.SubmissionRepo

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return learning.NewCategoryRepo(db, baseLog)
}
func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return learning.NewCourseModuleRepo(db, baseLog)
}
func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return assessment.NewQuizRepo(db, baseLog)
}
func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return assessment.NewQuizQuestionRepo(db, baseLog)
}
func NewQuizOptionRepo(db *gorm.DB, baseLog *logger.Logger) QuizOptionRepo {
	return assessment.NewQuizOptionRepo(db, baseLog)
}
func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return assessment.NewQuizAttemptRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return assessment.NewAssignmentRepo(db, baseLog)
}
func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return assessment.NewSubmissionRepo(db, baseLog)
}
