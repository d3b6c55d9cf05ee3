package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type Repos struct {
	Category     repos.CategoryRepo
	Course       repos.CourseRepo
	CourseModule repos.CourseModuleRepo
	Lesson       repos.LessonRepo
	Quiz         repos.QuizRepo
	QuizQuestion repos.QuizQuestionRepo
	QuizOption   repos.QuizOptionRepo
	QuizAttempt  repos.QuizAttemptRepo
	Assignment   repos.AssignmentRepo
	Submission   repos.SubmissionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Category:     repos.NewCategoryRepo(db, log),
		Course:       repos.NewCourseRepo(db, log),
		CourseModule: repos.NewCourseModuleRepo(db, log),
		Lesson:       repos.NewLessonRepo(db, log),
		Quiz:         repos.NewQuizRepo(db, log),
		QuizQuestion: repos.NewQuizQuestionRepo(db, log),
		QuizOption:   repos.NewQuizOptionRepo(db, log),
		QuizAttempt:  repos.NewQuizAttemptRepo(db, log),
		Assignment:   repos.NewAssignmentRepo(db, log),
		Submission:   repos.NewSubmissionRepo(db, log),
	}
}
