package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	types "github.com/yungbote/lms-backend/internal/domain"
	"gorm.io/gorm"
)

func SeedCategory(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Category {
	tb.Helper()
	c := &types.Category{
		ID:   uuid.New(),
		Name: name + "-" + uuid.NewString()[:8],
		Slug: strings.ToLower(name) + "-" + uuid.NewString()[:8],
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed category: %v", err)
	}
	return c
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, categoryID uuid.UUID, title string) *types.Course {
	tb.Helper()
	c := &types.Course{
		ID:           uuid.New(),
		Title:        title,
		Slug:         strings.ToLower(strings.ReplaceAll(title, " ", "-")) + "-" + uuid.NewString()[:8],
		Description:  "about " + title,
		Price:        10,
		CategoryID:   categoryID,
		InstructorID: uuid.New(),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

// SeedModule inserts a module at a fixed order without shifting siblings.
func SeedModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    "module",
		Order:    order,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed module: %v", err)
	}
	return m
}

// SeedLesson inserts a lesson at a fixed order without shifting siblings.
func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, title string, order int) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:              uuid.New(),
		ModuleID:        moduleID,
		Title:           title,
		Order:           order,
		DurationMinutes: 10,
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// SeedLessons inserts one lesson per title at orders 1..len(titles).
func SeedLessons(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, titles ...string) []*types.Lesson {
	tb.Helper()
	out := make([]*types.Lesson, 0, len(titles))
	for i, title := range titles {
		out = append(out, SeedLesson(tb, ctx, tx, moduleID, title, i+1))
	}
	return out
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, title string) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{ID: uuid.New(), LessonID: lessonID, Title: title, PassingScore: 70}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedQuizQuestion(tb testing.TB, ctx context.Context, tx *gorm.DB, quizID uuid.UUID, text string) *types.QuizQuestion {
	tb.Helper()
	q := &types.QuizQuestion{ID: uuid.New(), QuizID: quizID, QuestionText: text, Type: "mcq", Points: 1}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz question: %v", err)
	}
	return q
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, lessonID uuid.UUID, title string) *types.Assignment {
	tb.Helper()
	a := &types.Assignment{
		ID:          uuid.New(),
		LessonID:    lessonID,
		Title:       title,
		Description: "do the thing",
		DueDate:     time.Now().Add(72 * time.Hour).UTC(),
		MaxScore:    100,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

// LessonOrders returns a map of lesson id to stored order for moduleID.
func LessonOrders(tb testing.TB, ctx context.Context, db *gorm.DB, moduleID uuid.UUID) map[uuid.UUID]int {
	tb.Helper()
	var rows []types.Lesson
	if err := db.WithContext(ctx).Where("module_id = ?", moduleID).Find(&rows).Error; err != nil {
		tb.Fatalf("load lesson orders: %v", err)
	}
	out := make(map[uuid.UUID]int, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Order
	}
	return out
}

func PtrUUID(id uuid.UUID) *uuid.UUID { return &id }
