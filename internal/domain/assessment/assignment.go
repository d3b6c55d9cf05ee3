package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID    uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id" validate:"required"`
	Title       string    `gorm:"column:title;not null" json:"title" validate:"required"`
	Description string    `gorm:"column:description;type:text;not null" json:"description" validate:"required"`
	DueDate     time.Time `gorm:"column:due_date;not null" json:"due_date" validate:"required"`
	MaxScore    int       `gorm:"column:max_score;not null;default:100" json:"max_score" validate:"omitempty,gte=1"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	if a.MaxScore == 0 {
		a.MaxScore = 100
	}
	return nil
}

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusGraded   = "graded"
	SubmissionStatusRejected = "rejected"
)

type Submission struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID  `gorm:"type:uuid;not null;index:idx_submission_assignment_student,priority:1" json:"assignment_id" validate:"required"`
	StudentID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_submission_assignment_student,priority:2" json:"student_id" validate:"required"`
	FileURL      string     `gorm:"column:file_url" json:"file_url,omitempty"`
	TextAnswer   string     `gorm:"column:text_answer;type:text" json:"text_answer,omitempty"`
	SubmittedAt  time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`
	Grade        *float64   `gorm:"column:grade" json:"grade,omitempty" validate:"omitempty,gte=0,lte=100"`
	Feedback     string     `gorm:"column:feedback;type:text" json:"feedback,omitempty"`
	Status       string     `gorm:"column:status;not null;index" json:"status" validate:"omitempty,oneof=pending graded rejected"`
	GradedBy     *uuid.UUID `gorm:"type:uuid" json:"graded_by,omitempty"`
	GradedAt     *time.Time `gorm:"column:graded_at" json:"graded_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Submission) TableName() string { return "submission" }

func (s *Submission) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = SubmissionStatusPending
	}
	return nil
}
