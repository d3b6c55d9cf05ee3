package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuizAnswer struct {
	QuestionID       uuid.UUID `json:"question_id"`
	SelectedOptionID uuid.UUID `json:"selected_option_id"`
	IsCorrect        bool      `json:"is_correct"`
}

// QuizAttempt records a submitted attempt. Score is stored as supplied;
// grading happens elsewhere.
type QuizAttempt struct {
	ID          uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID      uuid.UUID                       `gorm:"type:uuid;not null;index:idx_quiz_attempt_student_quiz,priority:2" json:"quiz_id" validate:"required"`
	StudentID   uuid.UUID                       `gorm:"type:uuid;not null;index:idx_quiz_attempt_student_quiz,priority:1" json:"student_id" validate:"required"`
	Score       float64                         `gorm:"column:score;not null" json:"score" validate:"gte=0,lte=100"`
	Answers     datatypes.JSONSlice[QuizAnswer] `gorm:"column:answers" json:"answers"`
	Passed      bool                            `gorm:"column:passed;not null;default:false" json:"passed"`
	AttemptedAt time.Time                       `gorm:"column:attempted_at;not null;index" json:"attempted_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (a *QuizAttempt) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	if a.AttemptedAt.IsZero() {
		a.AttemptedAt = time.Now().UTC()
	}
	return nil
}
