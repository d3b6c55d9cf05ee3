package assessment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Quiz struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LessonID         uuid.UUID `gorm:"type:uuid;not null;index" json:"lesson_id" validate:"required"`
	Title            string    `gorm:"column:title;not null" json:"title" validate:"required"`
	PassingScore     int       `gorm:"column:passing_score;not null;default:70" json:"passing_score" validate:"gte=0,lte=100"`
	TimeLimitMinutes *int      `gorm:"column:time_limit_minutes" json:"time_limit_minutes,omitempty" validate:"omitempty,gte=1"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID;references:ID" json:"questions,omitempty" validate:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	return nil
}

const (
	QuestionTypeMCQ       = "mcq"
	QuestionTypeTrueFalse = "true_false"
)

type QuizQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id" validate:"required"`
	QuestionText string    `gorm:"column:question_text;type:text;not null" json:"question_text" validate:"required"`
	Type         string    `gorm:"column:type;not null" json:"type" validate:"required,oneof=mcq true_false"`
	Points       int       `gorm:"column:points;not null;default:1" json:"points" validate:"omitempty,gte=1"`
	Order        *int      `gorm:"column:order" json:"order,omitempty" validate:"omitempty,gte=1"`

	Options []QuizOption `gorm:"foreignKey:QuestionID;references:ID" json:"options,omitempty" validate:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(*gorm.DB) error {
	ensureID(&q.ID)
	if q.Points == 0 {
		q.Points = 1
	}
	return nil
}

type QuizOption struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;index" json:"question_id" validate:"required"`
	Text       string    `gorm:"column:text;not null" json:"text" validate:"required"`
	IsCorrect  bool      `gorm:"column:is_correct;not null;default:false" json:"is_correct"`
	Order      *int      `gorm:"column:order" json:"order,omitempty" validate:"omitempty,gte=1"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizOption) TableName() string { return "quiz_option" }

func (o *QuizOption) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
