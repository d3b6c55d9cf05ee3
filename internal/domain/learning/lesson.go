package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LessonResource is an attachment listed on a lesson.
type LessonResource struct {
	Name string `json:"name,omitempty" yaml:"name"`
	URL  string `json:"url,omitempty" yaml:"url"`
	Type string `json:"type,omitempty" yaml:"type"`
}

// Lesson is an ordered child of CourseModule. Order is 1-based and dense
// within ModuleID.
type Lesson struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID uuid.UUID     `gorm:"type:uuid;not null;index:idx_lesson_module_order,priority:1" json:"module_id" validate:"required"`
	Module   *CourseModule `gorm:"constraint:OnDelete:CASCADE;foreignKey:ModuleID;references:ID" json:"module,omitempty" validate:"-"`
	Title    string        `gorm:"column:title;not null" json:"title" validate:"required"`

	Content         datatypes.JSON                      `gorm:"column:content" json:"content,omitempty"`
	VideoURL        string                              `gorm:"column:video_url" json:"video_url,omitempty"`
	DurationMinutes int                                 `gorm:"column:duration_minutes" json:"duration_minutes" validate:"gte=0"`
	Resources       datatypes.JSONSlice[LessonResource] `gorm:"column:resources" json:"resources"`
	Order           int                                 `gorm:"column:order;not null;index:idx_lesson_module_order,priority:2" json:"order"`
	IsFreePreview   bool                                `gorm:"column:is_free_preview;not null;default:false" json:"is_free_preview"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (l *Lesson) GetID() uuid.UUID       { return l.ID }
func (l *Lesson) GetGroupID() uuid.UUID  { return l.ModuleID }
func (l *Lesson) GetOrder() int          { return l.Order }
func (l *Lesson) SetOrder(order int)     { l.Order = order }
func (l *Lesson) SetGroupID(g uuid.UUID) { l.ModuleID = g }
