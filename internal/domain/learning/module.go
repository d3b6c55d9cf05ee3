package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseModule is an ordered child of Course. Order is 1-based and dense
// within CourseID.
type CourseModule struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID        uuid.UUID `gorm:"type:uuid;not null;index:idx_course_module_course_order,priority:1" json:"course_id" validate:"required"`
	Course          *Course   `gorm:"constraint:OnDelete:CASCADE;foreignKey:CourseID;references:ID" json:"course,omitempty" validate:"-"`
	Title           string    `gorm:"column:title;not null" json:"title" validate:"required"`
	Description     string    `gorm:"column:description;type:text" json:"description"`
	Order           int       `gorm:"column:order;not null;index:idx_course_module_course_order,priority:2" json:"order"`
	DurationMinutes int       `gorm:"column:duration_minutes" json:"duration_minutes" validate:"gte=0"`

	Lessons []Lesson `gorm:"foreignKey:ModuleID;references:ID" json:"lessons,omitempty" validate:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseModule) TableName() string { return "course_module" }

func (m *CourseModule) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

func (m *CourseModule) GetID() uuid.UUID       { return m.ID }
func (m *CourseModule) GetGroupID() uuid.UUID  { return m.CourseID }
func (m *CourseModule) GetOrder() int          { return m.Order }
func (m *CourseModule) SetOrder(order int)     { m.Order = order }
func (m *CourseModule) SetGroupID(g uuid.UUID) { m.CourseID = g }
