package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CourseLevelBeginner     = "beginner"
	CourseLevelIntermediate = "intermediate"
	CourseLevelAdvanced     = "advanced"

	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
	CourseStatusArchived  = "archived"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"column:title;not null" json:"title" validate:"required,max=200"`
	Slug         string    `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Description  string    `gorm:"column:description;type:text;not null" json:"description" validate:"required"`
	ThumbnailURL *string   `gorm:"column:thumbnail_url" json:"thumbnail_url"`
	Level        string    `gorm:"column:level;not null;index" json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price        float64   `gorm:"column:price;not null;index" json:"price" validate:"gte=0"`

	CategoryID   uuid.UUID `gorm:"type:uuid;not null;index" json:"category_id" validate:"required"`
	Category     *Category `gorm:"constraint:OnDelete:RESTRICT;foreignKey:CategoryID;references:ID" json:"category,omitempty" validate:"-"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null;index" json:"instructor_id" validate:"required"`

	DurationHours    float64                     `gorm:"column:duration_hours" json:"duration_hours" validate:"gte=0"`
	Language         string                      `gorm:"column:language;not null" json:"language"`
	Requirements     string                      `gorm:"column:requirements;type:text" json:"requirements"`
	WhatYouWillLearn datatypes.JSONSlice[string] `gorm:"column:what_you_will_learn" json:"what_you_will_learn"`
	Status           string                      `gorm:"column:status;not null;index" json:"status" validate:"omitempty,oneof=draft published archived"`
	IsPublished      bool                        `gorm:"column:is_published;not null;default:false;index" json:"is_published"`
	EnrollmentCount  int                         `gorm:"column:enrollment_count;not null;default:0" json:"enrollment_count" validate:"gte=0"`
	AverageRating    float64                     `gorm:"column:average_rating;not null;default:0" json:"average_rating" validate:"gte=0,lte=5"`

	Modules []CourseModule `gorm:"foreignKey:CourseID;references:ID" json:"modules,omitempty" validate:"-"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	if c.Level == "" {
		c.Level = CourseLevelBeginner
	}
	if c.Status == "" {
		c.Status = CourseStatusDraft
	}
	if c.Language == "" {
		c.Language = "English"
	}
	return nil
}
