// Package seed loads a YAML course outline and creates it through the
// services, so ordering and slugs follow the same rules as the API.
//
//	category:
//	  name: Programming
//	courses:
//	  - title: Go in Practice
//	    description: ...
//	    instructor_id: 6f1c...
//	    modules:
//	      - title: Basics
//	        lessons:
//	          - title: Hello
//	            duration_minutes: 12
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/lms-backend/internal/data/query"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"github.com/yungbote/lms-backend/internal/services"
)

type Outline struct {
	Category CategoryOutline `yaml:"category" validate:"required"`
	Courses  []CourseOutline `yaml:"courses" validate:"required,min=1,dive"`
}

type CategoryOutline struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
}

type CourseOutline struct {
	Title            string          `yaml:"title" validate:"required"`
	Slug             string          `yaml:"slug"`
	Description      string          `yaml:"description" validate:"required"`
	Level            string          `yaml:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price            float64         `yaml:"price" validate:"gte=0"`
	Language         string          `yaml:"language"`
	InstructorID     uuid.UUID       `yaml:"instructor_id" validate:"required"`
	Published        bool            `yaml:"published"`
	WhatYouWillLearn []string        `yaml:"what_you_will_learn"`
	Modules          []ModuleOutline `yaml:"modules" validate:"dive"`
}

type ModuleOutline struct {
	Title       string          `yaml:"title" validate:"required"`
	Description string          `yaml:"description"`
	Lessons     []LessonOutline `yaml:"lessons" validate:"dive"`
}

type LessonOutline struct {
	Title           string                 `yaml:"title" validate:"required"`
	VideoURL        string                 `yaml:"video_url" validate:"omitempty,url"`
	DurationMinutes int                    `yaml:"duration_minutes" validate:"gte=0"`
	FreePreview     bool                   `yaml:"free_preview"`
	Resources       []types.LessonResource `yaml:"resources"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseOutline decodes and validates an outline. Unknown keys are errors.
func ParseOutline(r io.Reader) (*Outline, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var o Outline
	if err := dec.Decode(&o); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty outline")
		}
		return nil, fmt.Errorf("decode outline: %w", err)
	}
	if err := validate.Struct(&o); err != nil {
		return nil, fmt.Errorf("invalid outline: %w", err)
	}
	return &o, nil
}

// Summary counts what Apply created.
type Summary struct {
	CategoryID uuid.UUID
	Courses    int
	Modules    int
	Lessons    int
}

type Seeder struct {
	Log        *logger.Logger
	Categories services.CategoryService
	Courses    services.CourseService
	Modules    services.ModuleService
	Lessons    services.LessonService
}

// Apply creates the outline. An existing category with the same slug is
// reused; courses are always created.
func (s *Seeder) Apply(ctx context.Context, o *Outline) (Summary, error) {
	var sum Summary
	cat, err := s.category(ctx, o.Category)
	if err != nil {
		return sum, err
	}
	sum.CategoryID = cat.ID

	for _, co := range o.Courses {
		course, err := s.Courses.Create(ctx, &types.Course{
			Title:            co.Title,
			Slug:             co.Slug,
			Description:      co.Description,
			Level:            co.Level,
			Price:            co.Price,
			Language:         co.Language,
			CategoryID:       cat.ID,
			InstructorID:     co.InstructorID,
			IsPublished:      co.Published,
			WhatYouWillLearn: co.WhatYouWillLearn,
		})
		if err != nil {
			return sum, fmt.Errorf("course %q: %w", co.Title, err)
		}
		sum.Courses++

		for _, mo := range co.Modules {
			module, err := s.Modules.CreateAt(ctx, &types.CourseModule{
				CourseID:    course.ID,
				Title:       mo.Title,
				Description: mo.Description,
			}, nil)
			if err != nil {
				return sum, fmt.Errorf("module %q: %w", mo.Title, err)
			}
			sum.Modules++

			for _, lo := range mo.Lessons {
				_, err := s.Lessons.CreateAt(ctx, &types.Lesson{
					ModuleID:        module.ID,
					Title:           lo.Title,
					VideoURL:        lo.VideoURL,
					DurationMinutes: lo.DurationMinutes,
					IsFreePreview:   lo.FreePreview,
					Resources:       lo.Resources,
				}, nil)
				if err != nil {
					return sum, fmt.Errorf("lesson %q: %w", lo.Title, err)
				}
				sum.Lessons++
			}
		}
		if s.Log != nil {
			s.Log.Info("course seeded", "course_id", course.ID, "slug", course.Slug, "modules", len(co.Modules))
		}
	}
	return sum, nil
}

func (s *Seeder) category(ctx context.Context, co CategoryOutline) (*types.Category, error) {
	slug := services.Slugify(co.Name)
	req := services.ParseListRequest(url.Values{"slug": {slug}, "limit": {"1"}}, query.Categories)
	existing, err := s.Categories.List(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	if len(existing.Data) > 0 {
		return existing.Data[0], nil
	}
	cat, err := s.Categories.Create(ctx, &types.Category{Name: co.Name, Description: co.Description})
	if err != nil {
		return nil, fmt.Errorf("category %q: %w", co.Name, err)
	}
	return cat, nil
}
