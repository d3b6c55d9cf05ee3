package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

type CourseService = CRUDService[types.Course]

func NewCourseService(db *gorm.DB, baseLog *logger.Logger, courseRepo repos.CourseRepo, resolver query.Resolver) CourseService {
	return newCRUDService[types.Course](db, baseLog, courseRepo, resolver, crudConfig[types.Course]{
		service:  "CourseService",
		resource: "course",
		spec:     query.Courses,
		getPreloads: []table.Preload{
			{Association: "Category"},
			{Association: "Modules", Sort: []query.SortKey{query.Asc(table.OrderColumn)}},
		},
		listPreloads: []table.Preload{{Association: "Category"}},
		prepare: func(ctx context.Context, c *types.Course) error {
			return ensureSlug(ctx, "course.create", &c.Slug, c.Title, courseRepo.SlugExists)
		},
	})
}

type CategoryService = CRUDService[types.Category]

func NewCategoryService(db *gorm.DB, baseLog *logger.Logger, categoryRepo repos.CategoryRepo, resolver query.Resolver) CategoryService {
	return newCRUDService[types.Category](db, baseLog, categoryRepo, resolver, crudConfig[types.Category]{
		service:  "CategoryService",
		resource: "category",
		spec:     query.Categories,
		prepare: func(ctx context.Context, c *types.Category) error {
			return ensureSlug(ctx, "category.create", &c.Slug, c.Name, categoryRepo.SlugExists)
		},
	})
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its alphanumeric runs with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "-"), "-")
}

// ensureSlug derives *slug from source when empty and, for derived slugs
// only, appends a short suffix until it is unused. An explicit slug that
// collides is left for the unique index to reject.
func ensureSlug(ctx context.Context, op string, slug *string, source string, exists func(context.Context, *gorm.DB, string) (bool, error)) error {
	if strings.TrimSpace(*slug) != "" {
		*slug = strings.TrimSpace(*slug)
		return nil
	}
	base := Slugify(source)
	if base == "" {
		return invalid(op, "slug cannot be derived from an empty title")
	}
	candidate := base
	for i := 0; i < 5; i++ {
		taken, err := exists(ctx, nil, candidate)
		if err != nil {
			return storeError(op, "slug", err)
		}
		if !taken {
			*slug = candidate
			return nil
		}
		candidate = base + "-" + uuid.NewString()[:6]
	}
	*slug = candidate
	return nil
}
