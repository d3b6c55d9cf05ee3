package learning

import (
	"context"
	"strings"

	"github.com/yungbote/lms-backend/internal/data/repos/table"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepo interface {
	table.Table[types.Category]
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
}

type categoryRepo struct {
	*table.Base[types.Category]
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{Base: table.New[types.Category](db, baseLog, "CategoryRepo"), db: db}
}

func (r *categoryRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	return slugExists(ctx, tx, r.db, &types.Category{}, slug)
}

func slugExists(ctx context.Context, tx, db *gorm.DB, model any, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = db
	}
	var n int64
	err := transaction.WithContext(ctx).Model(model).
		Where(clause.Eq{Column: clause.Column{Name: "slug"}, Value: strings.ToLower(strings.TrimSpace(slug))}).
		Count(&n).Error
	return n > 0, err
}
