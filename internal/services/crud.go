package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lms-backend/internal/data/query"
	"github.com/yungbote/lms-backend/internal/data/repos/table"
	domainagg "github.com/yungbote/lms-backend/internal/domain/aggregates"
	"github.com/yungbote/lms-backend/internal/pkg/logger"
)

// CRUDService is the resource surface every listing endpoint is built on.
type CRUDService[T any] interface {
	Resource() string
	Spec() query.Spec
	Create(ctx context.Context, row *T) (*T, error)
	List(ctx context.Context, req ListRequest) (*ListResult[T], error)
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, id uuid.UUID, patch Patch) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type crudConfig[T any] struct {
	service  string
	resource string
	spec     query.Spec
	// getPreloads are loaded by Get, listPreloads by every listing.
	getPreloads  []table.Preload
	listPreloads []table.Preload
	// prepare runs before validation on create.
	prepare func(ctx context.Context, row *T) error
}

type crudService[T any] struct {
	db       *gorm.DB
	log      *logger.Logger
	repo     table.Table[T]
	resolver query.Resolver
	cfg      crudConfig[T]
}

func newCRUDService[T any](db *gorm.DB, baseLog *logger.Logger, repo table.Table[T], resolver query.Resolver, cfg crudConfig[T]) *crudService[T] {
	return &crudService[T]{
		db:       db,
		log:      baseLog.With("service", cfg.service),
		repo:     repo,
		resolver: resolver,
		cfg:      cfg,
	}
}

func (s *crudService[T]) op(name string) string { return s.cfg.resource + "." + name }

func (s *crudService[T]) Resource() string { return s.cfg.resource }
func (s *crudService[T]) Spec() query.Spec { return s.cfg.spec }

func (s *crudService[T]) Create(ctx context.Context, row *T) (*T, error) {
	op := s.op("create")
	if row == nil {
		return nil, invalid(op, "body required")
	}
	if s.cfg.prepare != nil {
		if err := s.cfg.prepare(ctx, row); err != nil {
			return nil, err
		}
	}
	if err := validateRow(op, row); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, nil, row); err != nil {
		s.log.Warn("create failed", "error", err)
		return nil, storeError(op, s.cfg.resource, err)
	}
	return row, nil
}

func (s *crudService[T]) List(ctx context.Context, req ListRequest) (*ListResult[T], error) {
	out, err := listPage(ctx, s.repo, s.cfg.spec, s.resolver, req, nil, s.cfg.listPreloads...)
	if err != nil {
		s.log.Warn("list failed", "error", err)
		return nil, storeError(s.op("list"), s.cfg.resource, err)
	}
	return out, nil
}

func (s *crudService[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	op := s.op("get")
	if id == uuid.Nil {
		return nil, invalid(op, "id required")
	}
	row, err := s.repo.GetByID(ctx, nil, id, s.cfg.getPreloads...)
	if err != nil {
		return nil, storeError(op, s.cfg.resource, err)
	}
	return row, nil
}

func (s *crudService[T]) Update(ctx context.Context, id uuid.UUID, patch Patch) (*T, error) {
	op := s.op("update")
	row, fields, err := s.merge(ctx, nil, op, id, patch)
	if err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		n, err := s.repo.Update(ctx, nil, id, row, fields)
		if err != nil {
			s.log.Warn("update failed", "error", err, "id", id)
			return nil, storeError(op, s.cfg.resource, err)
		}
		if n == 0 {
			return nil, domainagg.NotFound(op, s.cfg.resource)
		}
	}
	return s.Get(ctx, id)
}

// merge loads id, overlays patch and validates the result. It returns the
// merged row and the columns the patch writes.
func (s *crudService[T]) merge(ctx context.Context, tx *gorm.DB, op string, id uuid.UUID, patch Patch) (*T, []string, error) {
	if id == uuid.Nil {
		return nil, nil, invalid(op, "id required")
	}
	row, err := s.repo.GetByID(ctx, tx, id)
	if err != nil {
		return nil, nil, storeError(op, s.cfg.resource, err)
	}
	patch = patch.Without(readOnlyFields...)
	if err := patch.ApplyTo(op, row); err != nil {
		return nil, nil, err
	}
	if err := validateRow(op, row); err != nil {
		return nil, nil, err
	}
	fields := patch.Columns(s.repo.HasColumn)
	if len(fields) > 0 && s.repo.HasColumn("updated_at") {
		fields = append(fields, "updated_at")
	}
	return row, fields, nil
}

func (s *crudService[T]) Delete(ctx context.Context, id uuid.UUID) error {
	op := s.op("delete")
	if id == uuid.Nil {
		return invalid(op, "id required")
	}
	n, err := s.repo.DeleteByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		s.log.Warn("delete failed", "error", err, "id", id)
		return storeError(op, s.cfg.resource, err)
	}
	if n == 0 {
		return domainagg.NotFound(op, s.cfg.resource)
	}
	return nil
}
