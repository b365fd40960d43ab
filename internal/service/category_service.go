package service

import (
	"context"
	"errors"
	"strings"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/repository"
	pkgerrors "go-inventory-po/pkg/errors"
	"go-inventory-po/pkg/logger"
	"go-inventory-po/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
	log  *logger.Logger
}

func NewCategoryService(repo repository.CategoryRepository, log *logger.Logger) CategoryService {
	return &categoryService{repo: repo, log: log}
}

func (s *categoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	name := strings.TrimSpace(req.Name)
	if err := s.ensureNameFree(ctx, name, uuid.Nil); err != nil {
		return nil, err
	}

	category := &model.Category{Name: name, Description: req.Description, Color: req.Color}
	if category.Color == "" {
		category.Color = model.DefaultCategoryColor
	}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, storeError(err, "failed to create category")
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	return categories, storeError(err, "failed to list categories")
}

func (s *categoryService) Get(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "category")
	}
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, validationError(errs)
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if err := s.ensureNameFree(ctx, name, id); err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if len(fields) > 0 {
		if err := s.repo.Update(ctx, id, fields); err != nil {
			return nil, storeError(err, "failed to update category")
		}
	}
	return s.Get(ctx, id)
}

// Delete refuses to remove a category that still has items.
func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	count, err := s.repo.CountItems(ctx, id)
	if err != nil {
		return storeError(err, "failed to count category items")
	}
	if count > 0 {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "category is used by %d item(s) and cannot be deleted", count).
			WithDetails(map[string]int64{"itemCount": count})
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(err, "failed to delete category")
	}
	s.log.InfoFields(ctx, "category deleted", map[string]any{"category_id": id})
	return nil
}

func (s *categoryService) ensureNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.FindByName(ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err, "failed to check category name")
	}
	if existing.ID != self {
		return pkgerrors.Newf(pkgerrors.CodeConflict, "category %q already exists", name)
	}
	return nil
}
