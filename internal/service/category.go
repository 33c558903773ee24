package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gardencms/internal/logger"
	"gardencms/internal/model"
	"gardencms/internal/repository"
	"gardencms/internal/slug"
)

// CreateCategoryInput is the payload for a new category.
type CreateCategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Order       int    `json:"order" validate:"gte=0"`
	Active      *bool  `json:"active"`
}

// UpdateCategoryInput is a partial update; nil fields are left unchanged.
type UpdateCategoryInput struct {
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Order       *int    `json:"order" validate:"omitnil,gte=0"`
	Active      *bool   `json:"active"`
}

// CategoryListParams selects one page of categories. Page starts at 1.
type CategoryListParams struct {
	Page   int
	Limit  int
	Filter repository.CategoryFilter
}

// CategoryListResult is the service-level DTO for paginated categories.
type CategoryListResult struct {
	Items      []model.Category `json:"items"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// CategoryService defines the category use cases.
type CategoryService interface {
	Create(ctx context.Context, in CreateCategoryInput) (*model.Category, error)
	List(ctx context.Context, p CategoryListParams) (*CategoryListResult, error)
	Get(ctx context.Context, id string) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	Update(ctx context.Context, id string, in UpdateCategoryInput) (*model.Category, error)

	// Delete fails with ErrConflict while articles still use the category.
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo repository.CategoryRepository
	log  logger.Logger
	now  func() time.Time
}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService(repo repository.CategoryRepository, log logger.Logger) CategoryService {
	return &categoryService{repo: repo, log: log, now: time.Now}
}

func (s *categoryService) Create(ctx context.Context, in CreateCategoryInput) (*model.Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	sl := slug.Generate(slug.Resolve(in.Slug, in.Name))
	if sl == "" {
		return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
	}
	if err := s.ensureUnique(ctx, in.Name, sl, ""); err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	now := s.now().UTC()
	c := &model.Category{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Slug:        sl,
		Description: in.Description,
		Order:       in.Order,
		Active:      active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.repo.Create(ctx, c)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: category name or slug is already in use", ErrConflict)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.log.Info("category created", logger.String("category_id", stored.ID), logger.String("slug", stored.Slug))
	return stored, nil
}

func (s *categoryService) List(ctx context.Context, p CategoryListParams) (*CategoryListResult, error) {
	page, limit, err := normalizePage(p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	res, err := s.repo.List(ctx, p.Filter, repository.PageQuery{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return &CategoryListResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(res.Total, limit),
	}, nil
}

func (s *categoryService) Get(ctx context.Context, id string) (*model.Category, error) {
	if err := checkID("category", id); err != nil {
		return nil, err
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, sl string) (*model.Category, error) {
	c, err := s.repo.FindBySlug(ctx, sl)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: category with slug %s", ErrNotFound, sl)
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

func (s *categoryService) Update(ctx context.Context, id string, in UpdateCategoryInput) (*model.Category, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	name, sl := c.Name, c.Slug
	if in.Name != nil {
		name = *in.Name
	}
	if in.Slug != nil {
		sl = slug.Generate(*in.Slug)
		if sl == "" {
			return nil, fmt.Errorf("%w: slug cannot be empty", ErrInvalidInput)
		}
	}
	if name != c.Name || sl != c.Slug {
		if err := s.ensureUnique(ctx, name, sl, c.ID); err != nil {
			return nil, err
		}
	}
	c.Name, c.Slug = name, sl
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Order != nil {
		c.Order = *in.Order
	}
	if in.Active != nil {
		c.Active = *in.Active
	}
	c.UpdatedAt = s.now().UTC()

	stored, err := s.repo.Update(ctx, c)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("%w: category %s", ErrNotFound, id)
		case errors.Is(err, repository.ErrDuplicate):
			return nil, fmt.Errorf("%w: category name or slug is already in use", ErrConflict)
		}
		return nil, fmt.Errorf("update category: %w", err)
	}
	return stored, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := checkID("category", id); err != nil {
		return err
	}
	err := s.repo.Delete(ctx, id)
	switch {
	case err == nil:
		s.log.Info("category deleted", logger.String("category_id", id))
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("%w: category %s", ErrNotFound, id)
	case errors.Is(err, repository.ErrInUse):
		return fmt.Errorf("%w: category %s is still used by articles", ErrConflict, id)
	default:
		return fmt.Errorf("delete category: %w", err)
	}
}

// ensureUnique reports which of name and slug another category already holds.
func (s *categoryService) ensureUnique(ctx context.Context, name, sl, excludeID string) error {
	other, err := s.repo.FindConflict(ctx, name, sl, excludeID)
	if err != nil {
		return fmt.Errorf("check category conflict: %w", err)
	}
	if other == nil {
		return nil
	}
	if other.Name == name {
		return fmt.Errorf("%w: category name '%s' is already in use", ErrConflict, name)
	}
	return fmt.Errorf("%w: category slug '%s' is already in use", ErrConflict, sl)
}
