package repository

import (
	"context"

	"gardencms/internal/model"
)

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Active *bool
	Search string
}

// CategoryRepository defines data access for categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) (*model.Category, error)

	// FindByID returns sql.ErrNoRows when missing.
	FindByID(ctx context.Context, id string) (*model.Category, error)

	// FindBySlug returns sql.ErrNoRows when missing.
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)

	// FindConflict returns a category other than excludeID whose name equals
	// name or whose slug equals slug, or nil when there is none.
	FindConflict(ctx context.Context, name, slug, excludeID string) (*model.Category, error)

	// List returns categories ordered by display order, then name.
	List(ctx context.Context, f CategoryFilter, pq PageQuery) (*PageResult[model.Category], error)

	Update(ctx context.Context, c *model.Category) (*model.Category, error)

	// Delete returns sql.ErrNoRows when nothing was deleted and ErrInUse when
	// articles still reference the category.
	Delete(ctx context.Context, id string) error
}
