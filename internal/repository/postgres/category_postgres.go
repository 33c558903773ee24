package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gardencms/internal/model"
	"gardencms/internal/repository"
)

const categoryColumns = `id, name, slug, description, sort_order, active, created_at, updated_at`

// CategoryPostgres is a PostgreSQL implementation of repository.CategoryRepository.
type CategoryPostgres struct {
	db *sql.DB
}

// NewCategoryPostgres creates a new CategoryPostgres repository.
func NewCategoryPostgres(db *sql.DB) *CategoryPostgres {
	return &CategoryPostgres{db: db}
}

var _ repository.CategoryRepository = (*CategoryPostgres)(nil)

func scanCategory(s rowScanner) (*model.Category, error) {
	var c model.Category
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Order, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new category row and returns the stored record.
func (r *CategoryPostgres) Create(ctx context.Context, c *model.Category) (*model.Category, error) {
	q := `
		INSERT INTO categories (id, name, slug, description, sort_order, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Slug, c.Description, c.Order, c.Active, c.CreatedAt, c.UpdatedAt,
	))
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// FindByID fetches a single category by its ID.
func (r *CategoryPostgres) FindByID(ctx context.Context, id string) (*model.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, id))
}

// FindBySlug fetches a single category by its slug.
func (r *CategoryPostgres) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE slug = $1`
	return scanCategory(r.db.QueryRowContext(ctx, q, slug))
}

// FindConflict looks for another category holding name or slug.
func (r *CategoryPostgres) FindConflict(ctx context.Context, name, slug, excludeID string) (*model.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM categories WHERE (name = $1 OR slug = $2)`
	params := []any{name, slug}
	if excludeID != "" {
		q += ` AND id <> $3`
		params = append(params, excludeID)
	}
	q += ` LIMIT 1`

	c, err := scanCategory(r.db.QueryRowContext(ctx, q, params...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// List returns categories ordered by display order, then name.
func (r *CategoryPostgres) List(ctx context.Context, f repository.CategoryFilter, pq repository.PageQuery) (*repository.PageResult[model.Category], error) {
	var (
		p     args
		conds []string
	)
	if f.Active != nil {
		conds = append(conds, "active = "+p.add(*f.Active))
	}
	if f.Search != "" {
		ph := p.add(likePattern(f.Search))
		conds = append(conds, "(name ILIKE "+ph+" OR description ILIKE "+ph+" OR slug ILIKE "+ph+")")
	}
	where := whereClause(conds)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`+where, p.values...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + categoryColumns + ` FROM categories` + where +
		` ORDER BY sort_order ASC, name ASC LIMIT ` + p.add(pq.Limit) + ` OFFSET ` + p.add(pq.Offset)
	rows, err := r.db.QueryContext(ctx, q, p.values...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Category]{Items: items, Total: total}, nil
}

// Update overwrites the editable columns and returns the stored record.
func (r *CategoryPostgres) Update(ctx context.Context, c *model.Category) (*model.Category, error) {
	q := `
		UPDATE categories SET name = $2, slug = $3, description = $4, sort_order = $5, active = $6, updated_at = $7
		WHERE id = $1
		RETURNING ` + categoryColumns
	out, err := scanCategory(r.db.QueryRowContext(ctx, q,
		c.ID, c.Name, c.Slug, c.Description, c.Order, c.Active, c.UpdatedAt,
	))
	if err != nil {
		return nil, translateError(err)
	}
	return out, nil
}

// Delete removes a category by ID.
func (r *CategoryPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return translateError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
