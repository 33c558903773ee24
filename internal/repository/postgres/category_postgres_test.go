package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gardencms/internal/model"
	"gardencms/internal/repository"
)

var categoryColumnNames = []string{"id", "name", "slug", "description", "sort_order", "active", "created_at", "updated_at"}

func TestCategoryPostgres_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryPostgres(db)
	now := time.Now().UTC()

	c := &model.Category{ID: "cat-1", Name: "Herbs", Slug: "herbs", Active: true, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery("INSERT INTO categories").
		WithArgs(c.ID, c.Name, c.Slug, c.Description, c.Order, c.Active, c.CreatedAt, c.UpdatedAt).
		WillReturnRows(sqlmock.NewRows(categoryColumnNames).
			AddRow(c.ID, c.Name, c.Slug, c.Description, c.Order, c.Active, now, now))

	out, err := repo.Create(context.Background(), c)

	require.NoError(t, err)
	assert.Equal(t, "herbs", out.Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryPostgres_FindConflict(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE (name = $1 OR slug = $2) LIMIT 1")).
			WithArgs("Herbs", "herbs").
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindConflict(ctx, "Herbs", "herbs", "")

		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("other category", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(regexp.QuoteMeta("WHERE (name = $1 OR slug = $2) AND id <> $3 LIMIT 1")).
			WithArgs("Herbs", "herbs", "cat-2").
			WillReturnRows(sqlmock.NewRows(categoryColumnNames).
				AddRow("cat-1", "Herbs", "herbs", "", 0, true, now, now))

		c, err := repo.FindConflict(ctx, "Herbs", "herbs", "cat-2")

		require.NoError(t, err)
		assert.Equal(t, "cat-1", c.ID)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryPostgres_List(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryPostgres(db)
	active := true
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE active = $1 AND (name ILIKE $2")).
		WithArgs(true, "%herb%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM categories WHERE (.+) ORDER BY sort_order ASC, name ASC LIMIT \\$3 OFFSET \\$4").
		WithArgs(true, "%herb%", 20, 20).
		WillReturnRows(sqlmock.NewRows(categoryColumnNames).AddRow("cat-1", "Herbs", "herbs", "", 0, true, now, now))

	res, err := repo.List(context.Background(),
		repository.CategoryFilter{Active: &active, Search: "herb"},
		repository.PageQuery{Limit: 20, Offset: 20})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryPostgres_Update(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryPostgres(db)
	now := time.Now()

	mock.ExpectQuery("UPDATE categories SET").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "categories_name_key"})

	out, err := repo.Update(context.Background(), &model.Category{ID: "cat-1", Name: "Herbs", UpdatedAt: now})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Contains(t, err.Error(), "categories_name_key")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCategoryPostgres_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCategoryPostgres(db)
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func()
		wantErr error
	}{
		{
			name: "deleted",
			setup: func() {
				mock.ExpectExec("DELETE FROM categories").WithArgs("cat-1").WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "missing",
			setup: func() {
				mock.ExpectExec("DELETE FROM categories").WithArgs("cat-1").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: sql.ErrNoRows,
		},
		{
			name: "referenced by articles",
			setup: func() {
				mock.ExpectExec("DELETE FROM categories").WithArgs("cat-1").
					WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "articles_primary_category_id_fkey"})
			},
			wantErr: repository.ErrInUse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			err := repo.Delete(ctx, "cat-1")
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
