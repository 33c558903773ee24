package repository

import (
	"context"
	"time"

	"gardencms/internal/model"
)

// UserRepository defines data access for user accounts.
type UserRepository interface {
	// Create stores u. PasswordHash must already be hashed.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByEmail returns sql.ErrNoRows when missing.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByID returns sql.ErrNoRows when missing.
	FindByID(ctx context.Context, id string) (*model.User, error)

	TouchLastAccess(ctx context.Context, id string, at time.Time) error
}
