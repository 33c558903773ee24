package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"gardencms/internal/auth"
	"gardencms/internal/logger"
	"gardencms/internal/model"
	"gardencms/internal/repository"
)

var errInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

// LoginInput carries the credentials posted to the login endpoint.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	User      *model.User `json:"user"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// AdminSeed describes the administrator created at startup.
type AdminSeed struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	GenerateToken(u *model.User) (string, time.Time, error)
	ValidateToken(token string) (*auth.Claims, error)
}

// AuthService defines the authentication use cases.
type AuthService interface {
	// Login never reveals whether the email, the password or the account
	// state was wrong.
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)

	// Profile re-validates token and returns its active user.
	Profile(ctx context.Context, token string) (*model.User, error)

	// EnsureAdmin creates the seed administrator unless the email exists.
	// It reports whether a user was created.
	EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     TokenIssuer
	bcryptCost int
	log        logger.Logger
	now        func() time.Time
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, bcryptCost int, log logger.Logger) AuthService {
	return &authService{users: users, tokens: tokens, bcryptCost: bcryptCost, log: log, now: time.Now}
}

func (s *authService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			auth.BurnPasswordCheck(in.Password)
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, in.Password) || !u.Active {
		s.log.Warn("login rejected", logger.String("user_id", u.ID))
		return nil, errInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.TouchLastAccess(ctx, u.ID, now); err != nil {
		return nil, fmt.Errorf("update last access: %w", err)
	}
	u.LastAccessAt = &now

	token, expiresAt, err := s.tokens.GenerateToken(u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *authService) Profile(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	u, err := s.users.FindByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !u.Active {
		return nil, fmt.Errorf("%w: account is disabled", ErrUnauthorized)
	}
	return u, nil
}

func (s *authService) EnsureAdmin(ctx context.Context, seed AdminSeed) (bool, error) {
	if seed.Email == "" || seed.Password == "" {
		return false, nil
	}
	_, err := s.users.FindByEmail(ctx, seed.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("find admin: %w", err)
	}

	hash, err := auth.HashPassword(seed.Password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	now := s.now().UTC()
	_, err = s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(seed.Email),
		PasswordHash: hash,
		FirstName:    seed.FirstName,
		LastName:     seed.LastName,
		Role:         model.RoleAdmin,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return false, nil
		}
		return false, fmt.Errorf("create admin: %w", err)
	}
	s.log.Info("admin user created", logger.String("email", seed.Email))
	return true, nil
}
