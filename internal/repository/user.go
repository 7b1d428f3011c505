package repository

import (
	"context"
	"time"

	"moviesmama/internal/domain"
)

// UserRepository defines persistence operations for User entities.
//
// Lookups return domain.ErrUserNotFound when nothing matches; Create returns
// domain.ErrUserAlreadyExists when the email is taken. Emails are expected to
// be normalized by the caller.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateProfile(ctx context.Context, id, name string, settings map[string]bool) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	Close(ctx context.Context) error
}
