package repository

import (
	"context"
	"errors"
	"time"

	"github.com/adityapatel-00/auth-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when an insert violates email uniqueness.
	// Two concurrent signups with the same email must resolve to exactly
	// one success; the loser observes this error.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository is the credential store consulted by the core.
// Single-record updates (verification flip, last-login stamp) are atomic
// in the backing store; the core does no locking of its own.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	SetVerified(ctx context.Context, email string) error
	UpdateLastLogin(ctx context.Context, email string, at time.Time) error
}
