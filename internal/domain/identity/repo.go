package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository persists users. Implementations return ErrUserNotFound for
// missing rows and ErrDuplicateEmail when the unique email index rejects an
// insert.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}
