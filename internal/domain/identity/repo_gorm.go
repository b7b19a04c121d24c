package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinic/booking/internal/platform/db"
)

type userRepoGorm struct{ db *gorm.DB }

func NewUserRepoGorm(gdb *gorm.DB) UserRepository { return &userRepoGorm{db: gdb} }

func (r *userRepoGorm) Create(ctx context.Context, u *User) error {
	err := db.Gorm(ctx, r.db).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepoGorm) first(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	err := db.Gorm(ctx, r.db).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepoGorm) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepoGorm) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.first(ctx, "email = ?", email)
}
