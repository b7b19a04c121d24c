package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/booking/internal/platform/db"
)

func newGormRepo(t *testing.T) UserRepository {
	t.Helper()
	gdb, err := db.OpenSQLite(db.MemorySQLiteDSN(t.Name()), zerolog.Nop(), &User{})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewUserRepoGorm(gdb)
}

func newUser(email string, role Role) *User {
	return &User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: "$2a$04$hash",
		Role:         role,
		Name:         "Test",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepoGorm_CreateAndGet(t *testing.T) {
	repo := newGormRepo(t)
	ctx := context.Background()
	u := newUser("alice@example.com", RolePatient)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byID, err := repo.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Email != u.Email || byID.Role != RolePatient {
		t.Errorf("unexpected user %+v", byID)
	}
	if !byID.CreatedAt.Equal(u.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", u.CreatedAt, byID.CreatedAt)
	}

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("expected id %s, got %s", u.ID, byEmail.ID)
	}
}

func TestUserRepoGorm_NotFound(t *testing.T) {
	repo := newGormRepo(t)
	if _, err := repo.GetByID(context.Background(), uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepoGorm_DuplicateEmail(t *testing.T) {
	repo := newGormRepo(t)
	ctx := context.Background()
	if err := repo.Create(ctx, newUser("dup@example.com", RolePatient)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, newUser("dup@example.com", RoleDoctor)); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}
