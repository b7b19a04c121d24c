package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/platform/apperr"
	"github.com/clinic/booking/internal/platform/auth"
)

var (
	ErrDuplicateEmail     = apperr.New(apperr.ErrConflict, "email already registered")
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid credentials")
	ErrUserNotFound       = apperr.New(apperr.ErrNotFound, "user not found")
)

// RegisterInput is a self-service sign-up request.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
}

type adminInput struct {
	Name     string `validate:"required,max=100"`
	Email    string `validate:"required,email,max=254"`
	Password string `validate:"required,min=6,maxbytes=72"`
}

type Service struct {
	users      UserRepository
	bcryptCost int
	now        func() time.Time
}

func NewService(users UserRepository, bcryptCost int) *Service {
	return &Service{users: users, bcryptCost: bcryptCost, now: time.Now}
}

// NormalizeEmail trims and lower-cases an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates a sign-up request and creates the user. The matching
// profile is created by the caller in the same transaction.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = NormalizeEmail(in.Email)
	if err := apperr.Check(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in.Name, in.Email, in.Password, Role(in.Role))
}

// CreateAdmin creates an administrator. It is not reachable over HTTP.
func (s *Service) CreateAdmin(ctx context.Context, name, email, password string) (*User, error) {
	in := adminInput{Name: strings.TrimSpace(name), Email: NormalizeEmail(email), Password: password}
	if err := apperr.Check(in); err != nil {
		return nil, err
	}
	return s.create(ctx, in.Name, in.Email, in.Password, RoleAdmin)
}

func (s *Service) create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Name:         name,
		CreatedAt:    s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate checks an email/password pair. Every failure yields
// ErrInvalidCredentials, and an unknown email still costs one bcrypt
// comparison.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrUserNotFound) {
		auth.BurnPasswordCheck(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, NormalizeEmail(email))
}
