package profile

import (
	"context"

	"github.com/google/uuid"
)

type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	// List returns doctors with their display names, oldest first.
	List(ctx context.Context) ([]*DoctorListing, error)
	Count(ctx context.Context) (int, error)
}

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error)
	Count(ctx context.Context) (int, error)
}
