package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// GetForUpdate reads the row and, where the store supports it, locks it
	// until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// Transition moves id from one status to another and reports whether a
	// row was changed. It changes nothing if the row is no longer in from.
	Transition(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error)
	// List returns views ordered by date_time, then id.
	List(ctx context.Context, f Filter) ([]*View, error)
	Count(ctx context.Context) (int, error)
}
