package notification

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Emit appends a notification stamped with the current time.
func (s *Service) Emit(ctx context.Context, message string, to Recipients) (*Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}
	n := &Notification{
		ID:            uuid.Must(uuid.NewV7()),
		Message:       message,
		DoctorID:      to.DoctorID,
		PatientID:     to.PatientID,
		AppointmentID: to.AppointmentID,
		CreatedAt:     s.now().UTC().Truncate(time.Microsecond),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// ListFor returns the viewer's notifications, newest first. Admins see every
// row. limit <= 0 returns all of them.
func (s *Service) ListFor(ctx context.Context, viewer profile.Viewer, limit int) ([]*Notification, error) {
	var f Filter
	switch viewer.Role {
	case identity.RoleAdmin:
	case identity.RoleDoctor:
		id := viewer.ProfileID
		f.DoctorID = &id
	case identity.RolePatient:
		id := viewer.ProfileID
		f.PatientID = &id
	default:
		return nil, apperr.Forbidden("unknown role %q", viewer.Role)
	}
	items, err := s.repo.List(ctx, f, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Notification{}
	}
	return items, nil
}
