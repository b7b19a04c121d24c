package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/apperr"
)

var (
	ErrNotFound          = apperr.New(apperr.ErrNotFound, "appointment not found")
	ErrInvalidTransition = apperr.New(apperr.ErrConflict, "appointment is no longer pending")
)

// BookInput is a patient's booking request.
type BookInput struct {
	DoctorID uuid.UUID `json:"doctor_id" validate:"required"`
	DateTime time.Time `json:"date_time" validate:"required"`
	Notes    string    `json:"notes" validate:"max=2000"`
}

type Service struct {
	repo   Repository
	events *Dispatcher
	now    func() time.Time
}

func NewService(repo Repository, events *Dispatcher) *Service {
	if events == nil {
		events = NewDispatcher()
	}
	return &Service{repo: repo, events: events, now: time.Now}
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// Book creates a pending appointment for the patient and publishes Booked.
// The doctor's existence is checked by the caller.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, patientName string, in BookInput) (*Appointment, error) {
	if err := apperr.Check(in); err != nil {
		return nil, err
	}

	now := s.stamp()
	a := &Appointment{
		ID:        uuid.Must(uuid.NewV7()),
		DoctorID:  in.DoctorID,
		PatientID: patientID,
		DateTime:  in.DateTime.UTC().Truncate(time.Microsecond),
		Notes:     in.Notes,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	if err := s.events.booked(ctx, Booked{Appointment: a, PatientName: patientName}); err != nil {
		return nil, err
	}
	return a, nil
}

// Decide approves or rejects a pending appointment. Only an admin or the
// doctor the appointment belongs to may decide.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, viewer profile.Viewer, action Action) (*Appointment, error) {
	if action != ActionApprove && action != ActionReject {
		return nil, apperr.Validation("action must be one of [approve reject]")
	}
	a, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !viewer.IsDoctor(a.DoctorID) {
		return nil, apperr.Forbidden("only the assigned doctor or an admin can decide this appointment")
	}
	if err := s.transition(ctx, a, action.Target()); err != nil {
		return nil, err
	}
	if err := s.events.decided(ctx, Decided{Appointment: a, Status: a.Status}); err != nil {
		return nil, err
	}
	return a, nil
}

// Cancel withdraws a pending appointment on behalf of the patient who
// booked it.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, viewer profile.Viewer, patientName string) (*Appointment, error) {
	a, err := s.repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsPatient(a.PatientID) {
		return nil, apperr.Forbidden("only the patient who booked this appointment can cancel it")
	}
	if err := s.transition(ctx, a, StatusCancelled); err != nil {
		return nil, err
	}
	if err := s.events.cancelled(ctx, Cancelled{Appointment: a, PatientName: patientName}); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) transition(ctx context.Context, a *Appointment, to Status) error {
	if a.Status.Terminal() {
		return ErrInvalidTransition
	}
	now := s.stamp()
	ok, err := s.repo.Transition(ctx, a.ID, StatusPending, to, now)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidTransition
	}
	a.Status = to
	a.UpdatedAt = now
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns the appointments visible to the viewer, earliest first.
func (s *Service) List(ctx context.Context, viewer profile.Viewer) ([]*View, error) {
	return s.repo.List(ctx, FilterFor(viewer))
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
