package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/platform/apperr"
)

var (
	ErrDoctorNotFound  = apperr.New(apperr.ErrNotFound, "doctor not found")
	ErrPatientNotFound = apperr.New(apperr.ErrNotFound, "patient not found")
	ErrProfileExists   = apperr.New(apperr.ErrConflict, "profile already exists")
	// ErrNoProfile means a doctor or patient account has no profile row.
	ErrNoProfile = apperr.New(apperr.ErrNotFound, "no profile for this account")
)

// DoctorProfileInput is the editable part of a doctor profile.
type DoctorProfileInput struct {
	Telephone      string `json:"telephone" validate:"max=30"`
	Specialization string `json:"specialization" validate:"max=100"`
	Availability   string `json:"availability" validate:"max=255"`
}

// Counts summarises the directory for the admin dashboard.
type Counts struct {
	Doctors  int `json:"doctors"`
	Patients int `json:"patients"`
}

type Service struct {
	doctors  DoctorRepository
	patients PatientRepository
	now      func() time.Time
}

func NewService(doctors DoctorRepository, patients PatientRepository) *Service {
	return &Service{doctors: doctors, patients: patients, now: time.Now}
}

func (s *Service) stamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

// CreateFor creates the profile matching the user's role, empty apart from
// the telephone. Admins have no profile and get uuid.Nil.
func (s *Service) CreateFor(ctx context.Context, u *identity.User, telephone string) (uuid.UUID, error) {
	if len(telephone) > 30 {
		return uuid.Nil, apperr.Validation("telephone must be at most 30 characters")
	}
	switch u.Role {
	case identity.RoleDoctor:
		d := &Doctor{ID: uuid.Must(uuid.NewV7()), UserID: u.ID, Telephone: telephone, CreatedAt: s.stamp()}
		if err := s.doctors.Create(ctx, d); err != nil {
			return uuid.Nil, err
		}
		return d.ID, nil
	case identity.RolePatient:
		p := &Patient{ID: uuid.Must(uuid.NewV7()), UserID: u.ID, Telephone: telephone, CreatedAt: s.stamp()}
		if err := s.patients.Create(ctx, p); err != nil {
			return uuid.Nil, err
		}
		return p.ID, nil
	case identity.RoleAdmin:
		return uuid.Nil, nil
	default:
		return uuid.Nil, fmt.Errorf("create profile: unknown role %q", u.Role)
	}
}

// ResolveViewer looks up the caller's profile. A doctor or patient without
// one fails with ErrNoProfile.
func (s *Service) ResolveViewer(ctx context.Context, userID uuid.UUID, role identity.Role) (Viewer, error) {
	v := Viewer{Role: role, UserID: userID}
	switch role {
	case identity.RoleAdmin:
		return v, nil
	case identity.RoleDoctor:
		d, err := s.doctors.GetByUserID(ctx, userID)
		if errors.Is(err, ErrDoctorNotFound) {
			return Viewer{}, ErrNoProfile
		}
		if err != nil {
			return Viewer{}, err
		}
		v.ProfileID = d.ID
	case identity.RolePatient:
		p, err := s.patients.GetByUserID(ctx, userID)
		if errors.Is(err, ErrPatientNotFound) {
			return Viewer{}, ErrNoProfile
		}
		if err != nil {
			return Viewer{}, err
		}
		v.ProfileID = p.ID
	default:
		return Viewer{}, apperr.Forbidden("unknown role %q", role)
	}
	return v, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

// UpdateDoctorProfile overwrites the doctor's editable fields. Ownership is
// checked by the caller.
func (s *Service) UpdateDoctorProfile(ctx context.Context, doctorID uuid.UUID, in DoctorProfileInput) (*Doctor, error) {
	in.Telephone = strings.TrimSpace(in.Telephone)
	in.Specialization = strings.TrimSpace(in.Specialization)
	in.Availability = strings.TrimSpace(in.Availability)
	if err := apperr.Check(in); err != nil {
		return nil, err
	}

	d, err := s.doctors.GetByID(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	d.Telephone = in.Telephone
	d.Specialization = in.Specialization
	d.Availability = in.Availability
	if err := s.doctors.Update(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*DoctorListing, error) {
	return s.doctors.List(ctx)
}

func (s *Service) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	var err error
	if c.Doctors, err = s.doctors.Count(ctx); err != nil {
		return Counts{}, err
	}
	if c.Patients, err = s.patients.Count(ctx); err != nil {
		return Counts{}, err
	}
	return c, nil
}
