package workflow

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/booking/internal/domain/appointment"
	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/notification"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/apperr"
	"github.com/clinic/booking/internal/platform/db"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID uuid.UUID
	Role   identity.Role
}

type Options struct {
	BcryptCost int
	// RecentNotifications is the dashboard notification window.
	RecentNotifications int
}

// Service composes the stores behind role checks and one transaction per
// write operation.
type Service struct {
	tx            db.TxManager
	users         *identity.Service
	profiles      *profile.Service
	appointments  *appointment.Service
	notifications *notification.Service
	events        *appointment.Dispatcher
	recent        int
	log           zerolog.Logger
}

func NewService(b *Backend, opts Options, logger zerolog.Logger) *Service {
	if opts.RecentNotifications <= 0 {
		opts.RecentNotifications = 10
	}
	notes := notification.NewService(b.Notifications)
	events := appointment.NewDispatcher(notification.NewListener(notes, nil))
	return &Service{
		tx:            b.Tx,
		users:         identity.NewService(b.Users, opts.BcryptCost),
		profiles:      profile.NewService(b.Doctors, b.Patients),
		appointments:  appointment.NewService(b.Appointments, events),
		notifications: notes,
		events:        events,
		recent:        opts.RecentNotifications,
		log:           logger.With().Str("component", "workflow").Logger(),
	}
}

// Subscribe adds an appointment event handler. Handlers run inside the
// publishing transaction.
func (s *Service) Subscribe(h appointment.Handler) {
	s.events.Subscribe(h)
}

func (s *Service) viewer(ctx context.Context, a Actor) (profile.Viewer, error) {
	return s.profiles.ResolveViewer(ctx, a.UserID, a.Role)
}

// -- Identity --

// Register creates a patient or doctor account together with its empty
// profile.
func (s *Service) Register(ctx context.Context, in identity.RegisterInput) (*identity.User, error) {
	var u *identity.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if u, err = s.users.Register(ctx, in); err != nil {
			return err
		}
		_, err = s.profiles.CreateFor(ctx, u, "")
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID.String()).Str("role", string(u.Role)).Msg("user registered")
	return u, nil
}

func (s *Service) Authenticate(ctx context.Context, email, password string) (*identity.User, error) {
	return s.users.Authenticate(ctx, email, password)
}

// Me returns the caller's account and, for doctors and patients, their
// profile id.
func (s *Service) Me(ctx context.Context, a Actor) (*identity.User, profile.Viewer, error) {
	u, err := s.users.Get(ctx, a.UserID)
	if err != nil {
		return nil, profile.Viewer{}, err
	}
	v, err := s.profiles.ResolveViewer(ctx, u.ID, u.Role)
	if err != nil {
		return nil, profile.Viewer{}, err
	}
	return u, v, nil
}

// -- Profiles --

func (s *Service) ListDoctors(ctx context.Context) ([]*profile.DoctorListing, error) {
	items, err := s.profiles.ListDoctors(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*profile.DoctorListing{}
	}
	return items, nil
}

func (s *Service) GetDoctorProfile(ctx context.Context, a Actor) (*profile.Doctor, error) {
	if a.Role != identity.RoleDoctor {
		return nil, apperr.Forbidden("only doctors have a doctor profile")
	}
	v, err := s.viewer(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.profiles.GetDoctor(ctx, v.ProfileID)
}

// UpdateDoctorProfile lets a doctor edit their own profile.
func (s *Service) UpdateDoctorProfile(ctx context.Context, a Actor, in profile.DoctorProfileInput) (*profile.Doctor, error) {
	if a.Role != identity.RoleDoctor {
		return nil, apperr.Forbidden("only doctors can edit a doctor profile")
	}
	var d *profile.Doctor
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.viewer(ctx, a)
		if err != nil {
			return err
		}
		d, err = s.profiles.UpdateDoctorProfile(ctx, v.ProfileID, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("doctor_id", d.ID.String()).Msg("doctor profile updated")
	return d, nil
}

// -- Appointments --

// BookAppointment creates a pending appointment for the calling patient and
// notifies the doctor.
func (s *Service) BookAppointment(ctx context.Context, a Actor, in appointment.BookInput) (*appointment.Appointment, error) {
	if a.Role != identity.RolePatient {
		return nil, apperr.Forbidden("only patients can book appointments")
	}
	var appt *appointment.Appointment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.viewer(ctx, a)
		if err != nil {
			return err
		}
		u, err := s.users.Get(ctx, a.UserID)
		if err != nil {
			return err
		}
		if in.DoctorID != uuid.Nil {
			if _, err := s.profiles.GetDoctor(ctx, in.DoctorID); errors.Is(err, profile.ErrDoctorNotFound) {
				return apperr.Validation("doctor %s does not exist", in.DoctorID)
			} else if err != nil {
				return err
			}
		}
		appt, err = s.appointments.Book(ctx, v.ProfileID, u.Name, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("doctor_id", appt.DoctorID.String()).
		Str("patient_id", appt.PatientID.String()).
		Msg("appointment booked")
	return appt, nil
}

// Decide applies a doctor's or admin's decision to a pending appointment and
// notifies the patient. An unknown id is reported before the caller's role.
func (s *Service) Decide(ctx context.Context, a Actor, id uuid.UUID, action string) (*appointment.Appointment, error) {
	if a.Role != identity.RoleDoctor && a.Role != identity.RoleAdmin {
		if _, err := s.appointments.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperr.Forbidden("only doctors and admins can decide appointments")
	}
	act, err := appointment.ParseAction(action)
	if err != nil {
		return nil, err
	}
	var appt *appointment.Appointment
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.viewer(ctx, a)
		if err != nil {
			return err
		}
		appt, err = s.appointments.Decide(ctx, id, v, act)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().
		Str("appointment_id", appt.ID.String()).
		Str("status", string(appt.Status)).
		Str("by", a.UserID.String()).
		Msg("appointment decided")
	return appt, nil
}

// Cancel withdraws the calling patient's pending appointment and notifies the
// doctor.
func (s *Service) Cancel(ctx context.Context, a Actor, id uuid.UUID) (*appointment.Appointment, error) {
	if a.Role != identity.RolePatient {
		return nil, apperr.Forbidden("only patients can cancel appointments")
	}
	var appt *appointment.Appointment
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		v, err := s.viewer(ctx, a)
		if err != nil {
			return err
		}
		u, err := s.users.Get(ctx, a.UserID)
		if err != nil {
			return err
		}
		appt, err = s.appointments.Cancel(ctx, id, v, u.Name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("appointment_id", appt.ID.String()).Msg("appointment cancelled")
	return appt, nil
}

// ListAppointments returns what the caller may see, earliest first.
func (s *Service) ListAppointments(ctx context.Context, a Actor) ([]*appointment.View, error) {
	v, err := s.viewer(ctx, a)
	if err != nil {
		return nil, err
	}
	items, err := s.appointments.List(ctx, v)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*appointment.View{}
	}
	return items, nil
}

// -- Notifications --

// ListNotifications returns the caller's notifications, newest first.
// limit <= 0 returns all of them.
func (s *Service) ListNotifications(ctx context.Context, a Actor, limit int) ([]*notification.Notification, error) {
	v, err := s.viewer(ctx, a)
	if err != nil {
		return nil, err
	}
	return s.notifications.ListFor(ctx, v, limit)
}

// -- Dashboard --

type Counts struct {
	Appointments int `json:"appointments"`
	Doctors      int `json:"doctors"`
	Patients     int `json:"patients"`
}

// Dashboard is the landing summary. Counts is set for admins, PendingCount
// for doctors and patients.
type Dashboard struct {
	Role                identity.Role                `json:"role"`
	Counts              *Counts                      `json:"counts,omitempty"`
	PendingCount        *int                         `json:"pending_count,omitempty"`
	Appointments        []*appointment.View          `json:"appointments"`
	RecentNotifications []*notification.Notification `json:"recent_notifications"`
}

func (s *Service) DashboardSummary(ctx context.Context, a Actor) (*Dashboard, error) {
	v, err := s.viewer(ctx, a)
	if err != nil {
		return nil, err
	}
	appts, err := s.appointments.List(ctx, v)
	if err != nil {
		return nil, err
	}
	if appts == nil {
		appts = []*appointment.View{}
	}
	recent, err := s.notifications.ListFor(ctx, v, s.recent)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{Role: a.Role, Appointments: appts, RecentNotifications: recent}
	if v.IsAdmin() {
		c, err := s.profiles.Counts(ctx)
		if err != nil {
			return nil, err
		}
		total, err := s.appointments.Count(ctx)
		if err != nil {
			return nil, err
		}
		d.Counts = &Counts{Appointments: total, Doctors: c.Doctors, Patients: c.Patients}
		return d, nil
	}

	pending := 0
	for _, appt := range appts {
		if appt.Status == appointment.StatusPending {
			pending++
		}
	}
	d.PendingCount = &pending
	return d, nil
}
