package notification

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/appointment"
)

// Listener turns appointment events into notifications.
type Listener struct {
	svc       *Service
	templates *Templates
}

func NewListener(svc *Service, templates *Templates) *Listener {
	if templates == nil {
		templates = NewTemplates()
	}
	return &Listener{svc: svc, templates: templates}
}

var _ appointment.Handler = (*Listener)(nil)

func ref(id uuid.UUID) *uuid.UUID { return &id }

func (l *Listener) emit(ctx context.Context, templateID string, data map[string]string, to Recipients) error {
	msg, err := l.templates.Render(templateID, data)
	if err != nil {
		return err
	}
	if _, err := l.svc.Emit(ctx, msg, to); err != nil {
		return fmt.Errorf("emit %s: %w", templateID, err)
	}
	return nil
}

// OnBooked notifies the doctor of a new booking.
func (l *Listener) OnBooked(ctx context.Context, e appointment.Booked) error {
	a := e.Appointment
	return l.emit(ctx, TemplateBooked,
		map[string]string{"patient_name": e.PatientName, "when": a.When()},
		Recipients{DoctorID: ref(a.DoctorID), PatientID: ref(a.PatientID), AppointmentID: ref(a.ID)})
}

// OnDecided notifies the patient of the doctor's decision.
func (l *Listener) OnDecided(ctx context.Context, e appointment.Decided) error {
	a := e.Appointment
	tpl := TemplateRejected
	if e.Status == appointment.StatusApproved {
		tpl = TemplateApproved
	}
	return l.emit(ctx, tpl,
		map[string]string{"when": a.When()},
		Recipients{PatientID: ref(a.PatientID), AppointmentID: ref(a.ID)})
}

// OnCancelled notifies the doctor that the patient withdrew.
func (l *Listener) OnCancelled(ctx context.Context, e appointment.Cancelled) error {
	a := e.Appointment
	return l.emit(ctx, TemplateCancelled,
		map[string]string{"patient_name": e.PatientName, "when": a.When()},
		Recipients{DoctorID: ref(a.DoctorID), AppointmentID: ref(a.ID)})
}
