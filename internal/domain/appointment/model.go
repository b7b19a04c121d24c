package appointment

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/apperr"
)

// Status is the appointment lifecycle state. Only pending has successors.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

func (s Status) Terminal() bool { return s != StatusPending }

// Action is a doctor's decision on a pending appointment.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject:
		return a, nil
	}
	return "", apperr.Validation("action must be one of [approve reject]")
}

// Target is the status an action moves a pending appointment to.
func (a Action) Target() Status {
	if a == ActionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Appointment maps to the appointments table.
type Appointment struct {
	ID        uuid.UUID        `gorm:"type:text;primaryKey" json:"id"`
	DoctorID  uuid.UUID        `gorm:"type:text;not null;index" json:"doctor_id"`
	Doctor    *profile.Doctor  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PatientID uuid.UUID        `gorm:"type:text;not null;index" json:"patient_id"`
	Patient   *profile.Patient `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	DateTime  time.Time        `gorm:"not null;index" json:"date_time"`
	Notes     string           `gorm:"not null" json:"notes"`
	Status    Status           `gorm:"not null;index" json:"status"`
	CreatedAt time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time        `gorm:"not null" json:"updated_at"`
}

func (Appointment) TableName() string { return "appointments" }

// When renders the appointment time the way messages show it.
func (a *Appointment) When() string {
	return a.DateTime.Format(DisplayLayout)
}

// View is an appointment with the display names of both parties.
type View struct {
	Appointment
	DoctorName  string `json:"doctor_name"`
	PatientName string `json:"patient_name"`
}

// Filter narrows a listing to one doctor or one patient. The zero value
// lists everything.
type Filter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}

// FilterFor scopes a listing to what the viewer may see.
func FilterFor(v profile.Viewer) Filter {
	switch {
	case v.IsAdmin():
		return Filter{}
	case v.Role == identity.RoleDoctor:
		id := v.ProfileID
		return Filter{DoctorID: &id}
	default:
		id := v.ProfileID
		return Filter{PatientID: &id}
	}
}

const (
	// DisplayLayout is the minute-precision layout used in messages and
	// accepted on input.
	DisplayLayout = "2006-01-02 15:04"
)

// ParseDateTime accepts RFC 3339 or "YYYY-MM-DD HH:MM" (read as UTC).
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Validation("date_time is required")
	}
	for _, layout := range []string{time.RFC3339, DisplayLayout, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperr.Validation("date_time must be RFC 3339 or YYYY-MM-DD HH:MM")
}
