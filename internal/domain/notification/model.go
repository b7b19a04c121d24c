package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/appointment"
	"github.com/clinic/booking/internal/domain/profile"
)

// Notification maps to the notifications table. Rows are append-only.
type Notification struct {
	ID            uuid.UUID                `gorm:"type:text;primaryKey" json:"id"`
	Message       string                   `gorm:"not null" json:"message"`
	DoctorID      *uuid.UUID               `gorm:"type:text;index" json:"doctor_id,omitempty"`
	Doctor        *profile.Doctor          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PatientID     *uuid.UUID               `gorm:"type:text;index" json:"patient_id,omitempty"`
	Patient       *profile.Patient         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	AppointmentID *uuid.UUID               `gorm:"type:text" json:"appointment_id,omitempty"`
	Appointment   *appointment.Appointment `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt     time.Time                `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

// Recipients addresses a notification. Any subset may be set.
type Recipients struct {
	DoctorID      *uuid.UUID
	PatientID     *uuid.UUID
	AppointmentID *uuid.UUID
}

// Filter narrows a listing to one doctor's or one patient's rows. The zero
// value lists everything.
type Filter struct {
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
}
