package profile

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/domain/identity"
)

// Doctor maps to the doctors table. Exactly one per doctor account.
type Doctor struct {
	ID             uuid.UUID      `gorm:"type:text;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	User           *identity.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Telephone      string         `gorm:"not null" json:"telephone"`
	Specialization string         `gorm:"not null" json:"specialization"`
	Availability   string         `gorm:"not null" json:"availability"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
}

func (Doctor) TableName() string { return "doctors" }

// Patient maps to the patients table. Exactly one per patient account.
type Patient struct {
	ID        uuid.UUID      `gorm:"type:text;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:text;not null;uniqueIndex" json:"user_id"`
	User      *identity.User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Telephone string         `gorm:"not null" json:"telephone"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
}

func (Patient) TableName() string { return "patients" }

// DoctorListing is a doctor as shown in the booking form.
type DoctorListing struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Label          string    `json:"label"`
}

const defaultSpecialization = "General"

// Label renders "Name - Specialization", falling back to General.
func Label(name, specialization string) string {
	if specialization == "" {
		specialization = defaultSpecialization
	}
	return name + " - " + specialization
}

// Viewer is a caller resolved to their profile. ProfileID is the doctor or
// patient id and is uuid.Nil for admins.
type Viewer struct {
	Role      identity.Role
	UserID    uuid.UUID
	ProfileID uuid.UUID
}

func (v Viewer) IsAdmin() bool { return v.Role == identity.RoleAdmin }

// IsDoctor reports whether the viewer is the doctor with the given id.
func (v Viewer) IsDoctor(doctorID uuid.UUID) bool {
	return v.Role == identity.RoleDoctor && v.ProfileID == doctorID
}

// IsPatient reports whether the viewer is the patient with the given id.
func (v Viewer) IsPatient(patientID uuid.UUID) bool {
	return v.Role == identity.RolePatient && v.ProfileID == patientID
}
