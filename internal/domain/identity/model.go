package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/booking/internal/platform/apperr"
)

// Role is the closed set of account kinds.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", apperr.Validation("unknown role %q", s)
	}
	return r, nil
}

// User maps to the users table.
type User struct {
	ID           uuid.UUID `gorm:"type:text;primaryKey" json:"id"`
	Email        string    `gorm:"not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         Role      `gorm:"not null" json:"role"`
	Name         string    `gorm:"not null" json:"name"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) String() string {
	return fmt.Sprintf("%s <%s> (%s)", u.Name, u.Email, u.Role)
}
