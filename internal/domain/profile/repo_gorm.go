package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinic/booking/internal/platform/db"
)

// =========== Doctor Repository ===========

type doctorRepoGorm struct{ db *gorm.DB }

func NewDoctorRepoGorm(gdb *gorm.DB) DoctorRepository { return &doctorRepoGorm{db: gdb} }

func (r *doctorRepoGorm) Create(ctx context.Context, d *Doctor) error {
	err := db.Gorm(ctx, r.db).Omit("User").Create(d).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepoGorm) first(ctx context.Context, query string, arg interface{}) (*Doctor, error) {
	var d Doctor
	err := db.Gorm(ctx, r.db).Where(query, arg).First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return &d, nil
}

func (r *doctorRepoGorm) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *doctorRepoGorm) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *doctorRepoGorm) Update(ctx context.Context, d *Doctor) error {
	res := db.Gorm(ctx, r.db).Model(&Doctor{}).Where("id = ?", d.ID).Updates(map[string]interface{}{
		"telephone":      d.Telephone,
		"specialization": d.Specialization,
		"availability":   d.Availability,
	})
	if res.Error != nil {
		return fmt.Errorf("update doctor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *doctorRepoGorm) List(ctx context.Context) ([]*DoctorListing, error) {
	var items []*DoctorListing
	err := db.Gorm(ctx, r.db).
		Table("doctors AS d").
		Select("d.id AS id, u.name AS name, d.specialization AS specialization").
		Joins("JOIN users u ON u.id = d.user_id").
		Order("d.created_at, d.id").
		Scan(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	for _, l := range items {
		l.Label = Label(l.Name, l.Specialization)
	}
	return items, nil
}

func (r *doctorRepoGorm) Count(ctx context.Context) (int, error) {
	var n int64
	if err := db.Gorm(ctx, r.db).Model(&Doctor{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count doctors: %w", err)
	}
	return int(n), nil
}

// =========== Patient Repository ===========

type patientRepoGorm struct{ db *gorm.DB }

func NewPatientRepoGorm(gdb *gorm.DB) PatientRepository { return &patientRepoGorm{db: gdb} }

func (r *patientRepoGorm) Create(ctx context.Context, p *Patient) error {
	err := db.Gorm(ctx, r.db).Omit("User").Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepoGorm) first(ctx context.Context, query string, arg interface{}) (*Patient, error) {
	var p Patient
	err := db.Gorm(ctx, r.db).Where(query, arg).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepoGorm) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *patientRepoGorm) Count(ctx context.Context) (int, error) {
	var n int64
	if err := db.Gorm(ctx, r.db).Model(&Patient{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return int(n), nil
}
