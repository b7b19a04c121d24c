package notification

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/clinic/booking/internal/platform/db"
)

type repoGorm struct{ db *gorm.DB }

func NewRepoGorm(gdb *gorm.DB) Repository { return &repoGorm{db: gdb} }

func (r *repoGorm) Create(ctx context.Context, n *Notification) error {
	if err := db.Gorm(ctx, r.db).Omit("Doctor", "Patient", "Appointment").Create(n).Error; err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *repoGorm) List(ctx context.Context, f Filter, limit int) ([]*Notification, error) {
	q := db.Gorm(ctx, r.db).Model(&Notification{})
	if f.DoctorID != nil {
		q = q.Where("doctor_id = ?", *f.DoctorID)
	}
	if f.PatientID != nil {
		q = q.Where("patient_id = ?", *f.PatientID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var items []*Notification
	if err := q.Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
