package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinic/booking/internal/platform/db"
)

type repoGorm struct{ db *gorm.DB }

func NewRepoGorm(gdb *gorm.DB) Repository { return &repoGorm{db: gdb} }

// viewRow is the flat shape of the listing join.
type viewRow struct {
	ID          uuid.UUID
	DoctorID    uuid.UUID
	PatientID   uuid.UUID
	DateTime    time.Time
	Notes       string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DoctorName  string
	PatientName string
}

func (r *repoGorm) Create(ctx context.Context, a *Appointment) error {
	if err := db.Gorm(ctx, r.db).Omit("Doctor", "Patient").Create(a).Error; err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *repoGorm) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var a Appointment
	err := db.Gorm(ctx, r.db).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

// GetForUpdate needs no lock on SQLite: the single connection already
// serializes transactions.
func (r *repoGorm) GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return r.GetByID(ctx, id)
}

func (r *repoGorm) Transition(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error) {
	res := db.Gorm(ctx, r.db).Model(&Appointment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": at})
	if res.Error != nil {
		return false, fmt.Errorf("update appointment status: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *repoGorm) List(ctx context.Context, f Filter) ([]*View, error) {
	q := db.Gorm(ctx, r.db).
		Table("appointments AS a").
		Select(`a.id, a.doctor_id, a.patient_id, a.date_time, a.notes, a.status, a.created_at, a.updated_at,
			du.name AS doctor_name, pu.name AS patient_name`).
		Joins("JOIN doctors d ON d.id = a.doctor_id").
		Joins("JOIN users du ON du.id = d.user_id").
		Joins("JOIN patients p ON p.id = a.patient_id").
		Joins("JOIN users pu ON pu.id = p.user_id")
	if f.DoctorID != nil {
		q = q.Where("a.doctor_id = ?", *f.DoctorID)
	}
	if f.PatientID != nil {
		q = q.Where("a.patient_id = ?", *f.PatientID)
	}

	var rows []viewRow
	if err := q.Order("a.date_time, a.id").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	items := make([]*View, 0, len(rows))
	for _, row := range rows {
		items = append(items, &View{
			Appointment: Appointment{
				ID:        row.ID,
				DoctorID:  row.DoctorID,
				PatientID: row.PatientID,
				DateTime:  row.DateTime,
				Notes:     row.Notes,
				Status:    row.Status,
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			},
			DoctorName:  row.DoctorName,
			PatientName: row.PatientName,
		})
	}
	return items, nil
}

func (r *repoGorm) Count(ctx context.Context) (int, error) {
	var n int64
	if err := db.Gorm(ctx, r.db).Model(&Appointment{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return int(n), nil
}
