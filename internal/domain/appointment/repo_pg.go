package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/booking/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const apptCols = `id, doctor_id, patient_id, date_time, notes, status, created_at, updated_at`

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.DateTime, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan appointment: %w", err)
	}
	return &a, nil
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, date_time, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.DoctorID, a.PatientID, a.DateTime, a.Notes, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) GetForUpdate(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scanAppointment(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1 FOR UPDATE`, id))
}

func (r *repoPG) Transition(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error) {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE appointments SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, at)
	if err != nil {
		return false, fmt.Errorf("update appointment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) List(ctx context.Context, f Filter) ([]*View, error) {
	query := `
		SELECT a.id, a.doctor_id, a.patient_id, a.date_time, a.notes, a.status, a.created_at, a.updated_at,
			du.name, pu.name
		FROM appointments a
		JOIN doctors d ON d.id = a.doctor_id
		JOIN users du ON du.id = d.user_id
		JOIN patients p ON p.id = a.patient_id
		JOIN users pu ON pu.id = p.user_id
		WHERE 1=1`
	var args []interface{}
	idx := 1
	if f.DoctorID != nil {
		query += fmt.Sprintf(` AND a.doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	if f.PatientID != nil {
		query += fmt.Sprintf(` AND a.patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
	}
	query += ` ORDER BY a.date_time, a.id`

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var items []*View
	for rows.Next() {
		var v View
		if err := rows.Scan(&v.ID, &v.DoctorID, &v.PatientID, &v.DateTime, &v.Notes, &v.Status,
			&v.CreatedAt, &v.UpdatedAt, &v.DoctorName, &v.PatientName); err != nil {
			return nil, fmt.Errorf("scan appointment view: %w", err)
		}
		items = append(items, &v)
	}
	return items, rows.Err()
}

func (r *repoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}
