package notification

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/booking/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const notifCols = `id, message, doctor_id, patient_id, appointment_id, created_at`

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO notifications (id, message, doctor_id, patient_id, appointment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.Message, n.DoctorID, n.PatientID, n.AppointmentID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, limit int) ([]*Notification, error) {
	query := `SELECT ` + notifCols + ` FROM notifications WHERE 1=1`
	var args []interface{}
	idx := 1
	if f.DoctorID != nil {
		query += fmt.Sprintf(` AND doctor_id = $%d`, idx)
		args = append(args, *f.DoctorID)
		idx++
	}
	if f.PatientID != nil {
		query += fmt.Sprintf(` AND patient_id = $%d`, idx)
		args = append(args, *f.PatientID)
		idx++
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, idx)
		args = append(args, limit)
	}

	rows, err := db.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Message, &n.DoctorID, &n.PatientID, &n.AppointmentID, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}
