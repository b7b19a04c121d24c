package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/booking/internal/platform/db"
)

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, user_id, telephone, specialization, availability, created_at`

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.UserID, &d.Telephone, &d.Specialization, &d.Availability, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan doctor: %w", err)
	}
	return &d, nil
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO doctors (id, user_id, telephone, specialization, availability, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.UserID, d.Telephone, d.Specialization, d.Availability, d.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE id = $1`, id))
}

func (r *doctorRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Doctor, error) {
	return scanDoctor(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctors WHERE user_id = $1`, userID))
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	tag, err := db.Conn(ctx, r.pool).Exec(ctx, `
		UPDATE doctors SET telephone = $2, specialization = $3, availability = $4
		WHERE id = $1`,
		d.ID, d.Telephone, d.Specialization, d.Availability)
	if err != nil {
		return fmt.Errorf("update doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*DoctorListing, error) {
	rows, err := db.Conn(ctx, r.pool).Query(ctx, `
		SELECT d.id, u.name, d.specialization
		FROM doctors d JOIN users u ON u.id = d.user_id
		ORDER BY d.created_at, d.id`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	var items []*DoctorListing
	for rows.Next() {
		var l DoctorListing
		if err := rows.Scan(&l.ID, &l.Name, &l.Specialization); err != nil {
			return nil, fmt.Errorf("scan doctor listing: %w", err)
		}
		l.Label = Label(l.Name, l.Specialization)
		items = append(items, &l)
	}
	return items, rows.Err()
}

func (r *doctorRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count doctors: %w", err)
	}
	return n, nil
}

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, user_id, telephone, created_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.UserID, &p.Telephone, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	_, err := db.Conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO patients (id, user_id, telephone, created_at)
		VALUES ($1, $2, $3, $4)`,
		p.ID, p.UserID, p.Telephone, p.CreatedAt)
	if db.IsUniqueViolation(err) {
		return ErrProfileExists
	}
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *patientRepoPG) GetByUserID(ctx context.Context, userID uuid.UUID) (*Patient, error) {
	return scanPatient(db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE user_id = $1`, userID))
}

func (r *patientRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.Conn(ctx, r.pool).QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count patients: %w", err)
	}
	return n, nil
}
