package workflow

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	"github.com/clinic/booking/internal/domain/appointment"
	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/notification"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/db"
)

// Backend bundles the repositories of one storage driver with the matching
// transaction manager.
type Backend struct {
	Driver        string
	Tx            db.TxManager
	Users         identity.UserRepository
	Doctors       profile.DoctorRepository
	Patients      profile.PatientRepository
	Appointments  appointment.Repository
	Notifications notification.Repository
	Health        db.HealthCheck
}

// PostgresBackend wires the pgx repositories. The schema comes from the SQL
// migrations.
func PostgresBackend(pool *pgxpool.Pool) *Backend {
	return &Backend{
		Driver:        "postgres",
		Tx:            db.NewPgTxManager(pool),
		Users:         identity.NewUserRepoPG(pool),
		Doctors:       profile.NewDoctorRepoPG(pool),
		Patients:      profile.NewPatientRepoPG(pool),
		Appointments:  appointment.NewRepoPG(pool),
		Notifications: notification.NewRepoPG(pool),
		Health:        db.PgHealthCheck(pool),
	}
}

// SQLiteBackend wires the gorm repositories. The handle must have been opened
// with Models migrated.
func SQLiteBackend(gdb *gorm.DB) *Backend {
	return &Backend{
		Driver:        "sqlite",
		Tx:            db.NewGormTxManager(gdb),
		Users:         identity.NewUserRepoGorm(gdb),
		Doctors:       profile.NewDoctorRepoGorm(gdb),
		Patients:      profile.NewPatientRepoGorm(gdb),
		Appointments:  appointment.NewRepoGorm(gdb),
		Notifications: notification.NewRepoGorm(gdb),
		Health:        db.GormHealthCheck(gdb),
	}
}

// Models lists the gorm models in dependency order for AutoMigrate.
func Models() []interface{} {
	return []interface{}{
		&identity.User{},
		&profile.Doctor{},
		&profile.Patient{},
		&appointment.Appointment{},
		&notification.Notification{},
	}
}
