package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinic/booking/internal/domain/appointment"
	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/db"
)

func TestRepoGorm_NewestFirstWithLimit(t *testing.T) {
	gdb, err := db.OpenSQLite(db.MemorySQLiteDSN(t.Name()), zerolog.Nop(),
		&identity.User{}, &profile.Doctor{}, &profile.Patient{}, &appointment.Appointment{}, &Notification{})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	ctx := context.Background()

	users := identity.NewService(identity.NewUserRepoGorm(gdb), 4)
	profiles := profile.NewService(profile.NewDoctorRepoGorm(gdb), profile.NewPatientRepoGorm(gdb))
	u, err := users.Register(ctx, identity.RegisterInput{Name: "Dr. John", Email: "dr1@clinic.local", Password: "password", Role: "doctor"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	docID, err := profiles.CreateFor(ctx, u, "")
	if err != nil {
		t.Fatalf("CreateFor: %v", err)
	}

	svc := NewService(NewRepoGorm(gdb))
	base := time.Date(2030, 1, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return at }
		if _, err := svc.Emit(ctx, "note "+at.Format("15:04"), Recipients{DoctorID: &docID}); err != nil {
			t.Fatalf("Emit: %v", err)
		}
	}

	v := profile.Viewer{Role: identity.RoleDoctor, UserID: u.ID, ProfileID: docID}
	recent, err := svc.ListFor(ctx, v, 10)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(recent))
	}
	if recent[0].Message != "note 09:11" || recent[9].Message != "note 09:02" {
		t.Errorf("unexpected window %q .. %q", recent[0].Message, recent[9].Message)
	}

	all, err := svc.ListFor(ctx, v, 0)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(all) != 12 {
		t.Errorf("expected 12 rows, got %d", len(all))
	}

	other := profile.Viewer{Role: identity.RolePatient, UserID: uuid.New(), ProfileID: uuid.New()}
	none, err := svc.ListFor(ctx, other, 0)
	if err != nil {
		t.Fatalf("ListFor: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("expected nothing for an unrelated patient, got %d", len(none))
	}
}
