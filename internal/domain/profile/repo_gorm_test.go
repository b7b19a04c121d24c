package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/platform/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(db.MemorySQLiteDSN(t.Name()), zerolog.Nop(), &identity.User{}, &Doctor{}, &Patient{})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func insertUser(t *testing.T, gdb *gorm.DB, name string, role identity.Role) *identity.User {
	t.Helper()
	u := &identity.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	if err := identity.NewUserRepoGorm(gdb).Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestDoctorRepoGorm_ListJoinsNames(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewService(NewDoctorRepoGorm(gdb), NewPatientRepoGorm(gdb))
	ctx := context.Background()

	first, err := svc.CreateFor(ctx, insertUser(t, gdb, "Dr. John", identity.RoleDoctor), "")
	if err != nil {
		t.Fatalf("CreateFor: %v", err)
	}
	second, err := svc.CreateFor(ctx, insertUser(t, gdb, "Dr. Jane", identity.RoleDoctor), "")
	if err != nil {
		t.Fatalf("CreateFor: %v", err)
	}
	if _, err := svc.UpdateDoctorProfile(ctx, second, DoctorProfileInput{Specialization: "Cardiology"}); err != nil {
		t.Fatalf("UpdateDoctorProfile: %v", err)
	}

	list, err := svc.ListDoctors(ctx)
	if err != nil {
		t.Fatalf("ListDoctors: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 doctors, got %d", len(list))
	}
	if list[0].ID != first || list[0].Label != "Dr. John - General" {
		t.Errorf("unexpected first listing %+v", list[0])
	}
	if list[1].ID != second || list[1].Label != "Dr. Jane - Cardiology" {
		t.Errorf("unexpected second listing %+v", list[1])
	}
}

func TestDoctorRepoGorm_OneProfilePerUser(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewDoctorRepoGorm(gdb)
	u := insertUser(t, gdb, "Dr. John", identity.RoleDoctor)
	ctx := context.Background()

	mk := func() *Doctor {
		return &Doctor{ID: uuid.Must(uuid.NewV7()), UserID: u.ID, CreatedAt: time.Now().UTC()}
	}
	if err := repo.Create(ctx, mk()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, mk()); !errors.Is(err, ErrProfileExists) {
		t.Errorf("expected ErrProfileExists, got %v", err)
	}
}

func TestDoctorRepoGorm_RequiresUser(t *testing.T) {
	gdb := openTestDB(t)
	err := NewDoctorRepoGorm(gdb).Create(context.Background(), &Doctor{
		ID: uuid.New(), UserID: uuid.New(), CreatedAt: time.Now().UTC(),
	})
	if err == nil {
		t.Error("expected foreign key failure for unknown user")
	}
}

func TestPatientRepoGorm_GetAndCount(t *testing.T) {
	gdb := openTestDB(t)
	svc := NewService(NewDoctorRepoGorm(gdb), NewPatientRepoGorm(gdb))
	ctx := context.Background()
	u := insertUser(t, gdb, "Alice", identity.RolePatient)

	id, err := svc.CreateFor(ctx, u, "078000002")
	if err != nil {
		t.Fatalf("CreateFor: %v", err)
	}
	v, err := svc.ResolveViewer(ctx, u.ID, identity.RolePatient)
	if err != nil {
		t.Fatalf("ResolveViewer: %v", err)
	}
	if v.ProfileID != id {
		t.Errorf("expected profile %s, got %s", id, v.ProfileID)
	}
	p, err := NewPatientRepoGorm(gdb).GetByUserID(ctx, u.ID)
	if err != nil || p.Telephone != "078000002" {
		t.Errorf("unexpected patient %+v, %v", p, err)
	}
	if _, err := NewPatientRepoGorm(gdb).GetByUserID(ctx, uuid.New()); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}

	c, err := svc.Counts(ctx)
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if c.Patients != 1 || c.Doctors != 0 {
		t.Errorf("unexpected counts %+v", c)
	}
}
