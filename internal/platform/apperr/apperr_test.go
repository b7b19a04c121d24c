package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{fmt.Errorf("%w: email taken", ErrConflict), http.StatusConflict},
		{ErrUnauthorized, http.StatusUnauthorized},
		{New(ErrUnauthorized, "invalid credentials"), http.StatusUnauthorized},
		{Forbidden("nope"), http.StatusForbidden},
		{fmt.Errorf("lookup: %w", ErrNotFound), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := Status(tt.err); got != tt.want {
			t.Errorf("Status(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestHTTPError_HidesInfrastructureErrors(t *testing.T) {
	he := HTTPError(errors.New("dial tcp 10.0.0.1:5432: connection refused"))
	if he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", he.Code)
	}
	if msg, _ := he.Message.(string); strings.Contains(msg, "dial tcp") {
		t.Errorf("expected generic message, got %q", msg)
	}
}

type signup struct {
	Name     string `validate:"required,max=5"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

func TestCheck(t *testing.T) {
	if err := Check(signup{Name: "Al", Email: "al@example.com", Password: "secret"}); err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}

	err := Check(signup{Name: "Alexander", Email: "nope", Password: "abc"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	for _, want := range []string{"name must be at most 5", "email must be a valid", "password must be at least 6"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
}

func TestNew_KeepsMessage(t *testing.T) {
	err := New(ErrConflict, "email already registered")
	if err.Error() != "email already registered" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !errors.Is(err, ErrConflict) {
		t.Error("expected errors.Is to match the class")
	}
	if he := HTTPError(err); he.Code != http.StatusConflict || he.Message != "email already registered" {
		t.Errorf("unexpected http error %+v", he)
	}
}

type booking struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Notes    string `json:"notes,omitempty" validate:"max=3"`
}

func TestCheck_UsesJSONNames(t *testing.T) {
	err := Check(booking{Notes: "long"})
	for _, want := range []string{"doctor_id is required", "notes must be at most 3"} {
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}
