package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func roleContext(role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if role != "" {
		req = req.WithContext(context.WithValue(req.Context(), UserRoleKey, role))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func ok(c echo.Context) error { return c.String(http.StatusOK, "ok") }

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name     string
		role     string
		required []string
		want     int
	}{
		{"matching role", "doctor", []string{"doctor"}, http.StatusOK},
		{"one of several", "patient", []string{"doctor", "patient"}, http.StatusOK},
		{"admin bypass", "admin", []string{"doctor"}, http.StatusOK},
		{"wrong role", "patient", []string{"doctor"}, http.StatusForbidden},
		{"no identity", "", []string{"doctor"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := roleContext(tt.role)
			err := RequireRole(tt.required...)(ok)(c)
			got := rec.Code
			if he, isHTTP := err.(*echo.HTTPError); isHTTP {
				got = he.Code
			}
			if got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestRequireExactRole_NoAdminBypass(t *testing.T) {
	c, _ := roleContext("admin")
	err := RequireExactRole("patient")(ok)(c)
	he, isHTTP := err.(*echo.HTTPError)
	if !isHTTP || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin on patient-only route, got %v", err)
	}

	c, rec := roleContext("patient")
	if err := RequireExactRole("patient")(ok)(c); err != nil || rec.Code != http.StatusOK {
		t.Errorf("expected patient to pass, err=%v code=%d", err, rec.Code)
	}
}
