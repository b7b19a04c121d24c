package workflow

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinic/booking/internal/domain/appointment"
	"github.com/clinic/booking/internal/domain/identity"
	"github.com/clinic/booking/internal/domain/profile"
	"github.com/clinic/booking/internal/platform/apperr"
	"github.com/clinic/booking/internal/platform/auth"
	"github.com/clinic/booking/pkg/pagination"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
	log    zerolog.Logger
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, tokens: tokens, log: logger}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	// Public
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)

	// Any authenticated caller
	api.GET("/me", h.Me)
	api.GET("/dashboard", h.Dashboard)
	api.GET("/doctors", h.ListDoctors)
	api.GET("/appointments", h.ListAppointments)
	api.GET("/notifications", h.ListNotifications)

	// Doctor only
	doctorOnly := auth.RequireExactRole(string(identity.RoleDoctor))
	api.GET("/doctors/me", h.GetDoctorProfile, doctorOnly)
	api.PUT("/doctors/me", h.UpdateDoctorProfile, doctorOnly)

	// Patient only
	patientOnly := auth.RequireExactRole(string(identity.RolePatient))
	api.POST("/appointments", h.BookAppointment, patientOnly)
	api.POST("/appointments/:id/cancel", h.Cancel, patientOnly)

	// Doctor or admin; the service reports an unknown id before the role.
	api.POST("/appointments/:id/decision", h.Decide)
}

// fail maps a service error to an HTTP error, logging unexpected ones.
func (h *Handler) fail(c echo.Context, err error) error {
	he := apperr.HTTPError(err)
	if he.Code == http.StatusInternalServerError {
		h.log.Error().Err(err).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")
	}
	return he
}

func actorFrom(c echo.Context) (Actor, error) {
	ctx := c.Request().Context()
	id, err := uuid.Parse(auth.UserIDFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	role, err := identity.ParseRole(auth.RoleFromContext(ctx))
	if err != nil {
		return Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return Actor{UserID: id, Role: role}, nil
}

func pathID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

// -- Auth --

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *identity.User `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var in identity.RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if apperr.Status(err) == http.StatusUnauthorized {
			h.log.Warn().Str("ip", c.RealIP()).Msg("login failed")
		}
		return h.fail(c, err)
	}
	token, claims, err := h.tokens.Issue(u.ID.String(), string(u.Role), u.Name)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: u})
}

type meResponse struct {
	*identity.User
	ProfileID *uuid.UUID `json:"profile_id,omitempty"`
}

func (h *Handler) Me(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	u, v, err := h.svc.Me(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	resp := meResponse{User: u}
	if v.ProfileID != uuid.Nil {
		resp.ProfileID = &v.ProfileID
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Dashboard(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	d, err := h.svc.DashboardSummary(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// -- Doctors --

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.ListDoctors(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetDoctorProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctorProfile(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) UpdateDoctorProfile(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var in profile.DoctorProfileInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	d, err := h.svc.UpdateDoctorProfile(c.Request().Context(), actor, in)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}

// -- Appointments --

type bookRequest struct {
	DoctorID string `json:"doctor_id"`
	DateTime string `json:"date_time"`
	Notes    string `json:"notes"`
}

type decisionRequest struct {
	Action string `json:"action"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id must be a valid id")
	}
	at, err := appointment.ParseDateTime(req.DateTime)
	if err != nil {
		return h.fail(c, err)
	}
	appt, err := h.svc.BookAppointment(c.Request().Context(), actor, appointment.BookInput{
		DoctorID: doctorID,
		DateTime: at,
		Notes:    req.Notes,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, appt)
}

func (h *Handler) ListAppointments(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListAppointments(c.Request().Context(), actor)
	if err != nil {
		return h.fail(c, err)
	}
	p := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Page(items, p), len(items), p))
}

func (h *Handler) Decide(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	appt, err := h.svc.Decide(c.Request().Context(), actor, id, req.Action)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

func (h *Handler) Cancel(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}
	appt, err := h.svc.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, appt)
}

// -- Notifications --

func (h *Handler) ListNotifications(c echo.Context) error {
	actor, err := actorFrom(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListNotifications(c.Request().Context(), actor, 0)
	if err != nil {
		return h.fail(c, err)
	}
	p := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Page(items, p), len(items), p))
}
