package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

type revokeUserRequest struct {
	UserID string `json:"user_id"`
}

// RegisterRevocationRoutes registers logout for every caller and bulk
// revocation for admins.
func RegisterRevocationRoutes(g *echo.Group, store RevocationStore, logger zerolog.Logger) {
	g.POST("/auth/logout", handleLogout(store, logger))
	g.POST("/auth/revoke-user", handleRevokeUser(store, logger), RequireRole(RoleAdmin))
}

func handleLogout(store RevocationStore, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := ClaimsFromContext(c.Request().Context())
		if claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
		}
		expiresAt := time.Now().Add(time.Hour)
		if claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		if err := store.Revoke(c.Request().Context(), claims.ID, expiresAt); err != nil {
			logger.Error().Err(err).Str("user_id", claims.Subject).Msg("logout failed")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "logout failed")
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func handleRevokeUser(store RevocationStore, logger zerolog.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req revokeUserRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if req.UserID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
		}
		if err := store.RevokeUser(c.Request().Context(), req.UserID, time.Now()); err != nil {
			logger.Error().Err(err).Str("user_id", req.UserID).Msg("revoke user failed")
			return echo.NewHTTPError(http.StatusServiceUnavailable, "revocation failed")
		}
		logger.Info().
			Str("user_id", req.UserID).
			Str("by", UserIDFromContext(c.Request().Context())).
			Msg("user tokens revoked")
		return c.NoContent(http.StatusNoContent)
	}
}
