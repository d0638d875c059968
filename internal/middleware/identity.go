package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// IdentityKey is the echo context key holding models.Identity.
const IdentityKey = "identity"

// UserLookup loads the user behind a token.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// IdentityMiddleware resolves the JWT claims into the caller's identity.
// Suspended and banned accounts are refused.
func IdentityMiddleware(users UserLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(ClaimsKey).(*models.JwtCustomClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing credentials")
			}

			ctx := c.Request().Context()
			user, err := users.GetUserByID(ctx, claims.UserID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "Unknown user")
				}
				logger.FromContext(ctx).Error().Err(err).Msg("identity lookup failed")
				return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
			}
			if user.Status != models.StatusActive {
				return echo.NewHTTPError(http.StatusForbidden, "Account is "+user.Status)
			}

			c.Set(IdentityKey, models.Identity{UserID: user.ID, Role: user.Role, Status: user.Status})
			return next(c)
		}
	}
}

// AdminOnly rejects callers without the admin role.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := GetIdentity(c)
			if !ok || !id.IsAdmin() {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}
			return next(c)
		}
	}
}

// GetIdentity returns the identity set by IdentityMiddleware.
func GetIdentity(c echo.Context) (models.Identity, bool) {
	id, ok := c.Get(IdentityKey).(models.Identity)
	return id, ok
}
