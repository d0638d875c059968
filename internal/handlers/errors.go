package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/linkup/backend/internal/middleware"
	"github.com/anonto42/linkup/backend/internal/models"
	"github.com/anonto42/linkup/backend/internal/repositories"
	"github.com/anonto42/linkup/backend/pkg/logger"
	"github.com/labstack/echo/v4"
)

// storeError translates a repository error into the HTTP error returned to
// the client. Unexpected errors are logged and hidden behind a 500.
func storeError(c echo.Context, err error) error {
	var verr *repositories.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, verr.Error())
	case errors.Is(err, repositories.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request")
	case errors.Is(err, repositories.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	case errors.Is(err, repositories.ErrOwnership):
		return echo.NewHTTPError(http.StatusForbidden, "Not allowed")
	case errors.Is(err, repositories.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "Already exists")
	case errors.Is(err, repositories.ErrTransactionAborted):
		return echo.NewHTTPError(http.StatusConflict, "Request could not be applied")
	}

	logger.FromContext(c.Request().Context()).Error().Err(err).
		Str(logger.FieldPath, c.Path()).
		Msg("store operation failed")
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

// deleteError is storeError for deletes: a record owned by someone else is
// reported exactly like a missing one.
func deleteError(c echo.Context, err error) error {
	if errors.Is(err, repositories.ErrOwnership) {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}
	return storeError(c, err)
}

// currentUser returns the authenticated caller.
func currentUser(c echo.Context) (models.Identity, error) {
	id, ok := middleware.GetIdentity(c)
	if !ok || id.UserID == "" {
		return models.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id, nil
}

// pageFromQuery reads the limit and cursor query parameters.
func pageFromQuery(c echo.Context) (repositories.Page, error) {
	page := repositories.Page{Cursor: c.QueryParam("cursor")}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return page, echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		page.Limit = limit
	}
	return page, nil
}

// bindAndValidate binds the request body into req and runs e.Validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	return c.Validate(req)
}
