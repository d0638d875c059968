package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and database health
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthCheck answers 200 when the database responds and 503 otherwise
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	status := http.StatusOK
	body := map[string]string{"status": "healthy", "service": "linkup-api", "database": "up"}
	if h.db != nil {
		if err := h.db.Ping(c.Request().Context()); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "down"
		}
	}
	return c.JSON(status, body)
}
