package logger

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// EchoMiddleware attaches a request-scoped logger carrying a request id and
// logs one line per completed request.
func EchoMiddleware(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			res := c.Response()

			reqID := req.Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			res.Header().Set(echo.HeaderXRequestID, reqID)

			child := base.With().
				Str(FieldRequestID, reqID).
				Str(FieldMethod, req.Method).
				Str(FieldPath, req.URL.Path).
				Str(FieldClientIP, c.RealIP()).
				Logger()
			c.SetRequest(req.WithContext(WithLogger(req.Context(), child)))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := res.Status
			event := child.Info()
			if status >= 500 {
				event = child.Error().Err(err)
			}
			event.Int(FieldStatus, status).
				Float64(FieldLatency, float64(time.Since(start).Milliseconds())).
				Msg("request completed")
			return nil
		}
	}
}
