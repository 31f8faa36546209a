package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Check is a named readiness probe, e.g. a database ping.
type Check struct {
	Name string
	Fn   func(ctx context.Context) error
}

type Handler struct{ checks []Check }

func NewHandler(checks ...Check) *Handler { return &Handler{checks: checks} }

func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	failed := map[string]string{}
	for _, chk := range h.checks {
		if err := chk.Fn(ctx); err != nil {
			failed[chk.Name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	body := map[string]any{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	}
	if len(failed) > 0 {
		body["failed"] = failed
	}
	return c.JSON(code, body)
}
