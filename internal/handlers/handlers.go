package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	db Pinger
}

// New creates the system handler. db may be nil.
func New(db Pinger) *Handler {
	return &Handler{db: db}
}

// Health returns application health status
// @Summary Health check
// @Description Returns the health status of the application
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(c echo.Context) error {
	resp := map[string]string{"status": "ok"}
	if h.db != nil {
		resp["database"] = "ok"
		if err := h.db.Ping(c.Request().Context()); err != nil {
			resp["database"] = "unavailable"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// detail writes the {"detail": msg} error body.
func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"detail": msg})
}
