package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// TerminalHandler exposes the cashier lock screen operations.
type TerminalHandler struct {
	lock ports.LockService
}

func NewTerminalHandler(lock ports.LockService) *TerminalHandler {
	return &TerminalHandler{lock: lock}
}

type pinRequest struct {
	Pin string `json:"pin" validate:"required,numeric,min=4,max=8"`
}

func (h *TerminalHandler) SetPin(c echo.Context) error {
	var req pinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.lock.SetPin(c.Request().Context(), req.Pin); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TerminalHandler) Lock(c echo.Context) error {
	if err := h.lock.Lock(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"locked": true})
}

func (h *TerminalHandler) Unlock(c echo.Context) error {
	var req pinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.lock.Unlock(c.Request().Context(), req.Pin); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"locked": false})
}

func (h *TerminalHandler) Estado(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"locked": h.lock.IsLocked()})
}
