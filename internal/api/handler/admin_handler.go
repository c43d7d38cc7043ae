package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type AdminHandler struct {
	admin ports.AdminService
}

func NewAdminHandler(admin ports.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) Roles(c echo.Context) error {
	roles, err := h.admin.Roles(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}

func (h *AdminHandler) UsuariosBySucursal(c echo.Context) error {
	sucursalID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be numeric")
	}

	usuarios, err := h.admin.UsuariosBySucursal(c.Request().Context(), sucursalID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usuarios)
}

type updateRolRequest struct {
	RolID int `json:"rolId" validate:"required,gt=0"`
}

func (h *AdminHandler) UpdateUsuarioRol(c echo.Context) error {
	usuarioID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be numeric")
	}

	var req updateRolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.admin.UpdateUsuarioRol(c.Request().Context(), usuarioID, req.RolID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
