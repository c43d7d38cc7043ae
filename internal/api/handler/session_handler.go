package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type SessionHandler struct {
	session ports.SessionService
}

func NewSessionHandler(session ports.SessionService) *SessionHandler {
	return &SessionHandler{session: session}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changeSucursalRequest struct {
	ID     int    `json:"id" validate:"required,gt=0"`
	Nombre string `json:"nombre"`
	Activa bool   `json:"activa"`
}

type sessionResponse struct {
	Usuario         *domain.Usuario  `json:"usuario,omitempty"`
	Sucursal        *domain.Sucursal `json:"sucursal,omitempty"`
	IsAuthenticated bool             `json:"isAuthenticated"`
	IsAdmin         bool             `json:"isAdmin"`
	Loading         bool             `json:"loading"`
	TokenExpiresAt  *time.Time       `json:"tokenExpiresAt,omitempty"`
}

func (h *SessionHandler) toResponse(state ports.SessionState) sessionResponse {
	resp := sessionResponse{
		Usuario:         state.Usuario,
		Sucursal:        state.Sucursal,
		IsAuthenticated: state.IsAuthenticated(),
		IsAdmin:         state.Usuario.IsAdmin(),
		Loading:         state.Loading,
	}
	if exp, ok := h.session.TokenExpiry(); ok {
		resp.TokenExpiresAt = &exp
	}
	return resp
}

// Login authenticates the terminal against the POS backend.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /session/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	state, err := h.session.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(state))
}

// Logout clears the session locally and, best effort, server-side.
func (h *SessionHandler) Logout(c echo.Context) error {
	h.session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}

// Refresh forces a token refresh; an unrecoverable failure logs the
// terminal out.
func (h *SessionHandler) Refresh(c echo.Context) error {
	if err := h.session.RefreshToken(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(h.session.State()))
}

// Get returns the current session snapshot.
func (h *SessionHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.toResponse(h.session.State()))
}

// ChangeSucursal switches the active sucursal, subject to the branch policy.
func (h *SessionHandler) ChangeSucursal(c echo.Context) error {
	var req changeSucursalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sucursal := domain.Sucursal{ID: req.ID, Nombre: req.Nombre, Activa: req.Activa}
	if err := h.session.ChangeSucursal(c.Request().Context(), sucursal); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.toResponse(h.session.State()))
}
