package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// usuarioDTO matches the backend's user payload. The rol field arrives in
// three shapes depending on the endpoint: a plain string, a nested object
// with a nombre field, or a sibling rolNombre field. The fallback order in
// normalizeRol reproduces the backend's undocumented behavior and must not
// be reordered.
type usuarioDTO struct {
	ID         int             `json:"id"`
	Nombre     string          `json:"nombre"`
	Email      string          `json:"email"`
	Rol        json.RawMessage `json:"rol"`
	RolNombre  string          `json:"rolNombre"`
	SucursalID int             `json:"sucursalId"`
	Activo     *bool           `json:"activo"`
	Permisos   []string        `json:"permisos"`
}

func (d *usuarioDTO) toDomain() domain.Usuario {
	activo := true
	if d.Activo != nil {
		activo = *d.Activo
	}
	return domain.Usuario{
		ID:         d.ID,
		Nombre:     d.Nombre,
		Email:      d.Email,
		Rol:        normalizeRol(d.Rol, d.RolNombre),
		SucursalID: d.SucursalID,
		Activo:     activo,
		Permisos:   d.Permisos,
	}
}

// normalizeRol resolves the role name: first non-empty of the plain string
// form, the nested object's nombre, the sibling rolNombre, else the default.
func normalizeRol(raw json.RawMessage, sibling string) string {
	if len(raw) > 0 {
		var plain string
		if json.Unmarshal(raw, &plain) == nil && plain != "" {
			return plain
		}
		var nested struct {
			Nombre string `json:"nombre"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Nombre != "" {
			return nested.Nombre
		}
	}
	if sibling != "" {
		return sibling
	}
	return domain.RolDefault
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string           `json:"token"`
	Usuario  usuarioDTO       `json:"usuario"`
	Sucursal *domain.Sucursal `json:"sucursal"`
}

// Login authenticates with the backend. A 401 here is a final answer, not a
// refresh trigger.
func (c *Client) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	var resp loginResponse
	err := c.call(ctx, http.MethodPost, "/auth/login", loginRequest{Username: username, Password: password}, &resp, true)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if resp.Token == "" {
		return nil, fmt.Errorf("login: backend returned no token")
	}

	return &ports.LoginResult{
		Token:    resp.Token,
		Usuario:  resp.Usuario.toDomain(),
		Sucursal: resp.Sucursal,
	}, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", nil, nil, true)
}

// RefreshToken goes through the same single-flight path as the 401 handler,
// so an explicit refresh and an interceptor-triggered one can never race
// into two concurrent calls.
func (c *Client) RefreshToken(ctx context.Context) (string, error) {
	if err := c.awaitRefresh(ctx); err != nil {
		return "", err
	}
	token, err := c.storage.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		return "", fmt.Errorf("refresh token: read persisted token: %w", err)
	}
	return token, nil
}
