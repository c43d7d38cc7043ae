package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

func (c *Client) Roles(ctx context.Context) ([]domain.RolInfo, error) {
	var roles []domain.RolInfo
	if err := c.call(ctx, http.MethodGet, "/roles", nil, &roles, false); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *Client) UsuariosBySucursal(ctx context.Context, sucursalID int) ([]domain.Usuario, error) {
	var dtos []usuarioDTO
	path := fmt.Sprintf("/auth/usuarios/sucursal/%d", sucursalID)
	if err := c.call(ctx, http.MethodGet, path, nil, &dtos, false); err != nil {
		return nil, err
	}

	usuarios := make([]domain.Usuario, 0, len(dtos))
	for i := range dtos {
		usuarios = append(usuarios, dtos[i].toDomain())
	}
	return usuarios, nil
}

type updateRolRequest struct {
	RolID int `json:"rolId"`
}

func (c *Client) UpdateUsuarioRol(ctx context.Context, usuarioID, rolID int) error {
	path := fmt.Sprintf("/auth/usuarios/%d/rol", usuarioID)
	return c.call(ctx, http.MethodPut, path, updateRolRequest{RolID: rolID}, nil, false)
}
