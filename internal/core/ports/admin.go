package ports

import (
	"context"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// AdminService exposes user and role management. Every call is gated on the
// session principal holding the admin role.
type AdminService interface {
	Roles(ctx context.Context) ([]domain.RolInfo, error)
	UsuariosBySucursal(ctx context.Context, sucursalID int) ([]domain.Usuario, error)
	UpdateUsuarioRol(ctx context.Context, usuarioID, rolID int) error
}
