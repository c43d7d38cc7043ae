package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// AdminService exposes user and role management, gated on the session
// principal holding the admin role.
type AdminService struct {
	backend ports.Backend
	session ports.SessionService
	logger  zerolog.Logger
}

func NewAdminService(backend ports.Backend, session ports.SessionService, logger zerolog.Logger) *AdminService {
	return &AdminService{backend: backend, session: session, logger: logger}
}

func (a *AdminService) requireAdmin() error {
	state := a.session.State()
	if !state.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}
	if !state.Usuario.IsAdmin() {
		return domain.ErrForbidden
	}
	return nil
}

func (a *AdminService) Roles(ctx context.Context) ([]domain.RolInfo, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	roles, err := a.backend.Roles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (a *AdminService) UsuariosBySucursal(ctx context.Context, sucursalID int) ([]domain.Usuario, error) {
	if err := a.requireAdmin(); err != nil {
		return nil, err
	}
	usuarios, err := a.backend.UsuariosBySucursal(ctx, sucursalID)
	if err != nil {
		return nil, fmt.Errorf("list usuarios: %w", err)
	}
	return usuarios, nil
}

func (a *AdminService) UpdateUsuarioRol(ctx context.Context, usuarioID, rolID int) error {
	if err := a.requireAdmin(); err != nil {
		return err
	}
	if err := a.backend.UpdateUsuarioRol(ctx, usuarioID, rolID); err != nil {
		return fmt.Errorf("update usuario rol: %w", err)
	}
	a.logger.Info().Int("usuario_id", usuarioID).Int("rol_id", rolID).Msg("usuario role updated")
	return nil
}
