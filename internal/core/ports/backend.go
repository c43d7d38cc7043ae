package ports

import (
	"context"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// LoginResult is the normalized outcome of POST /auth/login. Sucursal is nil
// when the backend response carried no sucursal object; the session layer
// synthesizes one from the user's assigned branch in that case.
type LoginResult struct {
	Token    string
	Usuario  domain.Usuario
	Sucursal *domain.Sucursal
}

// Backend is the remote POS REST API as consumed by this terminal. All
// pricing, inventory truth, and report aggregation live behind it; the
// terminal only reads and renders.
type Backend interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
	// RefreshToken exchanges the current stored token for a fresh one.
	RefreshToken(ctx context.Context) (string, error)

	ProductosBySucursal(ctx context.Context, sucursalID int) ([]domain.Producto, error)
	Categorias(ctx context.Context) ([]domain.Categoria, error)
	Subcategorias(ctx context.Context, categoriaID int) ([]domain.Subcategoria, error)
	CreateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error)
	UpdateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error)
	DeleteSubcategoria(ctx context.Context, id int) error

	ReporteGeneral(ctx context.Context, periodo domain.Periodo) (*domain.Reporte, error)
	ReportePorSucursal(ctx context.Context, periodo domain.Periodo) (map[int]*domain.Reporte, error)
	ReporteKPIs(ctx context.Context, periodo domain.Periodo) (*domain.KPIs, error)
	ReportePorFecha(ctx context.Context, periodo domain.Periodo) (*domain.Reporte, error)

	Roles(ctx context.Context) ([]domain.RolInfo, error)
	UsuariosBySucursal(ctx context.Context, sucursalID int) ([]domain.Usuario, error)
	UpdateUsuarioRol(ctx context.Context, usuarioID, rolID int) error
}
