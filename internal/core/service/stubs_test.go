package service

import (
	"context"
	"sync"
	"time"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub storage
// ---------------------------------------------------------------------------

type stubStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newStubStorage() *stubStorage {
	return &stubStorage{data: make(map[string]string)}
}

func (s *stubStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return value, nil
}

func (s *stubStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ports.ErrKeyNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *stubStorage) snapshot(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	return value, ok
}

// ---------------------------------------------------------------------------
// Configurable stub backend
// ---------------------------------------------------------------------------

// stubBackend delegates each Backend method to an optional function field
// and counts calls per method, so tests can both script behavior and assert
// how often an endpoint was hit.
type stubBackend struct {
	mu    sync.Mutex
	calls map[string]int

	loginFn              func(username, password string) (*ports.LoginResult, error)
	logoutFn             func() error
	refreshFn            func() (string, error)
	productosFn          func(sucursalID int) ([]domain.Producto, error)
	categoriasFn         func() ([]domain.Categoria, error)
	subcategoriasFn      func(categoriaID int) ([]domain.Subcategoria, error)
	createSubFn          func(sub domain.Subcategoria) (*domain.Subcategoria, error)
	updateSubFn          func(sub domain.Subcategoria) (*domain.Subcategoria, error)
	deleteSubFn          func(id int) error
	reporteGeneralFn     func(p domain.Periodo) (*domain.Reporte, error)
	reportePorSucursalFn func(p domain.Periodo) (map[int]*domain.Reporte, error)
	reporteKPIsFn        func(p domain.Periodo) (*domain.KPIs, error)
	reportePorFechaFn    func(p domain.Periodo) (*domain.Reporte, error)
	rolesFn              func() ([]domain.RolInfo, error)
	usuariosFn           func(sucursalID int) ([]domain.Usuario, error)
	updateRolFn          func(usuarioID, rolID int) error
}

func newStubBackend() *stubBackend {
	return &stubBackend{calls: make(map[string]int)}
}

func (b *stubBackend) record(method string) {
	b.mu.Lock()
	b.calls[method]++
	b.mu.Unlock()
}

func (b *stubBackend) callCount(method string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[method]
}

func (b *stubBackend) Login(_ context.Context, username, password string) (*ports.LoginResult, error) {
	b.record("login")
	if b.loginFn == nil {
		return nil, domain.ErrInvalidCredentials
	}
	return b.loginFn(username, password)
}

func (b *stubBackend) Logout(_ context.Context) error {
	b.record("logout")
	if b.logoutFn == nil {
		return nil
	}
	return b.logoutFn()
}

func (b *stubBackend) RefreshToken(_ context.Context) (string, error) {
	b.record("refresh")
	if b.refreshFn == nil {
		return "", domain.ErrNotAuthenticated
	}
	return b.refreshFn()
}

func (b *stubBackend) ProductosBySucursal(_ context.Context, sucursalID int) ([]domain.Producto, error) {
	b.record("productos")
	if b.productosFn == nil {
		return nil, nil
	}
	return b.productosFn(sucursalID)
}

func (b *stubBackend) Categorias(_ context.Context) ([]domain.Categoria, error) {
	b.record("categorias")
	if b.categoriasFn == nil {
		return nil, nil
	}
	return b.categoriasFn()
}

func (b *stubBackend) Subcategorias(_ context.Context, categoriaID int) ([]domain.Subcategoria, error) {
	b.record("subcategorias")
	if b.subcategoriasFn == nil {
		return nil, nil
	}
	return b.subcategoriasFn(categoriaID)
}

func (b *stubBackend) CreateSubcategoria(_ context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	b.record("createSubcategoria")
	if b.createSubFn == nil {
		created := sub
		created.ID = 1
		return &created, nil
	}
	return b.createSubFn(sub)
}

func (b *stubBackend) UpdateSubcategoria(_ context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	b.record("updateSubcategoria")
	if b.updateSubFn == nil {
		updated := sub
		return &updated, nil
	}
	return b.updateSubFn(sub)
}

func (b *stubBackend) DeleteSubcategoria(_ context.Context, id int) error {
	b.record("deleteSubcategoria")
	if b.deleteSubFn == nil {
		return nil
	}
	return b.deleteSubFn(id)
}

func (b *stubBackend) ReporteGeneral(_ context.Context, p domain.Periodo) (*domain.Reporte, error) {
	b.record("reporteGeneral")
	if b.reporteGeneralFn == nil {
		return &domain.Reporte{Periodo: p}, nil
	}
	return b.reporteGeneralFn(p)
}

func (b *stubBackend) ReportePorSucursal(_ context.Context, p domain.Periodo) (map[int]*domain.Reporte, error) {
	b.record("reportePorSucursal")
	if b.reportePorSucursalFn == nil {
		return map[int]*domain.Reporte{}, nil
	}
	return b.reportePorSucursalFn(p)
}

func (b *stubBackend) ReporteKPIs(_ context.Context, p domain.Periodo) (*domain.KPIs, error) {
	b.record("reporteKPIs")
	if b.reporteKPIsFn == nil {
		return &domain.KPIs{}, nil
	}
	return b.reporteKPIsFn(p)
}

func (b *stubBackend) ReportePorFecha(_ context.Context, p domain.Periodo) (*domain.Reporte, error) {
	b.record("reportePorFecha")
	if b.reportePorFechaFn == nil {
		return &domain.Reporte{Periodo: p}, nil
	}
	return b.reportePorFechaFn(p)
}

func (b *stubBackend) Roles(_ context.Context) ([]domain.RolInfo, error) {
	b.record("roles")
	if b.rolesFn == nil {
		return nil, nil
	}
	return b.rolesFn()
}

func (b *stubBackend) UsuariosBySucursal(_ context.Context, sucursalID int) ([]domain.Usuario, error) {
	b.record("usuarios")
	if b.usuariosFn == nil {
		return nil, nil
	}
	return b.usuariosFn(sucursalID)
}

func (b *stubBackend) UpdateUsuarioRol(_ context.Context, usuarioID, rolID int) error {
	b.record("updateRol")
	if b.updateRolFn == nil {
		return nil
	}
	return b.updateRolFn(usuarioID, rolID)
}

// ---------------------------------------------------------------------------
// Stub session (for report and admin service tests)
// ---------------------------------------------------------------------------

type stubSession struct {
	mu    sync.Mutex
	state ports.SessionState
}

func newStubSession(usuario *domain.Usuario, sucursal *domain.Sucursal, token string) *stubSession {
	return &stubSession{state: ports.SessionState{Usuario: usuario, Sucursal: sucursal, Token: token}}
}

func (s *stubSession) Login(context.Context, string, string) (ports.SessionState, error) {
	return s.State(), nil
}
func (s *stubSession) Logout(context.Context) {}

func (s *stubSession) RefreshToken(context.Context) error { return nil }

func (s *stubSession) ChangeSucursal(context.Context, domain.Sucursal) error { return nil }
func (s *stubSession) CheckAuth(context.Context) (ports.SessionState, error) {
	return s.State(), nil
}
func (s *stubSession) TokenExpiry() (time.Time, bool) { return time.Time{}, false }

func (s *stubSession) State() ports.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
