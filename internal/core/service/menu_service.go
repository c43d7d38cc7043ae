package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// MenuService holds the branch-scoped catalog and the cart. The catalog is
// read-only and replaced wholesale on refetch; the cart is mutated in place
// by this store only.
type MenuService struct {
	backend ports.Backend
	logger  zerolog.Logger

	mu            sync.Mutex
	productos     []domain.Producto
	categorias    []domain.Categoria
	subcategorias map[int][]domain.Subcategoria
	lineas        []domain.LineaCarrito
	errMsg        string
}

func NewMenuService(backend ports.Backend, logger zerolog.Logger) *MenuService {
	return &MenuService{
		backend:       backend,
		logger:        logger,
		subcategorias: make(map[int][]domain.Subcategoria),
	}
}

// LoadProducts replaces the catalog with the sucursal's product list, sorted
// by display order. On failure the previous catalog is kept ("last known
// good") and the store error is set for the UI.
func (m *MenuService) LoadProducts(ctx context.Context, sucursalID int) error {
	productos, err := m.backend.ProductosBySucursal(ctx, sucursalID)
	if err != nil {
		m.logger.Error().Err(err).Int("sucursal_id", sucursalID).Msg("product load failed")
		m.mu.Lock()
		m.errMsg = "no se pudieron cargar los productos"
		m.mu.Unlock()
		return fmt.Errorf("load products: %w", err)
	}

	sort.SliceStable(productos, func(i, j int) bool { return productos[i].Orden < productos[j].Orden })

	m.mu.Lock()
	m.productos = productos
	m.errMsg = ""
	m.mu.Unlock()
	return nil
}

// LoadCategories fetches the category catalog. Failures keep the previous
// list and are logged only; categories are decorative enough that the UI
// never shows an error for them.
func (m *MenuService) LoadCategories(ctx context.Context) error {
	categorias, err := m.backend.Categorias(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("category load failed")
		return nil
	}

	sort.SliceStable(categorias, func(i, j int) bool { return categorias[i].Orden < categorias[j].Orden })

	m.mu.Lock()
	m.categorias = categorias
	m.mu.Unlock()
	return nil
}

// LoadSubcategories fans out one fetch per loaded category. Failed
// categories are logged and skipped; successful ones land in the map.
func (m *MenuService) LoadSubcategories(ctx context.Context) error {
	m.mu.Lock()
	categorias := make([]domain.Categoria, len(m.categorias))
	copy(categorias, m.categorias)
	m.mu.Unlock()

	type resultado struct {
		categoriaID int
		subs        []domain.Subcategoria
		err         error
	}

	results := make(chan resultado, len(categorias))
	var wg sync.WaitGroup
	for _, cat := range categorias {
		wg.Add(1)
		go func(cat domain.Categoria) {
			defer wg.Done()
			subs, err := m.backend.Subcategorias(ctx, cat.ID)
			results <- resultado{categoriaID: cat.ID, subs: subs, err: err}
		}(cat)
	}
	wg.Wait()
	close(results)

	m.mu.Lock()
	defer m.mu.Unlock()
	for r := range results {
		if r.err != nil {
			m.logger.Warn().Err(r.err).Int("categoria_id", r.categoriaID).Msg("subcategory load failed")
			continue
		}
		m.subcategorias[r.categoriaID] = r.subs
	}
	return nil
}

func (m *MenuService) Productos() []domain.Producto {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Producto, len(m.productos))
	copy(out, m.productos)
	return out
}

func (m *MenuService) Categorias() []domain.Categoria {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Categoria, len(m.categorias))
	copy(out, m.categorias)
	return out
}

func (m *MenuService) Subcategorias() map[int][]domain.Subcategoria {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[int][]domain.Subcategoria, len(m.subcategorias))
	for id, subs := range m.subcategorias {
		cloned := make([]domain.Subcategoria, len(subs))
		copy(cloned, subs)
		out[id] = cloned
	}
	return out
}

// Grouped partitions the catalog by categoria. Group order follows catalog
// order (first product seen per category), not category order.
func (m *MenuService) Grouped() ports.GroupedCatalog {
	m.mu.Lock()
	defer m.mu.Unlock()

	grouped := ports.GroupedCatalog{Productos: make(map[int][]domain.Producto)}
	for _, p := range m.productos {
		if _, seen := grouped.Productos[p.CategoriaID]; !seen {
			grouped.CategoriaIDs = append(grouped.CategoriaIDs, p.CategoriaID)
		}
		grouped.Productos[p.CategoriaID] = append(grouped.Productos[p.CategoriaID], p)
	}
	return grouped
}

// Search is a pure, case-insensitive substring match over nombre and
// descripcion.
func (m *MenuService) Search(text string) []domain.Producto {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(text)
	var out []domain.Producto
	for _, p := range m.productos {
		if strings.Contains(strings.ToLower(p.Nombre), needle) ||
			strings.Contains(strings.ToLower(p.Descripcion), needle) {
			out = append(out, p)
		}
	}
	return out
}

func (m *MenuService) FilterByCategory(categoriaID int) []domain.Producto {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.Producto
	for _, p := range m.productos {
		if p.CategoriaID == categoriaID {
			out = append(out, p)
		}
	}
	return out
}

func (m *MenuService) Error() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errMsg
}

// AddToCart merges into an existing line when the product is already in the
// cart, keeping the line's locked-in unit price; otherwise it appends a new
// line with the price snapshotted from the catalog.
func (m *MenuService) AddToCart(productoID, cantidad int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lineas {
		if m.lineas[i].Producto.ID == productoID {
			m.lineas[i].Cantidad += cantidad
			return nil
		}
	}

	for _, p := range m.productos {
		if p.ID == productoID {
			m.lineas = append(m.lineas, domain.LineaCarrito{
				Producto:       p,
				Cantidad:       cantidad,
				PrecioUnitario: p.Precio(),
			})
			return nil
		}
	}
	return domain.ErrProductoNotFound
}

// UpdateQuantity sets the quantity of an existing line. Zero or negative
// removes the line; a positive quantity for a product not in the cart is a
// no-op.
func (m *MenuService) UpdateQuantity(productoID, cantidad int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.lineas {
		if m.lineas[i].Producto.ID != productoID {
			continue
		}
		if cantidad <= 0 {
			m.lineas = append(m.lineas[:i], m.lineas[i+1:]...)
		} else {
			m.lineas[i].Cantidad = cantidad
		}
		return
	}
}

func (m *MenuService) ClearCart() {
	m.mu.Lock()
	m.lineas = nil
	m.mu.Unlock()
}

// Cart returns a derived snapshot; totals are recomputed from the lines on
// every call.
func (m *MenuService) Cart() ports.CartView {
	m.mu.Lock()
	defer m.mu.Unlock()

	lineas := make([]domain.LineaCarrito, len(m.lineas))
	copy(lineas, m.lineas)
	total, count := domain.CartTotals(lineas)
	return ports.CartView{Lineas: lineas, Total: total, Count: count}
}

func (m *MenuService) CreateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	created, err := m.backend.CreateSubcategoria(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("create subcategoria: %w", err)
	}
	m.mu.Lock()
	m.subcategorias[created.CategoriaID] = append(m.subcategorias[created.CategoriaID], *created)
	m.mu.Unlock()
	return created, nil
}

func (m *MenuService) UpdateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	updated, err := m.backend.UpdateSubcategoria(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("update subcategoria: %w", err)
	}
	m.mu.Lock()
	subs := m.subcategorias[updated.CategoriaID]
	for i := range subs {
		if subs[i].ID == updated.ID {
			subs[i] = *updated
			break
		}
	}
	m.mu.Unlock()
	return updated, nil
}

func (m *MenuService) DeleteSubcategoria(ctx context.Context, id int) error {
	if err := m.backend.DeleteSubcategoria(ctx, id); err != nil {
		return fmt.Errorf("delete subcategoria: %w", err)
	}
	m.mu.Lock()
	for categoriaID, subs := range m.subcategorias {
		for i := range subs {
			if subs[i].ID == id {
				m.subcategorias[categoriaID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
	return nil
}
