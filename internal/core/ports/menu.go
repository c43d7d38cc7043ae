package ports

import (
	"context"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// CartView is a derived snapshot of the cart. Total and Count are recomputed
// from the lines on every read, never cached.
type CartView struct {
	Lineas []domain.LineaCarrito
	Total  float64
	Count  int
}

// GroupedCatalog maps categoria id to its products. Order preserves catalog
// order (the order groups were first seen), not category order.
type GroupedCatalog struct {
	CategoriaIDs []int
	Productos    map[int][]domain.Producto
}

// MenuService owns the branch-scoped catalog and the cart.
type MenuService interface {
	// LoadProducts replaces the catalog wholesale with the sucursal's
	// product list. On fetch failure the previous catalog is kept and the
	// store error is set.
	LoadProducts(ctx context.Context, sucursalID int) error
	// LoadCategories fetches the category catalog; failures are logged only.
	LoadCategories(ctx context.Context) error
	// LoadSubcategories fans out one fetch per loaded category.
	LoadSubcategories(ctx context.Context) error

	Productos() []domain.Producto
	Categorias() []domain.Categoria
	Subcategorias() map[int][]domain.Subcategoria
	Grouped() GroupedCatalog
	Search(text string) []domain.Producto
	FilterByCategory(categoriaID int) []domain.Producto
	Error() string

	AddToCart(productoID, cantidad int) error
	UpdateQuantity(productoID, cantidad int)
	ClearCart()
	Cart() CartView

	CreateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error)
	UpdateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error)
	DeleteSubcategoria(ctx context.Context, id int) error
}
