package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

func (c *Client) ProductosBySucursal(ctx context.Context, sucursalID int) ([]domain.Producto, error) {
	var productos []domain.Producto
	path := fmt.Sprintf("/sucursales/%d/productos", sucursalID)
	if err := c.call(ctx, http.MethodGet, path, nil, &productos, false); err != nil {
		return nil, err
	}
	return productos, nil
}

func (c *Client) Categorias(ctx context.Context) ([]domain.Categoria, error) {
	var categorias []domain.Categoria
	if err := c.call(ctx, http.MethodGet, "/categorias", nil, &categorias, false); err != nil {
		return nil, err
	}
	return categorias, nil
}

func (c *Client) Subcategorias(ctx context.Context, categoriaID int) ([]domain.Subcategoria, error) {
	var subs []domain.Subcategoria
	path := fmt.Sprintf("/categorias/%d/subcategorias", categoriaID)
	if err := c.call(ctx, http.MethodGet, path, nil, &subs, false); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *Client) CreateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	var created domain.Subcategoria
	path := fmt.Sprintf("/categorias/%d/subcategorias", sub.CategoriaID)
	if err := c.call(ctx, http.MethodPost, path, sub, &created, false); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateSubcategoria(ctx context.Context, sub domain.Subcategoria) (*domain.Subcategoria, error) {
	var updated domain.Subcategoria
	path := fmt.Sprintf("/subcategorias/%d", sub.ID)
	if err := c.call(ctx, http.MethodPut, path, sub, &updated, false); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteSubcategoria(ctx context.Context, id int) error {
	path := fmt.Sprintf("/subcategorias/%d", id)
	return c.call(ctx, http.MethodDelete, path, nil, nil, false)
}
