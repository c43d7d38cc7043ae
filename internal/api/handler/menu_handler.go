package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/api/metrics"
	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type MenuHandler struct {
	menu    ports.MenuService
	session ports.SessionService
}

func NewMenuHandler(menu ports.MenuService, session ports.SessionService) *MenuHandler {
	return &MenuHandler{menu: menu, session: session}
}

// Refresh reloads the catalog for the session's current sucursal: products,
// categories, and the per-category subcategory fan-out.
func (h *MenuHandler) Refresh(c echo.Context) error {
	state := h.session.State()
	if !state.IsAuthenticated() || state.Sucursal == nil {
		return domain.ErrNotAuthenticated
	}

	ctx := c.Request().Context()
	if err := h.menu.LoadProducts(ctx, state.Sucursal.ID); err != nil {
		return err
	}
	_ = h.menu.LoadCategories(ctx)
	_ = h.menu.LoadSubcategories(ctx)

	return c.JSON(http.StatusOK, map[string]int{"productos": len(h.menu.Productos())})
}

type productListResponse struct {
	Productos []domain.Producto `json:"productos"`
	Error     string            `json:"error,omitempty"`
}

// Productos lists the catalog, optionally filtered with ?buscar= or
// ?categoria=.
func (h *MenuHandler) Productos(c echo.Context) error {
	if buscar := c.QueryParam("buscar"); buscar != "" {
		return c.JSON(http.StatusOK, productListResponse{Productos: h.menu.Search(buscar), Error: h.menu.Error()})
	}
	if categoria := c.QueryParam("categoria"); categoria != "" {
		id, err := strconv.Atoi(categoria)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "categoria must be numeric")
		}
		return c.JSON(http.StatusOK, productListResponse{Productos: h.menu.FilterByCategory(id), Error: h.menu.Error()})
	}
	return c.JSON(http.StatusOK, productListResponse{Productos: h.menu.Productos(), Error: h.menu.Error()})
}

func (h *MenuHandler) Categorias(c echo.Context) error {
	return c.JSON(http.StatusOK, h.menu.Categorias())
}

func (h *MenuHandler) Subcategorias(c echo.Context) error {
	return c.JSON(http.StatusOK, h.menu.Subcategorias())
}

type groupedResponse struct {
	Categorias []int                     `json:"categorias"`
	Productos  map[int][]domain.Producto `json:"productos"`
}

// Agrupado returns the catalog grouped by categoria, in catalog order.
func (h *MenuHandler) Agrupado(c echo.Context) error {
	grouped := h.menu.Grouped()
	return c.JSON(http.StatusOK, groupedResponse{Categorias: grouped.CategoriaIDs, Productos: grouped.Productos})
}

type subcategoriaRequest struct {
	CategoriaID int    `json:"categoriaId" validate:"required,gt=0"`
	Nombre      string `json:"nombre"      validate:"required"`
	Orden       int    `json:"orden"`
	Activa      bool   `json:"activa"`
}

func (h *MenuHandler) CreateSubcategoria(c echo.Context) error {
	var req subcategoriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub := domain.Subcategoria{CategoriaID: req.CategoriaID, Nombre: req.Nombre, Orden: req.Orden, Activa: req.Activa}
	created, err := h.menu.CreateSubcategoria(c.Request().Context(), sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *MenuHandler) UpdateSubcategoria(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be numeric")
	}

	var req subcategoriaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sub := domain.Subcategoria{ID: id, CategoriaID: req.CategoriaID, Nombre: req.Nombre, Orden: req.Orden, Activa: req.Activa}
	updated, err := h.menu.UpdateSubcategoria(c.Request().Context(), sub)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func (h *MenuHandler) DeleteSubcategoria(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be numeric")
	}
	if err := h.menu.DeleteSubcategoria(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Cart ---

type cartResponse struct {
	Lineas []domain.LineaCarrito `json:"lineas"`
	Total  float64               `json:"total"`
	Count  int                   `json:"count"`
}

func toCartResponse(view ports.CartView) cartResponse {
	lineas := view.Lineas
	if lineas == nil {
		lineas = []domain.LineaCarrito{}
	}
	return cartResponse{Lineas: lineas, Total: view.Total, Count: view.Count}
}

func (h *MenuHandler) Cart(c echo.Context) error {
	return c.JSON(http.StatusOK, toCartResponse(h.menu.Cart()))
}

type addToCartRequest struct {
	ProductoID int `json:"productoId" validate:"required,gt=0"`
	Cantidad   int `json:"cantidad"   validate:"required,min=1"`
}

func (h *MenuHandler) AddToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.menu.AddToCart(req.ProductoID, req.Cantidad); err != nil {
		return err
	}
	metrics.CartOperationsTotal.WithLabelValues("add").Inc()
	return c.JSON(http.StatusOK, toCartResponse(h.menu.Cart()))
}

type updateQuantityRequest struct {
	Cantidad int `json:"cantidad"`
}

// UpdateQuantity sets a line's quantity; zero or below removes the line.
func (h *MenuHandler) UpdateQuantity(c echo.Context) error {
	productoID, err := strconv.Atoi(c.Param("productoId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "productoId must be numeric")
	}

	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	h.menu.UpdateQuantity(productoID, req.Cantidad)
	metrics.CartOperationsTotal.WithLabelValues("update").Inc()
	return c.JSON(http.StatusOK, toCartResponse(h.menu.Cart()))
}

func (h *MenuHandler) RemoveFromCart(c echo.Context) error {
	productoID, err := strconv.Atoi(c.Param("productoId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "productoId must be numeric")
	}

	h.menu.UpdateQuantity(productoID, 0)
	metrics.CartOperationsTotal.WithLabelValues("remove").Inc()
	return c.JSON(http.StatusOK, toCartResponse(h.menu.Cart()))
}

func (h *MenuHandler) ClearCart(c echo.Context) error {
	h.menu.ClearCart()
	metrics.CartOperationsTotal.WithLabelValues("clear").Inc()
	return c.NoContent(http.StatusNoContent)
}
