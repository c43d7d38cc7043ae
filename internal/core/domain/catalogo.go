package domain

// Producto is a catalog item as served for one sucursal. PrecioSucursal,
// when non-nil, overrides PrecioBase for that branch.
type Producto struct {
	ID             int      `json:"id"`
	Nombre         string   `json:"nombre"`
	Descripcion    string   `json:"descripcion"`
	Codigo         string   `json:"codigo"`
	CategoriaID    int      `json:"categoriaId"`
	PrecioBase     float64  `json:"precioBase"`
	PrecioSucursal *float64 `json:"precioSucursal,omitempty"`
	Disponibles    int      `json:"disponibles"`
	Orden          int      `json:"orden"`
	Activo         bool     `json:"activo"`
}

// Precio returns the effective unit price for the current sucursal.
func (p *Producto) Precio() float64 {
	if p.PrecioSucursal != nil {
		return *p.PrecioSucursal
	}
	return p.PrecioBase
}

type Categoria struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Icono  string `json:"icono,omitempty"`
	Orden  int    `json:"orden"`
	Activa bool   `json:"activa"`
}

type Subcategoria struct {
	ID          int    `json:"id"`
	CategoriaID int    `json:"categoriaId"`
	Nombre      string `json:"nombre"`
	Orden       int    `json:"orden"`
	Activa      bool   `json:"activa"`
}
