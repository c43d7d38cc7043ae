package domain

// LineaCarrito is one cart line. PrecioUnitario is snapshotted when the line
// is first created and never re-read from the catalog, so a price change
// between add and checkout does not silently reprice the cart.
type LineaCarrito struct {
	Producto       Producto `json:"producto"`
	Cantidad       int      `json:"cantidad"`
	PrecioUnitario float64  `json:"precioUnitario"`
}

// Subtotal is always derived, never stored.
func (l *LineaCarrito) Subtotal() float64 {
	return float64(l.Cantidad) * l.PrecioUnitario
}

// CartTotals aggregates a set of cart lines. Recomputed on every read.
func CartTotals(lineas []LineaCarrito) (total float64, count int) {
	for i := range lineas {
		total += lineas[i].Subtotal()
		count += lineas[i].Cantidad
	}
	return total, count
}
