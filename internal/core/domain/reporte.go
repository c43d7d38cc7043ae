package domain

// Periodo is a closed date range, ISO dates (YYYY-MM-DD) on the wire.
type Periodo struct {
	Inicio string `json:"inicio"`
	Fin    string `json:"fin"`
}

// ResumenMonto is the shared shape of the sales and expense summaries.
type ResumenMonto struct {
	Total        float64            `json:"total"`
	Cantidad     int                `json:"cantidad"`
	Promedio     float64            `json:"promedio"`
	PorCategoria map[string]float64 `json:"porCategoria,omitempty"`
}

// ResumenGanancias carries the profit figures. Margen is only meaningful
// when the sales total is positive; HasMargen distinguishes "0%" from
// "undefined" (no sales in the period).
type ResumenGanancias struct {
	Neta           float64 `json:"neta"`
	Margen         float64 `json:"margen"`
	HasMargen      bool    `json:"hasMargen"`
	PromedioDiario float64 `json:"promedioDiario"`
}

// Reporte is an aggregate report snapshot for one scope (org-wide, one
// sucursal, or one user's own activity). Snapshots are replaced wholesale,
// never merged.
type Reporte struct {
	Periodo   Periodo          `json:"periodo"`
	Ventas    ResumenMonto     `json:"ventas"`
	Gastos    ResumenMonto     `json:"gastos"`
	Ganancias ResumenGanancias `json:"ganancias"`
}

// SucursalTop is one entry in the KPI top-branches ranking.
type SucursalTop struct {
	SucursalID int     `json:"sucursalId"`
	Nombre     string  `json:"nombre"`
	Total      float64 `json:"total"`
}

// KPIs is the admin dashboard headline block.
type KPIs struct {
	VentasHoy      float64       `json:"ventasHoy"`
	TicketPromedio float64       `json:"ticketPromedio"`
	SucursalesTop  []SucursalTop `json:"sucursalesTop,omitempty"`
	MargenPromedio float64       `json:"margenPromedio"`
}

// ComputeMargen applies the margin rule: margen = neta/ventas×100 when
// ventas > 0, otherwise undefined.
func ComputeMargen(neta, ventasTotal float64) (margen float64, ok bool) {
	if ventasTotal <= 0 {
		return 0, false
	}
	return neta / ventasTotal * 100, true
}
