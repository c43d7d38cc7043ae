package ports

import (
	"context"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// ReportState is a snapshot of the reporting store. For admins the three
// scopes (general, per-sucursal, KPIs) are populated together or not at all;
// for other roles only Propio is used.
type ReportState struct {
	Periodo        domain.Periodo
	General        *domain.Reporte
	PorSucursal    map[int]*domain.Reporte
	KPIs           *domain.KPIs
	Propio         *domain.Reporte
	SucursalFilter *int
	Error          string
	Loading        bool
}

// ReportService fetches and exposes aggregate reports scoped by date range
// and by the session principal's role.
type ReportService interface {
	// LoadReports refetches for the current date range. Admin loads are
	// all-or-nothing: any of the three fetches failing leaves previous
	// report state untouched and sets the error field.
	LoadReports(ctx context.Context) error
	// SetDateRange updates the filter and triggers a refetch.
	SetDateRange(ctx context.Context, inicio, fin string) error
	// SetBranchFilter selects which cached per-sucursal report
	// CurrentReport returns for admins. No refetch.
	SetBranchFilter(sucursalID *int)
	// CurrentReport resolves the report for the active scope.
	CurrentReport() (*domain.Reporte, error)
	State() ReportState
}
