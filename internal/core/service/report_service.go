package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

const fechaISO = "2006-01-02"

// ReportService fetches and exposes aggregate reports. Admins see the
// org-wide report, the per-sucursal map, and the KPI block; everyone else
// sees only their own activity. Snapshots are replaced wholesale.
type ReportService struct {
	backend ports.Backend
	session ports.SessionService
	logger  zerolog.Logger

	mu             sync.Mutex
	periodo        domain.Periodo
	general        *domain.Reporte
	porSucursal    map[int]*domain.Reporte
	kpis           *domain.KPIs
	propio         *domain.Reporte
	sucursalFilter *int
	errMsg         string
	loading        bool
}

// NewReportService starts with the current month as the date range.
func NewReportService(backend ports.Backend, session ports.SessionService, logger zerolog.Logger) *ReportService {
	now := time.Now()
	inicio := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return &ReportService{
		backend: backend,
		session: session,
		logger:  logger,
		periodo: domain.Periodo{Inicio: inicio.Format(fechaISO), Fin: now.Format(fechaISO)},
	}
}

// LoadReports refetches for the current date range and role scope.
//
// Admin loads are all-or-nothing: the three fetches run concurrently and a
// failure in any of them leaves every previous snapshot untouched, setting
// only the error field. Non-admin loads fetch the principal's own report and
// clear the admin-only state, which does not apply to that role.
func (r *ReportService) LoadReports(ctx context.Context) error {
	state := r.session.State()
	if !state.IsAuthenticated() {
		return domain.ErrNotAuthenticated
	}

	r.setLoading(true)
	defer r.setLoading(false)

	r.mu.Lock()
	periodo := r.periodo
	r.mu.Unlock()

	if state.Usuario.IsAdmin() {
		return r.loadAdmin(ctx, periodo)
	}
	return r.loadPropio(ctx, periodo)
}

func (r *ReportService) loadAdmin(ctx context.Context, periodo domain.Periodo) error {
	var (
		wg          sync.WaitGroup
		general     *domain.Reporte
		porSucursal map[int]*domain.Reporte
		kpis        *domain.KPIs
		errGeneral  error
		errMap      error
		errKPIs     error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		general, errGeneral = r.backend.ReporteGeneral(ctx, periodo)
	}()
	go func() {
		defer wg.Done()
		porSucursal, errMap = r.backend.ReportePorSucursal(ctx, periodo)
	}()
	go func() {
		defer wg.Done()
		kpis, errKPIs = r.backend.ReporteKPIs(ctx, periodo)
	}()
	wg.Wait()

	for _, err := range []error{errGeneral, errMap, errKPIs} {
		if err != nil {
			r.logger.Error().Err(err).Msg("admin report load failed")
			r.mu.Lock()
			r.errMsg = "no se pudieron cargar los reportes"
			r.mu.Unlock()
			return fmt.Errorf("load reports: %w", err)
		}
	}

	r.mu.Lock()
	r.general = general
	r.porSucursal = porSucursal
	r.kpis = kpis
	r.propio = nil
	r.errMsg = ""
	r.mu.Unlock()
	return nil
}

func (r *ReportService) loadPropio(ctx context.Context, periodo domain.Periodo) error {
	propio, err := r.backend.ReportePorFecha(ctx, periodo)
	if err != nil {
		r.logger.Error().Err(err).Msg("report load failed")
		r.mu.Lock()
		r.errMsg = "no se pudo cargar el reporte"
		r.mu.Unlock()
		return fmt.Errorf("load reports: %w", err)
	}

	r.mu.Lock()
	r.propio = propio
	r.porSucursal = nil
	r.kpis = nil
	r.errMsg = ""
	r.mu.Unlock()
	return nil
}

// SetDateRange updates the filter and refetches as a side effect.
func (r *ReportService) SetDateRange(ctx context.Context, inicio, fin string) error {
	start, err := time.Parse(fechaISO, inicio)
	if err != nil {
		return fmt.Errorf("set date range: inicio: %w", err)
	}
	end, err := time.Parse(fechaISO, fin)
	if err != nil {
		return fmt.Errorf("set date range: fin: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("set date range: fin %s precedes inicio %s", fin, inicio)
	}

	r.mu.Lock()
	r.periodo = domain.Periodo{Inicio: inicio, Fin: fin}
	r.mu.Unlock()

	return r.LoadReports(ctx)
}

// SetBranchFilter selects which cached per-sucursal report CurrentReport
// returns for admins. All branches were fetched already, so no refetch.
func (r *ReportService) SetBranchFilter(sucursalID *int) {
	r.mu.Lock()
	if sucursalID != nil {
		id := *sucursalID
		r.sucursalFilter = &id
	} else {
		r.sucursalFilter = nil
	}
	r.mu.Unlock()
}

// CurrentReport resolves the report for the active scope: non-admins always
// get their own report; admins get the filtered sucursal's report when a
// filter is set, else the org-wide one.
func (r *ReportService) CurrentReport() (*domain.Reporte, error) {
	state := r.session.State()
	if !state.IsAuthenticated() {
		return nil, domain.ErrNotAuthenticated
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !state.Usuario.IsAdmin() {
		if r.propio == nil {
			return nil, domain.ErrReportUnavailable
		}
		return r.propio, nil
	}

	if r.sucursalFilter != nil {
		reporte, ok := r.porSucursal[*r.sucursalFilter]
		if !ok || reporte == nil {
			return nil, domain.ErrReportUnavailable
		}
		return reporte, nil
	}

	if r.general == nil {
		return nil, domain.ErrReportUnavailable
	}
	return r.general, nil
}

// State returns a snapshot of the store. Report pointers are shared; report
// snapshots are immutable by convention (replaced, never merged).
func (r *ReportService) State() ports.ReportState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := ports.ReportState{
		Periodo: r.periodo,
		General: r.general,
		KPIs:    r.kpis,
		Propio:  r.propio,
		Error:   r.errMsg,
		Loading: r.loading,
	}
	if r.porSucursal != nil {
		state.PorSucursal = make(map[int]*domain.Reporte, len(r.porSucursal))
		for id, rep := range r.porSucursal {
			state.PorSucursal[id] = rep
		}
	}
	if r.sucursalFilter != nil {
		id := *r.sucursalFilter
		state.SucursalFilter = &id
	}
	return state
}

func (r *ReportService) setLoading(v bool) {
	r.mu.Lock()
	r.loading = v
	r.mu.Unlock()
}
