package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/api/metrics"
	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type ReportHandler struct {
	reports ports.ReportService
	session ports.SessionService
}

func NewReportHandler(reports ports.ReportService, session ports.SessionService) *ReportHandler {
	return &ReportHandler{reports: reports, session: session}
}

type reportStateResponse struct {
	Periodo        domain.Periodo          `json:"periodo"`
	General        *domain.Reporte         `json:"reporteGeneral,omitempty"`
	PorSucursal    map[int]*domain.Reporte `json:"porSucursal,omitempty"`
	KPIs           *domain.KPIs            `json:"kpis,omitempty"`
	Propio         *domain.Reporte         `json:"reportePropio,omitempty"`
	SucursalFilter *int                    `json:"sucursalFilter,omitempty"`
	Error          string                  `json:"error,omitempty"`
	Loading        bool                    `json:"loading"`
}

func toReportResponse(state ports.ReportState) reportStateResponse {
	return reportStateResponse{
		Periodo:        state.Periodo,
		General:        state.General,
		PorSucursal:    state.PorSucursal,
		KPIs:           state.KPIs,
		Propio:         state.Propio,
		SucursalFilter: state.SucursalFilter,
		Error:          state.Error,
		Loading:        state.Loading,
	}
}

// Get returns the full reporting store snapshot.
func (h *ReportHandler) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, toReportResponse(h.reports.State()))
}

// Actual resolves the report for the active scope (role + branch filter).
func (h *ReportHandler) Actual(c echo.Context) error {
	reporte, err := h.reports.CurrentReport()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reporte)
}

func (h *ReportHandler) scope() string {
	if state := h.session.State(); state.Usuario.IsAdmin() {
		return "admin"
	}
	return "propio"
}

// Refresh refetches reports for the current date range.
func (h *ReportHandler) Refresh(c echo.Context) error {
	if err := h.reports.LoadReports(c.Request().Context()); err != nil {
		metrics.ReportLoadsTotal.WithLabelValues(h.scope(), "failure").Inc()
		return err
	}
	metrics.ReportLoadsTotal.WithLabelValues(h.scope(), "success").Inc()
	return c.JSON(http.StatusOK, toReportResponse(h.reports.State()))
}

type dateRangeRequest struct {
	Inicio string `json:"inicio" validate:"required,datetime=2006-01-02"`
	Fin    string `json:"fin"    validate:"required,datetime=2006-01-02"`
}

// SetDateRange updates the filter; the store refetches as a side effect.
func (h *ReportHandler) SetDateRange(c echo.Context) error {
	var req dateRangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.reports.SetDateRange(c.Request().Context(), req.Inicio, req.Fin); err != nil {
		metrics.ReportLoadsTotal.WithLabelValues(h.scope(), "failure").Inc()
		return err
	}
	metrics.ReportLoadsTotal.WithLabelValues(h.scope(), "success").Inc()
	return c.JSON(http.StatusOK, toReportResponse(h.reports.State()))
}

type branchFilterRequest struct {
	SucursalID *int `json:"sucursalId"`
}

// SetBranchFilter selects which cached per-sucursal report to surface.
// Null clears the filter back to the org-wide report.
func (h *ReportHandler) SetBranchFilter(c echo.Context) error {
	var req branchFilterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	h.reports.SetBranchFilter(req.SucursalID)
	return c.JSON(http.StatusOK, toReportResponse(h.reports.State()))
}
