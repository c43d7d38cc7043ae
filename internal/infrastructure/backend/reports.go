package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// periodoQuery renders the inicio/fin query string shared by all report
// endpoints. Dates are ISO YYYY-MM-DD.
func periodoQuery(periodo domain.Periodo) string {
	q := url.Values{}
	q.Set("inicio", periodo.Inicio)
	q.Set("fin", periodo.Fin)
	return "?" + q.Encode()
}

func (c *Client) ReporteGeneral(ctx context.Context, periodo domain.Periodo) (*domain.Reporte, error) {
	var reporte domain.Reporte
	if err := c.call(ctx, http.MethodGet, "/reportes/general"+periodoQuery(periodo), nil, &reporte, false); err != nil {
		return nil, err
	}
	return &reporte, nil
}

// ReportePorSucursal returns one report per sucursal, keyed by sucursal id.
// The backend keys the JSON object with stringified ids.
func (c *Client) ReportePorSucursal(ctx context.Context, periodo domain.Periodo) (map[int]*domain.Reporte, error) {
	var wire map[string]*domain.Reporte
	if err := c.call(ctx, http.MethodGet, "/reportes/por-sucursal"+periodoQuery(periodo), nil, &wire, false); err != nil {
		return nil, err
	}

	out := make(map[int]*domain.Reporte, len(wire))
	for key, reporte := range wire {
		id, err := strconv.Atoi(key)
		if err != nil {
			c.logger.Warn().Str("sucursal", key).Msg("skipping report with non-numeric sucursal key")
			continue
		}
		out[id] = reporte
	}
	return out, nil
}

func (c *Client) ReporteKPIs(ctx context.Context, periodo domain.Periodo) (*domain.KPIs, error) {
	var kpis domain.KPIs
	if err := c.call(ctx, http.MethodGet, "/reportes/kpis"+periodoQuery(periodo), nil, &kpis, false); err != nil {
		return nil, err
	}
	return &kpis, nil
}

func (c *Client) ReportePorFecha(ctx context.Context, periodo domain.Periodo) (*domain.Reporte, error) {
	var reporte domain.Reporte
	if err := c.call(ctx, http.MethodGet, "/reportes/por-fecha"+periodoQuery(periodo), nil, &reporte, false); err != nil {
		return nil, err
	}
	return &reporte, nil
}
