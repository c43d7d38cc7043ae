package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// RequireAdmin gates a route group on the session principal holding the
// admin role. The services enforce the same rule; this just fails the
// request before any handler work.
func RequireAdmin(session ports.SessionService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state := session.State()
			if !state.IsAuthenticated() {
				return domain.ErrNotAuthenticated
			}
			if !state.Usuario.IsAdmin() {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
