package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// TerminalLock rejects requests while the cashier lock screen is active.
// Mount it on every route group except the unlock endpoint and the probes.
func TerminalLock(lock ports.LockService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if lock.IsLocked() {
				return domain.ErrTerminalLocked
			}
			return next(c)
		}
	}
}
