package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/api/handler"
	"github.com/puntoventa/pos-terminal/internal/api/middleware"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// Services bundles the stores the gateway renders.
type Services struct {
	Session ports.SessionService
	Menu    ports.MenuService
	Reports ports.ReportService
	Admin   ports.AdminService
	Lock    ports.LockService
	Storage ports.Storage
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(svc Services, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pos_terminal"))

	sessionHandler := handler.NewSessionHandler(svc.Session)
	menuHandler := handler.NewMenuHandler(svc.Menu, svc.Session)
	reportHandler := handler.NewReportHandler(svc.Reports, svc.Session)
	adminHandler := handler.NewAdminHandler(svc.Admin)
	terminalHandler := handler.NewTerminalHandler(svc.Lock)

	locked := middleware.TerminalLock(svc.Lock)
	adminOnly := middleware.RequireAdmin(svc.Session)

	// --- Probes and metrics (never locked) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(svc.Storage).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Terminal lock screen ---
	e.POST("/terminal/unlock", terminalHandler.Unlock)
	e.GET("/terminal/estado", terminalHandler.Estado)
	e.POST("/terminal/pin", terminalHandler.SetPin, locked)
	e.POST("/terminal/lock", terminalHandler.Lock, locked)

	// --- Session ---
	session := e.Group("/session", locked)
	session.POST("/login", sessionHandler.Login)
	session.POST("/logout", sessionHandler.Logout)
	session.POST("/refresh", sessionHandler.Refresh)
	session.GET("", sessionHandler.Get)
	session.PUT("/sucursal", sessionHandler.ChangeSucursal)

	// --- Menu and cart ---
	menu := e.Group("/menu", locked)
	menu.PUT("/refresh", menuHandler.Refresh)
	menu.GET("/productos", menuHandler.Productos)
	menu.GET("/categorias", menuHandler.Categorias)
	menu.GET("/subcategorias", menuHandler.Subcategorias)
	menu.GET("/agrupado", menuHandler.Agrupado)
	menu.POST("/subcategorias", menuHandler.CreateSubcategoria, adminOnly)
	menu.PUT("/subcategorias/:id", menuHandler.UpdateSubcategoria, adminOnly)
	menu.DELETE("/subcategorias/:id", menuHandler.DeleteSubcategoria, adminOnly)

	carrito := e.Group("/carrito", locked)
	carrito.GET("", menuHandler.Cart)
	carrito.POST("/items", menuHandler.AddToCart)
	carrito.PUT("/items/:productoId", menuHandler.UpdateQuantity)
	carrito.DELETE("/items/:productoId", menuHandler.RemoveFromCart)
	carrito.DELETE("", menuHandler.ClearCart)

	// --- Reports ---
	reportes := e.Group("/reportes", locked)
	reportes.GET("", reportHandler.Get)
	reportes.GET("/actual", reportHandler.Actual)
	reportes.POST("/refresh", reportHandler.Refresh)
	reportes.PUT("/rango", reportHandler.SetDateRange)
	reportes.PUT("/sucursal", reportHandler.SetBranchFilter, adminOnly)

	// --- Admin console ---
	admin := e.Group("/admin", locked, adminOnly)
	admin.GET("/roles", adminHandler.Roles)
	admin.GET("/sucursales/:id/usuarios", adminHandler.UsuariosBySucursal)
	admin.PUT("/usuarios/:id/rol", adminHandler.UpdateUsuarioRol)

	return e
}
