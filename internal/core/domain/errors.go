package domain

import "errors"

var ErrNotAuthenticated = errors.New("no authenticated session")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrSucursalNotAllowed = errors.New("sucursal not allowed for this user")
var ErrForbidden = errors.New("operation requires admin role")
var ErrTerminalLocked = errors.New("terminal is locked")
var ErrPinMismatch = errors.New("pin does not match")
var ErrPinNotSet = errors.New("no pin configured")
var ErrReportUnavailable = errors.New("report not loaded")
var ErrProductoNotFound = errors.New("producto not in catalog")
