package domain

// Role names as the backend reports them. RolDefault is applied when the
// wire payload carries no usable role in any of its known shapes.
const (
	RolAdmin   = "ADMIN"
	RolDefault = "EMPLEADO"
)

// Usuario is the canonical user record after wire-shape normalization.
// Rol is always a plain string here, regardless of how the backend encoded it.
type Usuario struct {
	ID         int      `json:"id"`
	Nombre     string   `json:"nombre"`
	Email      string   `json:"email,omitempty"`
	Rol        string   `json:"rol"`
	SucursalID int      `json:"sucursalId"`
	Activo     bool     `json:"activo"`
	Permisos   []string `json:"permisos,omitempty"`
}

// IsAdmin reports whether the user may operate across sucursales.
func (u *Usuario) IsAdmin() bool {
	return u != nil && u.Rol == RolAdmin
}

// Sucursal is the branch a session is scoped to.
type Sucursal struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
	Activa bool   `json:"activa"`
}

// Valid reports whether a persisted sucursal is structurally usable.
// A zero or negative id means the record was never properly populated.
func (s *Sucursal) Valid() bool {
	return s != nil && s.ID > 0
}

// RolInfo is a role catalog entry from the backend's role listing.
type RolInfo struct {
	ID     int    `json:"id"`
	Nombre string `json:"nombre"`
}
