package ports

import (
	"context"
	"time"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

// SessionState is a point-in-time snapshot of the session store. Usuario and
// Sucursal are copies; mutating them does not affect the store.
type SessionState struct {
	Usuario  *domain.Usuario
	Sucursal *domain.Sucursal
	Token    string
	Loading  bool
}

// IsAuthenticated holds exactly when both a token and a user are present.
func (s SessionState) IsAuthenticated() bool {
	return s.Token != "" && s.Usuario != nil
}

// SessionService owns the current principal, sucursal, and token.
type SessionService interface {
	// Login authenticates and persists the session. On failure the previous
	// state (in memory and persisted) is left untouched.
	Login(ctx context.Context, username, password string) (SessionState, error)
	// Logout invalidates the session server-side on a best-effort basis and
	// unconditionally clears local state.
	Logout(ctx context.Context)
	// RefreshToken obtains a new token for the current session; an
	// unrecoverable failure forces Logout.
	RefreshToken(ctx context.Context) error
	// ChangeSucursal switches the active sucursal. Non-admin users may only
	// select their own assigned branch.
	ChangeSucursal(ctx context.Context, sucursal domain.Sucursal) error
	// CheckAuth restores a persisted session at startup.
	CheckAuth(ctx context.Context) (SessionState, error)

	State() SessionState
	// TokenExpiry decodes the exp claim of the current token without
	// verifying the signature (the backend owns the signing key).
	TokenExpiry() (time.Time, bool)
}
