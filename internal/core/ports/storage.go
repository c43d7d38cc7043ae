package ports

import (
	"context"
	"errors"
)

// Persisted state keys. Each key is read and written atomically on its own;
// there is no cross-key transaction, so readers must tolerate a brief window
// where the keys disagree (e.g. right after a token refresh).
const (
	KeyAuthToken    = "authToken"
	KeyAuthUser     = "authUser"
	KeyAuthSucursal = "authSucursal"
	KeyTerminalPin  = "terminalPin"
)

// ErrKeyNotFound is returned by Get for keys that were never set or were
// deleted.
var ErrKeyNotFound = errors.New("storage key not found")

// Storage is the persisted key-value state of one terminal. Both the session
// service and the backend transport read it independently.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
