package ports

import "context"

// LockService implements the cashier lock screen: a local PIN guards the
// terminal while the operator steps away. The PIN hash lives in Storage
// under KeyTerminalPin.
type LockService interface {
	SetPin(ctx context.Context, pin string) error
	Lock(ctx context.Context) error
	Unlock(ctx context.Context, pin string) error
	IsLocked() bool
}
