package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// LockService implements the cashier lock screen. Only the bcrypt hash of
// the PIN is persisted; the locked flag itself is in-memory, so a restarted
// terminal comes up unlocked but unauthenticated.
type LockService struct {
	storage ports.Storage
	logger  zerolog.Logger

	mu     sync.Mutex
	locked bool
}

func NewLockService(storage ports.Storage, logger zerolog.Logger) *LockService {
	return &LockService{storage: storage, logger: logger}
}

func (l *LockService) SetPin(ctx context.Context, pin string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	if err := l.storage.Set(ctx, ports.KeyTerminalPin, string(hash)); err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	return nil
}

func (l *LockService) Lock(ctx context.Context) error {
	if _, err := l.storage.Get(ctx, ports.KeyTerminalPin); err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return domain.ErrPinNotSet
		}
		return fmt.Errorf("lock: %w", err)
	}

	l.mu.Lock()
	l.locked = true
	l.mu.Unlock()
	l.logger.Info().Msg("terminal locked")
	return nil
}

func (l *LockService) Unlock(ctx context.Context, pin string) error {
	hash, err := l.storage.Get(ctx, ports.KeyTerminalPin)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return domain.ErrPinNotSet
		}
		return fmt.Errorf("unlock: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) != nil {
		return domain.ErrPinMismatch
	}

	l.mu.Lock()
	l.locked = false
	l.mu.Unlock()
	l.logger.Info().Msg("terminal unlocked")
	return nil
}

func (l *LockService) IsLocked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locked
}
