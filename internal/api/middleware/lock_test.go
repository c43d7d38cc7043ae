package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
)

type stubLock struct {
	locked bool
}

func (s *stubLock) SetPin(context.Context, string) error { return nil }
func (s *stubLock) Lock(context.Context) error           { return nil }
func (s *stubLock) Unlock(context.Context, string) error { return nil }
func (s *stubLock) IsLocked() bool                       { return s.locked }

func TestTerminalLock_PassesWhenUnlocked(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := TerminalLock(&stubLock{locked: false})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestTerminalLock_RejectsWhenLocked(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := TerminalLock(&stubLock{locked: true})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrTerminalLocked) {
		t.Fatalf("expected ErrTerminalLocked, got %v", err)
	}
}
