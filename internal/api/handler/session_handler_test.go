package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type stubSessionService struct {
	state ports.SessionState

	loginFn  func(ctx context.Context, username, password string) (ports.SessionState, error)
	changeFn func(ctx context.Context, sucursal domain.Sucursal) error
}

func (s *stubSessionService) Login(ctx context.Context, username, password string) (ports.SessionState, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubSessionService) Logout(context.Context) {}

func (s *stubSessionService) RefreshToken(context.Context) error { return nil }

func (s *stubSessionService) ChangeSucursal(ctx context.Context, sucursal domain.Sucursal) error {
	return s.changeFn(ctx, sucursal)
}

func (s *stubSessionService) CheckAuth(context.Context) (ports.SessionState, error) {
	return s.state, nil
}

func (s *stubSessionService) State() ports.SessionState { return s.state }

func (s *stubSessionService) TokenExpiry() (time.Time, bool) { return time.Time{}, false }

func newSessionContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSessionHandler_Login_Success(t *testing.T) {
	usuario := domain.Usuario{ID: 1, Nombre: "Ana", Rol: domain.RolAdmin, SucursalID: 2, Activo: true}
	sucursal := domain.Sucursal{ID: 2, Nombre: "Sucursal 2", Activa: true}
	stub := &stubSessionService{
		loginFn: func(ctx context.Context, username, password string) (ports.SessionState, error) {
			if username != "ana" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return ports.SessionState{Usuario: &usuario, Sucursal: &sucursal, Token: "t1"}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, rec := newSessionContext(t, http.MethodPost, "/session/login", `{"username":"ana","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["isAuthenticated"] != true || resp["isAdmin"] != true {
		t.Fatalf("unexpected flags: %+v", resp)
	}
	branch, ok := resp["sucursal"].(map[string]any)
	if !ok || branch["nombre"] != "Sucursal 2" {
		t.Fatalf("unexpected sucursal payload: %+v", resp["sucursal"])
	}
}

func TestSessionHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(context.Context, string, string) (ports.SessionState, error) {
			return ports.SessionState{}, domain.ErrInvalidCredentials
		},
	}
	h := NewSessionHandler(stub)

	c, _ := newSessionContext(t, http.MethodPost, "/session/login", `{"username":"ana","password":"bad"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSessionHandler_Login_MissingFields(t *testing.T) {
	stub := &stubSessionService{
		loginFn: func(context.Context, string, string) (ports.SessionState, error) {
			t.Fatalf("should not be called")
			return ports.SessionState{}, nil
		},
	}
	h := NewSessionHandler(stub)

	c, _ := newSessionContext(t, http.MethodPost, "/session/login", `{"username":"ana"}`)
	err := h.Login(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestSessionHandler_ChangeSucursal_Forbidden(t *testing.T) {
	stub := &stubSessionService{
		changeFn: func(context.Context, domain.Sucursal) error {
			return domain.ErrSucursalNotAllowed
		},
	}
	h := NewSessionHandler(stub)

	c, _ := newSessionContext(t, http.MethodPut, "/session/sucursal", `{"id":99,"nombre":"Otra"}`)
	if err := h.ChangeSucursal(c); !errors.Is(err, domain.ErrSucursalNotAllowed) {
		t.Fatalf("expected ErrSucursalNotAllowed, got %v", err)
	}
}

func TestSessionHandler_Get_Anonymous(t *testing.T) {
	h := NewSessionHandler(&stubSessionService{})

	c, rec := newSessionContext(t, http.MethodGet, "/session", "")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["isAuthenticated"] != false {
		t.Fatalf("anonymous session reported as authenticated: %+v", resp)
	}
	if _, present := resp["usuario"]; present {
		t.Fatalf("usuario must be omitted when empty")
	}
}
