package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

type memStorage struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string]string)}
}

func (s *memStorage) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", ports.ErrKeyNotFound
	}
	return value, nil
}

func (s *memStorage) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ports.ErrKeyNotFound
	}
	delete(s.data, key)
	return nil
}

func (s *memStorage) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *memStorage) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	storage := newMemStorage()
	return NewClient(Config{BaseURL: server.URL}, storage, zerolog.Nop()), storage
}

func TestNormalizeRol(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		sibling string
		want    string
	}{
		{"plain string", `"ADMIN"`, "", "ADMIN"},
		{"nested object", `{"id":2,"nombre":"CAJERO"}`, "", "CAJERO"},
		{"sibling fallback", `null`, "GERENTE", "GERENTE"},
		{"plain wins over sibling", `"ADMIN"`, "CAJERO", "ADMIN"},
		{"nested wins over sibling", `{"nombre":"CAJERO"}`, "GERENTE", "CAJERO"},
		{"empty object uses sibling", `{}`, "GERENTE", "GERENTE"},
		{"nothing usable", `null`, "", domain.RolDefault},
		{"absent field", ``, "", domain.RolDefault},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeRol(json.RawMessage(tc.raw), tc.sibling)
			if got != tc.want {
				t.Fatalf("normalizeRol(%q, %q) = %q, want %q", tc.raw, tc.sibling, got, tc.want)
			}
		})
	}
}

func TestLogin_MapsWirePayload(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username != "ana" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{
			"token": "t1",
			"usuario": {"id": 1, "nombre": "Ana", "rol": {"id": 1, "nombre": "ADMIN"}, "sucursalId": 2}
		}`))
	})
	client, _ := newTestClient(t, mux)

	result, err := client.Login(context.Background(), "ana", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != "t1" {
		t.Fatalf("token = %q", result.Token)
	}
	if result.Usuario.Rol != "ADMIN" {
		t.Fatalf("rol = %q, want ADMIN", result.Usuario.Rol)
	}
	if !result.Usuario.Activo {
		t.Fatalf("activo must default to true when omitted")
	}
	if result.Sucursal != nil {
		t.Fatalf("sucursal should be nil when omitted")
	}
}

func TestLogin_401IsFinal(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "credenciales invalidas"}`))
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Login(context.Background(), "ana", "wrong")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if refreshCalls.Load() != 0 {
		t.Fatalf("a login 401 must never trigger a refresh")
	}
}

func TestCall_RefreshAndReplayOn401(t *testing.T) {
	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/categorias", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[{"id": 10, "nombre": "Bebidas"}]`))
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer t1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token": "t2"}`))
	})
	client, storage := newTestClient(t, mux)
	_ = storage.Set(context.Background(), ports.KeyAuthToken, "t1")

	categorias, err := client.Categorias(context.Background())
	if err != nil {
		t.Fatalf("Categorias failed: %v", err)
	}
	if len(categorias) != 1 || categorias[0].ID != 10 {
		t.Fatalf("unexpected payload: %+v", categorias)
	}
	if refreshCalls.Load() != 1 {
		t.Fatalf("refresh calls = %d, want 1", refreshCalls.Load())
	}
	if token, _ := storage.Get(context.Background(), ports.KeyAuthToken); token != "t2" {
		t.Fatalf("refreshed token not persisted: %q", token)
	}
}

func TestCall_ConcurrentRefreshIsSingleFlight(t *testing.T) {
	const callers = 8

	// The refresh endpoint blocks until every caller has been served its
	// 401, so all of them join the same flight before it resolves.
	var refreshCalls, unauthorized atomic.Int32
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/categorias", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer t2" {
			if unauthorized.Add(1) == callers {
				close(release)
			}
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		<-release
		_, _ = w.Write([]byte(`{"token": "t2"}`))
	})
	client, storage := newTestClient(t, mux)
	_ = storage.Set(context.Background(), ports.KeyAuthToken, "t1")

	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := client.Categorias(context.Background())
			errs <- err
		}()
	}

	for i := 0; i < callers; i++ {
		if err := <-errs; err != nil {
			t.Fatalf("caller %d failed: %v", i, err)
		}
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Fatalf("refresh calls = %d, want exactly 1", got)
	}
}

func TestCall_FailedRefreshClearsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/categorias", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "token expirado"}`))
	})
	client, storage := newTestClient(t, mux)
	ctx := context.Background()
	_ = storage.Set(ctx, ports.KeyAuthToken, "t1")
	_ = storage.Set(ctx, ports.KeyAuthUser, `{"id": 1}`)
	_ = storage.Set(ctx, ports.KeyAuthSucursal, `{"id": 2}`)

	if _, err := client.Categorias(ctx); err == nil {
		t.Fatalf("expected error")
	}
	for _, key := range []string{ports.KeyAuthToken, ports.KeyAuthUser, ports.KeyAuthSucursal} {
		if storage.has(key) {
			t.Fatalf("credential key %s not cleared after failed refresh", key)
		}
	}
}

func TestCall_APIErrorCarriesEnvelopeMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/categorias", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "catalogo bloqueado"}`))
	})
	client, _ := newTestClient(t, mux)

	_, err := client.Categorias(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "catalogo bloqueado" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}

func TestReportePorSucursal_SkipsNonNumericKeys(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/reportes/por-sucursal", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("inicio") != "2026-08-01" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{
			"2": {"ventas": {"total": 400}},
			"totales": {"ventas": {"total": 9999}}
		}`))
	})
	client, _ := newTestClient(t, mux)

	out, err := client.ReportePorSucursal(context.Background(), domain.Periodo{Inicio: "2026-08-01", Fin: "2026-08-31"})
	if err != nil {
		t.Fatalf("ReportePorSucursal failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one entry, got %d", len(out))
	}
	if out[2] == nil || out[2].Ventas.Total != 400 {
		t.Fatalf("unexpected report: %+v", out[2])
	}
}
