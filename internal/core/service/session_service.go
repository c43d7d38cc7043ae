package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/puntoventa/pos-terminal/internal/core/domain"
	"github.com/puntoventa/pos-terminal/internal/core/ports"
)

// SessionService owns the current principal, sucursal, and token, and keeps
// the persisted copies under the auth* keys in sync with memory.
type SessionService struct {
	backend ports.Backend
	storage ports.Storage
	logger  zerolog.Logger

	mu       sync.Mutex
	usuario  *domain.Usuario
	sucursal *domain.Sucursal
	token    string
	loading  bool
}

func NewSessionService(backend ports.Backend, storage ports.Storage, logger zerolog.Logger) *SessionService {
	return &SessionService{backend: backend, storage: storage, logger: logger}
}

// Login authenticates against the backend and installs the session. When the
// backend omits the sucursal object, one is synthesized from the user's
// assigned branch. On any transport failure the previous state is untouched.
func (s *SessionService) Login(ctx context.Context, username, password string) (ports.SessionState, error) {
	s.setLoading(true)
	err := s.login(ctx, username, password)
	s.setLoading(false)
	return s.State(), err
}

func (s *SessionService) login(ctx context.Context, username, password string) error {
	result, err := s.backend.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	sucursal := result.Sucursal
	if sucursal == nil {
		synth := synthesizeSucursal(&result.Usuario)
		sucursal = &synth
	}

	s.persistSession(ctx, result.Token, &result.Usuario, sucursal)

	s.mu.Lock()
	usuario := result.Usuario
	s.usuario = &usuario
	s.sucursal = sucursal
	s.token = result.Token
	s.mu.Unlock()

	s.logger.Info().
		Int("usuario_id", usuario.ID).
		Str("rol", usuario.Rol).
		Int("sucursal_id", sucursal.ID).
		Msg("session established")

	return nil
}

// Logout invalidates the session server-side on a best-effort basis (errors
// are logged, never surfaced) and unconditionally clears memory and storage.
func (s *SessionService) Logout(ctx context.Context) {
	if err := s.backend.Logout(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("server-side logout failed")
	}

	for _, key := range []string{ports.KeyAuthToken, ports.KeyAuthUser, ports.KeyAuthSucursal} {
		if err := s.storage.Delete(ctx, key); err != nil && !errors.Is(err, ports.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to clear persisted session key")
		}
	}

	s.mu.Lock()
	s.usuario = nil
	s.sucursal = nil
	s.token = ""
	s.mu.Unlock()

	s.logger.Info().Msg("session cleared")
}

// RefreshToken requests a fresh token for the current session. A refresh
// failure is unrecoverable and forces a full logout.
func (s *SessionService) RefreshToken(ctx context.Context) error {
	token, err := s.backend.RefreshToken(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("token refresh failed, forcing logout")
		s.Logout(ctx)
		return fmt.Errorf("refresh token: %w", err)
	}

	if err := s.storage.Set(ctx, ports.KeyAuthToken, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist refreshed token")
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// ChangeSucursal switches the active sucursal. Non-admin users may only
// select the branch they are assigned to; anything else is rejected and the
// current sucursal is kept.
func (s *SessionService) ChangeSucursal(ctx context.Context, sucursal domain.Sucursal) error {
	s.mu.Lock()
	usuario := s.usuario
	s.mu.Unlock()

	if usuario == nil {
		return domain.ErrNotAuthenticated
	}
	if !usuario.IsAdmin() && sucursal.ID != usuario.SucursalID {
		s.logger.Warn().
			Int("usuario_id", usuario.ID).
			Int("sucursal_id", sucursal.ID).
			Int("asignada", usuario.SucursalID).
			Msg("sucursal change rejected for non-admin")
		return domain.ErrSucursalNotAllowed
	}

	if raw, err := json.Marshal(sucursal); err == nil {
		if err := s.storage.Set(ctx, ports.KeyAuthSucursal, string(raw)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist sucursal")
		}
	}

	s.mu.Lock()
	copia := sucursal
	s.sucursal = &copia
	s.mu.Unlock()
	return nil
}

// CheckAuth restores a persisted session at startup. The persisted sucursal
// is honored only for admins and only when structurally valid (id > 0);
// otherwise a sucursal is synthesized from the user's assigned branch.
func (s *SessionService) CheckAuth(ctx context.Context) (ports.SessionState, error) {
	s.setLoading(true)
	err := s.checkAuth(ctx)
	s.setLoading(false)
	return s.State(), err
}

func (s *SessionService) checkAuth(ctx context.Context) error {
	token, err := s.storage.Get(ctx, ports.KeyAuthToken)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("check auth: read token: %w", err)
	}

	rawUser, err := s.storage.Get(ctx, ports.KeyAuthUser)
	if err != nil {
		if errors.Is(err, ports.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("check auth: read user: %w", err)
	}

	var usuario domain.Usuario
	if err := json.Unmarshal([]byte(rawUser), &usuario); err != nil {
		s.logger.Error().Err(err).Msg("persisted user unreadable, discarding session")
		s.Logout(ctx)
		return nil
	}

	sucursal := s.restoreSucursal(ctx, &usuario)
	s.persistSession(ctx, token, &usuario, &sucursal)

	s.mu.Lock()
	s.usuario = &usuario
	s.sucursal = &sucursal
	s.token = token
	s.mu.Unlock()

	s.logger.Info().
		Int("usuario_id", usuario.ID).
		Int("sucursal_id", sucursal.ID).
		Msg("session restored")

	return nil
}

// restoreSucursal resolves the sucursal to use for a restored session.
func (s *SessionService) restoreSucursal(ctx context.Context, usuario *domain.Usuario) domain.Sucursal {
	if usuario.IsAdmin() {
		if raw, err := s.storage.Get(ctx, ports.KeyAuthSucursal); err == nil {
			var persisted domain.Sucursal
			if json.Unmarshal([]byte(raw), &persisted) == nil && persisted.Valid() {
				return persisted
			}
		}
	}
	return synthesizeSucursal(usuario)
}

// State returns a snapshot with defensive copies.
func (s *SessionService) State() ports.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := ports.SessionState{Token: s.token, Loading: s.loading}
	if s.usuario != nil {
		u := *s.usuario
		state.Usuario = &u
	}
	if s.sucursal != nil {
		b := *s.sucursal
		state.Sucursal = &b
	}
	return state
}

// TokenExpiry decodes the exp claim of the current token without verifying
// the signature; the backend owns the signing key, the terminal only needs
// the deadline for display and proactive refresh hints.
func (s *SessionService) TokenExpiry() (time.Time, bool) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()

	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *SessionService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// persistSession writes the three auth keys. Persistence is best effort:
// a storage failure is logged but never blocks the in-memory session.
func (s *SessionService) persistSession(ctx context.Context, token string, usuario *domain.Usuario, sucursal *domain.Sucursal) {
	if err := s.storage.Set(ctx, ports.KeyAuthToken, token); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist token")
	}
	if raw, err := json.Marshal(usuario); err == nil {
		if err := s.storage.Set(ctx, ports.KeyAuthUser, string(raw)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist user")
		}
	}
	if raw, err := json.Marshal(sucursal); err == nil {
		if err := s.storage.Set(ctx, ports.KeyAuthSucursal, string(raw)); err != nil {
			s.logger.Warn().Err(err).Msg("failed to persist sucursal")
		}
	}
}

func synthesizeSucursal(usuario *domain.Usuario) domain.Sucursal {
	return domain.Sucursal{
		ID:     usuario.SucursalID,
		Nombre: fmt.Sprintf("Sucursal %d", usuario.SucursalID),
		Activa: true,
	}
}
