// Package session owns the authentication state: token, logged-in identity
// and that identity's active fridge. State is kept in memory and mirrored to
// a kvstore.Store so it survives restarts.
//
// The Manager is passed explicitly to the components that need it and is the
// client's TokenSource. It is safe for concurrent use.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/fridge/internal/kvstore"
	"github.com/naveenspark/fridge/internal/logging"
	"github.com/naveenspark/fridge/pkg/client"
)

// Storage keys. The unscoped active fridge key predates per-user scoping
// and is migrated on the next initialize or login.
const (
	tokenKey        = "auth_token"
	loginKey        = "auth_login"
	activeFridgeKey = "active_fridge"
)

func activeFridgeKeyFor(login string) string {
	return activeFridgeKey + ":" + login
}

type Phase int

const (
	PhaseUninitialized Phase = iota
	PhaseLoading
	PhaseReady
)

// State is a snapshot of the session. Empty strings mean "not set".
type State struct {
	Token        string
	User         string
	ActiveFridge string
	Phase        Phase
}

// Loading reports whether the persisted state has not been read yet.
func (s State) Loading() bool { return s.Phase != PhaseReady }

func (s State) Authenticated() bool { return s.Token != "" }

// AuthError is a failed credential exchange.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.Err }

// ErrNoToken is wrapped by the AuthError returned when a successful auth
// response carries no token.
var ErrNoToken = errors.New("no token in server response")

// Authenticator exchanges credentials for a token payload.
type Authenticator interface {
	Authenticate(ctx context.Context, path string, creds client.Credentials) (any, error)
}

type Manager struct {
	mu     sync.RWMutex
	state  State
	store  kvstore.Store
	auth   Authenticator
	logger logging.Logger
}

func NewManager(store kvstore.Store, auth Authenticator, logger logging.Logger) *Manager {
	return &Manager{
		store:  store,
		auth:   auth,
		logger: logger.With("component", "session"),
	}
}

// Initialize loads the persisted session. Storage failures are logged; the
// phase always ends Ready.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	m.state.Phase = PhaseLoading
	m.mu.Unlock()

	token := m.read(ctx, tokenKey)
	login := m.read(ctx, loginKey)
	active := ""
	if login != "" {
		active = m.restoreActiveFridge(ctx, login)
	}

	m.mu.Lock()
	m.state = State{Token: token, User: login, ActiveFridge: active, Phase: PhaseReady}
	m.mu.Unlock()

	m.logger.Info(ctx, "session initialized", "user", login, "authenticated", token != "")
}

// Login exchanges credentials for a token and makes identity the current user.
func (m *Manager) Login(ctx context.Context, identity, secret string) (string, error) {
	return m.authenticate(ctx, client.LoginPath, identity, secret)
}

// Register creates an account and logs into it.
func (m *Manager) Register(ctx context.Context, identity, secret string) (string, error) {
	return m.authenticate(ctx, client.RegisterPath, identity, secret)
}

func (m *Manager) authenticate(ctx context.Context, path, identity, secret string) (string, error) {
	payload, err := m.auth.Authenticate(ctx, path, client.Credentials{Login: identity, Password: secret})
	if err != nil {
		m.logger.Warn(ctx, "authentication failed", "path", path, "user", identity, "error", err)
		return "", authError(err)
	}

	token := ExtractToken(payload)
	if token == "" {
		m.logger.Warn(ctx, "authentication response without token", "path", path, "user", identity)
		return "", &AuthError{Message: ErrNoToken.Error(), Err: ErrNoToken}
	}

	m.write(ctx, tokenKey, token)
	m.write(ctx, loginKey, identity)
	active := m.restoreActiveFridge(ctx, identity)

	m.mu.Lock()
	m.state.Token = token
	m.state.User = identity
	m.state.ActiveFridge = active
	m.mu.Unlock()

	m.logger.Info(ctx, "logged in", "user", identity, "active_fridge", active)
	return token, nil
}

// Logout forgets the token and identity. Per-user active fridges are kept
// so they come back on the next login.
func (m *Manager) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{tokenKey, loginKey} {
		if err := m.store.Remove(ctx, key); err != nil {
			m.logger.Warn(ctx, "storage remove failed", "key", key, "error", err)
			errs = append(errs, err)
		}
	}

	m.mu.Lock()
	user := m.state.User
	m.state.Token = ""
	m.state.User = ""
	m.state.ActiveFridge = ""
	m.mu.Unlock()

	m.logger.Info(ctx, "logged out", "user", user)
	if len(errs) > 0 {
		return fmt.Errorf("session.Logout: %w", errors.Join(errs...))
	}
	return nil
}

// SetActiveFridge selects the active fridge; "" clears it. The in-memory
// value is updated even when persisting fails.
func (m *Manager) SetActiveFridge(ctx context.Context, id string) error {
	m.mu.Lock()
	m.state.ActiveFridge = id
	user := m.state.User
	m.mu.Unlock()

	if user == "" {
		user = m.read(ctx, loginKey)
	}
	key := activeFridgeKey
	if user != "" {
		key = activeFridgeKeyFor(user)
	}

	var err error
	if id == "" {
		err = m.store.Remove(ctx, key)
	} else {
		err = m.store.Set(ctx, key, id)
	}
	if err != nil {
		m.logger.Warn(ctx, "persist active fridge failed", "key", key, "error", err)
		return fmt.Errorf("session.SetActiveFridge: %w", err)
	}
	m.logger.Info(ctx, "active fridge set", "user", user, "fridge_id", id)
	return nil
}

// Token implements client.TokenSource.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TokenExpiry reads the exp claim of a JWT token without verifying it.
// Opaque tokens and tokens without exp report false.
func (m *Manager) TokenExpiry() (time.Time, bool) {
	tok := m.Token()
	if tok == "" {
		return time.Time{}, false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(tok, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// restoreActiveFridge returns login's active fridge, first moving a legacy
// unscoped value into login's key when login has none.
func (m *Manager) restoreActiveFridge(ctx context.Context, login string) string {
	scopedKey := activeFridgeKeyFor(login)
	scoped := m.read(ctx, scopedKey)

	legacy := m.read(ctx, activeFridgeKey)
	if legacy != "" {
		if scoped == "" {
			if m.write(ctx, scopedKey, legacy) {
				scoped = legacy
			}
		}
		if err := m.store.Remove(ctx, activeFridgeKey); err != nil {
			m.logger.Warn(ctx, "storage remove failed", "key", activeFridgeKey, "error", err)
		} else {
			m.logger.Info(ctx, "migrated legacy active fridge", "user", login)
		}
	}
	return scoped
}

func (m *Manager) read(ctx context.Context, key string) string {
	v, ok, err := m.store.Get(ctx, key)
	if err != nil {
		m.logger.Warn(ctx, "storage read failed", "key", key, "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return v
}

func (m *Manager) write(ctx context.Context, key, value string) bool {
	if err := m.store.Set(ctx, key, value); err != nil {
		m.logger.Warn(ctx, "storage write failed", "key", key, "error", err)
		return false
	}
	return true
}

// ExtractToken finds the token in an auth payload: one of the token fields
// of a JSON object, or the whole body when it is a bare string.
func ExtractToken(payload any) string {
	switch p := payload.(type) {
	case string:
		return strings.TrimSpace(p)
	case map[string]any:
		for _, k := range []string{"token", "accessToken", "access_token", "jwt"} {
			if s, ok := p[k].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func authError(err error) *AuthError {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if text, ok := apiErr.Payload.(string); ok && strings.TrimSpace(text) != "" {
			msg = strings.TrimSpace(text)
		}
		return &AuthError{Message: msg, Err: err}
	}
	return &AuthError{Message: client.ErrorMessage(err), Err: err}
}
