package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naveenspark/fridge/internal/kvstore"
	"github.com/naveenspark/fridge/internal/logging"
	"github.com/naveenspark/fridge/pkg/client"
)

// fakeAuth answers every login with "tok-<login>" unless the password is
// "wrong".
type fakeAuth struct {
	paths []string
}

func (f *fakeAuth) Authenticate(_ context.Context, path string, creds client.Credentials) (any, error) {
	f.paths = append(f.paths, path)
	if creds.Password == "wrong" {
		return map[string]any{"message": "invalid credentials"}, &client.APIError{
			StatusCode: 401,
			Message:    "invalid credentials",
			Payload:    map[string]any{"message": "invalid credentials"},
		}
	}
	return map[string]any{"token": "tok-" + creds.Login}, nil
}

type failingStore struct {
	*kvstore.MemoryStore
	failSet bool
}

func (f *failingStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errors.New("disk full")
	}
	return f.MemoryStore.Set(ctx, key, value)
}

func newManager(t *testing.T) (*Manager, *kvstore.MemoryStore) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	m := NewManager(store, &fakeAuth{}, logging.Discard())
	m.Initialize(context.Background())
	return m, store
}

func stored(t *testing.T, s kvstore.Store, key string) (string, bool) {
	t.Helper()
	v, ok, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestInitialize_Empty(t *testing.T) {
	m := NewManager(kvstore.NewMemoryStore(), &fakeAuth{}, logging.Discard())
	assert.True(t, m.Snapshot().Loading())

	m.Initialize(context.Background())

	s := m.Snapshot()
	assert.False(t, s.Loading())
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.ActiveFridge)
}

func TestInitialize_RestoresPersisted(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "auth_token", "t1"))
	require.NoError(t, store.Set(ctx, "auth_login", "alice"))
	require.NoError(t, store.Set(ctx, "active_fridge:alice", "f1"))

	m := NewManager(store, &fakeAuth{}, logging.Discard())
	m.Initialize(ctx)

	assert.Equal(t, State{Token: "t1", User: "alice", ActiveFridge: "f1", Phase: PhaseReady}, m.Snapshot())
	assert.Equal(t, "t1", m.Token())
}

func TestInitialize_MigratesLegacy(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "auth_token", "t1"))
	require.NoError(t, store.Set(ctx, "auth_login", "alice"))
	require.NoError(t, store.Set(ctx, "active_fridge", "legacy"))

	m := NewManager(store, &fakeAuth{}, logging.Discard())
	m.Initialize(ctx)

	assert.Equal(t, "legacy", m.Snapshot().ActiveFridge)
	v, _ := stored(t, store, "active_fridge:alice")
	assert.Equal(t, "legacy", v)
	_, ok := stored(t, store, "active_fridge")
	assert.False(t, ok)
}

func TestLogin_MigratesLegacyOnce(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	require.NoError(t, store.Set(ctx, "active_fridge", "old-fridge"))

	_, err := m.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	v, _ := stored(t, store, "active_fridge:bob")
	assert.Equal(t, "old-fridge", v)
	_, ok := stored(t, store, "active_fridge")
	assert.False(t, ok)
	assert.Equal(t, "old-fridge", m.Snapshot().ActiveFridge)
}

func TestLogin_ScopedWinsOverLegacy(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	require.NoError(t, store.Set(ctx, "active_fridge", "legacy"))
	require.NoError(t, store.Set(ctx, "active_fridge:bob", "mine"))

	_, err := m.Login(ctx, "bob", "pw")
	require.NoError(t, err)

	assert.Equal(t, "mine", m.Snapshot().ActiveFridge)
	_, ok := stored(t, store, "active_fridge")
	assert.False(t, ok)
}

func TestSessionIsolation(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager(t)

	_, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, m.SetActiveFridge(ctx, "fa"))
	require.NoError(t, m.Logout(ctx))

	_, err = m.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	assert.Empty(t, m.Snapshot().ActiveFridge)
	require.NoError(t, m.SetActiveFridge(ctx, "fb"))
	require.NoError(t, m.Logout(ctx))

	_, err = m.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "fa", m.Snapshot().ActiveFridge)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	_, err := m.Login(ctx, "alice", "wrong")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid credentials", authErr.Message)
	assert.True(t, client.IsStatus(err, 401))
	assert.False(t, m.Snapshot().Authenticated())
	_, ok := stored(t, store, "auth_token")
	assert.False(t, ok)
}

func TestLogin_MissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"user":"alice"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	m := NewManager(kvstore.NewMemoryStore(), client.New(srv.URL, nil), logging.Discard())
	m.Initialize(context.Background())

	_, err := m.Login(context.Background(), "alice", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.ErrorIs(t, err, ErrNoToken)
	assert.Equal(t, "", m.Token())
}

func TestLogin_PlainTextErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte("login already taken")) //nolint:errcheck
	}))
	defer srv.Close()

	m := NewManager(kvstore.NewMemoryStore(), client.New(srv.URL, nil), logging.Discard())
	_, err := m.Register(context.Background(), "alice", "pw")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "login already taken", authErr.Message)
}

func TestRegister_UsesRegisterPath(t *testing.T) {
	auth := &fakeAuth{}
	m := NewManager(kvstore.NewMemoryStore(), auth, logging.Discard())

	tok, err := m.Register(context.Background(), "carol", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok-carol", tok)
	assert.Equal(t, []string{client.RegisterPath}, auth.paths)
}

func TestLogout_KeepsScopedFridges(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	_, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, m.SetActiveFridge(ctx, "fa"))

	require.NoError(t, m.Logout(ctx))

	s := m.Snapshot()
	assert.Empty(t, s.Token)
	assert.Empty(t, s.User)
	assert.Empty(t, s.ActiveFridge)
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"active_fridge:alice"}, keys)
}

func TestSetActiveFridge_ClearRemovesKey(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)
	_, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.NoError(t, m.SetActiveFridge(ctx, "fa"))

	require.NoError(t, m.SetActiveFridge(ctx, ""))

	_, ok := stored(t, store, "active_fridge:alice")
	assert.False(t, ok)
}

func TestSetActiveFridge_NoUserUsesLegacyKey(t *testing.T) {
	ctx := context.Background()
	m, store := newManager(t)

	require.NoError(t, m.SetActiveFridge(ctx, "f9"))

	v, ok := stored(t, store, "active_fridge")
	assert.True(t, ok)
	assert.Equal(t, "f9", v)
}

func TestSetActiveFridge_StorageFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{MemoryStore: kvstore.NewMemoryStore()}
	m := NewManager(store, &fakeAuth{}, logging.Discard())
	m.Initialize(ctx)
	_, err := m.Login(ctx, "alice", "pw")
	require.NoError(t, err)

	store.failSet = true
	err = m.SetActiveFridge(ctx, "fa")

	require.Error(t, err)
	assert.Equal(t, "fa", m.Snapshot().ActiveFridge)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"token", map[string]any{"token": "a"}, "a"},
		{"accessToken", map[string]any{"accessToken": "b"}, "b"},
		{"access_token", map[string]any{"access_token": "c"}, "c"},
		{"jwt", map[string]any{"jwt": "d"}, "d"},
		{"priority", map[string]any{"jwt": "d", "token": "a"}, "a"},
		{"bare string", " e ", "e"},
		{"none", map[string]any{"id": 1}, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractToken(tt.payload))
		})
	}
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "auth_token", signed))
	m := NewManager(store, &fakeAuth{}, logging.Discard())
	m.Initialize(ctx)

	got, ok := m.TokenExpiry()
	require.True(t, ok)
	assert.True(t, got.Equal(exp))

	_, err = m.Login(ctx, "bob", "pw")
	require.NoError(t, err)
	_, ok = m.TokenExpiry()
	assert.False(t, ok, "opaque token has no expiry")
}
