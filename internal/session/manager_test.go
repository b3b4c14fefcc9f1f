package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/logging"
)

var testNow = time.Date(2026, 2, 7, 9, 0, 0, 0, time.UTC)

func tokenExpiring(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "ada@example.com",
		"iat": testNow.Add(-time.Hour).Unix(),
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func newManager(store Store) *Manager {
	return NewManager(store, logging.Nop(), WithClock(func() time.Time { return testNow }))
}

func seed(t *testing.T, store Store, token, user string) {
	t.Helper()
	require.NoError(t, store.Set(map[string]string{KeyToken: token, KeyUser: user}))
}

var ada = Profile{ID: "u1", Name: "Ada", Email: "ada@example.com"}

func adaJSON(t *testing.T) string {
	t.Helper()
	b, err := json.Marshal(ada)
	require.NoError(t, err)
	return string(b)
}

func TestRestore_Valid(t *testing.T) {
	store := NewMemoryStore()
	tok := tokenExpiring(t, testNow.Add(time.Hour))
	seed(t, store, tok, adaJSON(t))

	m := newManager(store)
	st, err := m.Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, st)

	got, ok := m.CurrentCredential()
	assert.True(t, ok)
	assert.Equal(t, tok, got)
	p, ok := m.Profile()
	assert.True(t, ok)
	assert.Equal(t, ada, p)
}

func TestRestore_ExpiredPurges(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, tokenExpiring(t, testNow.Add(-time.Minute)), adaJSON(t))

	m := newManager(store)
	st, err := m.Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, st)
	assert.Zero(t, store.Len())
}

func TestRestore_MalformedPurges(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, "not-a-token", adaJSON(t))

	st, err := newManager(store).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, st)
	assert.Zero(t, store.Len())
}

func TestRestore_MissingOrUndefinedStaysAnonymous(t *testing.T) {
	tok := tokenExpiring(t, testNow.Add(time.Hour))

	onlyToken := NewMemoryStore()
	require.NoError(t, onlyToken.Set(map[string]string{KeyToken: tok}))
	st, err := newManager(onlyToken).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, st)
	assert.Equal(t, 1, onlyToken.Len())

	undefined := NewMemoryStore()
	seed(t, undefined, tok, "undefined")
	st, err = newManager(undefined).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, st)
}

func TestRestore_BadProfilePurges(t *testing.T) {
	store := NewMemoryStore()
	seed(t, store, tokenExpiring(t, testNow.Add(time.Hour)), "{not json")

	st, err := newManager(store).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, st)
	assert.Zero(t, store.Len())
}

func TestLogin_Incomplete(t *testing.T) {
	store := NewMemoryStore()
	m := newManager(store)
	tok := tokenExpiring(t, testNow.Add(time.Hour))

	assert.ErrorIs(t, m.Login(Profile{Email: "a@b.c"}, tok), ErrIncompleteLoginData)
	assert.ErrorIs(t, m.Login(Profile{Name: "A"}, tok), ErrIncompleteLoginData)
	assert.ErrorIs(t, m.Login(ada, "  "), ErrIncompleteLoginData)
	assert.Equal(t, StateAnonymous, m.State())
	assert.Zero(t, store.Len())
}

func TestLoginLogout(t *testing.T) {
	store := NewMemoryStore()
	m := newManager(store)
	tok := tokenExpiring(t, testNow.Add(time.Hour))

	require.NoError(t, m.Login(ada, tok))
	assert.Equal(t, StateAuthenticated, m.State())
	v, ok, err := store.Get(KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, tok, v)

	// a fresh manager over the same store sees the session
	st, err := newManager(store).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, st)

	require.NoError(t, m.Logout())
	assert.Equal(t, StateAnonymous, m.State())
	assert.Zero(t, store.Len())
	_, ok = m.CurrentCredential()
	assert.False(t, ok)

	require.NoError(t, m.Logout())
}

func TestExpired_LogsOutOnceLapsed(t *testing.T) {
	store := NewMemoryStore()
	now := testNow
	m := NewManager(store, logging.Nop(), WithClock(func() time.Time { return now }))
	require.NoError(t, m.Login(ada, tokenExpiring(t, testNow.Add(time.Minute))))

	assert.False(t, m.Expired())
	assert.Equal(t, StateAuthenticated, m.State())

	now = testNow.Add(2 * time.Minute)
	assert.True(t, m.Expired())
	assert.Equal(t, StateAnonymous, m.State())
	assert.Zero(t, store.Len())
	assert.False(t, m.Expired())
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, ok, err := fs.Get(KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	tok := tokenExpiring(t, testNow.Add(time.Hour))
	m := newManager(fs)
	require.NoError(t, m.Login(ada, tok))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	st, err := newManager(fs).Restore()
	require.NoError(t, err)
	assert.Equal(t, StateAuthenticated, st)

	require.NoError(t, m.Logout())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	fs, err := NewFileStore(path)
	require.NoError(t, err)

	_, err = newManager(fs).Restore()
	assert.Error(t, err)

	require.NoError(t, fs.Delete(KeyToken, KeyUser))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), fmt.Sprint(err))
}
