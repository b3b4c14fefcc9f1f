// Package session owns the signed-in user and their bearer credential.
//
// A Manager is created once per process, restored from its Store at start up
// and handed to the collaborators that need the credential.
package session

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"taskflow/internal/credential"
)

var ErrIncompleteLoginData = errors.New("login requires a name, an email and a credential")

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Profile is the signed-in user as the auth endpoint returned it.
type Profile struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Manager holds the current session and is the only writer of its Store.
// It is safe for concurrent use.
type Manager struct {
	store  Store
	logger zerolog.Logger
	now    func() time.Time

	mu         sync.RWMutex
	state      State
	profile    Profile
	credential string
}

type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns an anonymous manager backed by store. Call Restore
// before use.
func NewManager(store Store, logger zerolog.Logger, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the persisted session. Anything missing or unreadable leaves
// the manager anonymous; an expired or malformed credential is also purged.
func (m *Manager) Restore() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.clearLocked()

	token, okToken, err := m.store.Get(KeyToken)
	if err != nil {
		return m.state, err
	}
	rawUser, okUser, err := m.store.Get(KeyUser)
	if err != nil {
		return m.state, err
	}
	if !okToken || !okUser || token == "" || rawUser == "" || rawUser == "undefined" {
		m.logger.Debug().Msg("no persisted session")
		return m.state, nil
	}

	var p Profile
	if err := json.Unmarshal([]byte(rawUser), &p); err != nil {
		m.logger.Warn().Err(err).Msg("persisted profile unreadable, clearing session")
		return m.state, m.purgeLocked()
	}

	if credential.IsExpired(token, m.now()) {
		m.logger.Info().Msg("persisted credential expired or invalid, clearing session")
		return m.state, m.purgeLocked()
	}

	m.profile = p
	m.credential = token
	m.state = StateAuthenticated
	m.logger.Debug().Str("email", p.Email).Msg("session restored")
	return m.state, nil
}

// Login persists the profile and credential. Incomplete data changes nothing.
func (m *Manager) Login(p Profile, token string) error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" || strings.TrimSpace(token) == "" {
		return ErrIncompleteLoginData
	}

	rawUser, err := json.Marshal(p)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Set(map[string]string{
		KeyToken: token,
		KeyUser:  string(rawUser),
	}); err != nil {
		return err
	}
	m.profile = p
	m.credential = token
	m.state = StateAuthenticated

	ev := m.logger.Info().Str("email", p.Email)
	if left, err := credential.Remaining(token, m.now()); err == nil {
		ev = ev.Dur("expires_in", left)
	}
	ev.Msg("logged in")
	return nil
}

// Logout purges persisted state. Calling it while anonymous is harmless.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticated {
		m.logger.Info().Str("email", m.profile.Email).Msg("logged out")
	}
	return m.purgeLocked()
}

// Expired re-checks the held credential and logs out once it has lapsed.
func (m *Manager) Expired() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateAuthenticated {
		return false
	}
	if !credential.IsExpired(m.credential, m.now()) {
		return false
	}
	m.logger.Info().Str("email", m.profile.Email).Msg("credential expired, logging out")
	if err := m.purgeLocked(); err != nil {
		m.logger.Warn().Err(err).Msg("purge session")
	}
	return true
}

// CurrentCredential returns the bearer token while authenticated.
func (m *Manager) CurrentCredential() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.credential, m.state == StateAuthenticated
}

func (m *Manager) Profile() (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.profile, m.state == StateAuthenticated
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) clearLocked() {
	m.state = StateAnonymous
	m.profile = Profile{}
	m.credential = ""
}

func (m *Manager) purgeLocked() error {
	m.clearLocked()
	return m.store.Delete(KeyToken, KeyUser)
}
