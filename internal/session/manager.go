package session

import (
	"github.com/charmbracelet/log"

	"reelist/internal/events"
	"reelist/internal/models"
)

// TokenSetter arms or clears the bearer token on the shared HTTP client.
//
// Implemented by services.Client; declared here so session does not depend on
// the transport package.
type TokenSetter interface {
	SetAuthToken(token string)
}

// Manager owns the session lifecycle: user and token are established together,
// refreshed in place, and torn down together, never partially.
//
// Storage failures are swallowed (logged at debug) so a caller merely trying
// to restore or clear a session is never crashed by a broken store.
type Manager struct {
	store  Store
	client TokenSetter
	bus    *events.Bus
	logger *log.Logger
}

// NewManager wires a Manager from its collaborators. Any of client, bus, or
// logger may be nil; the corresponding side effects are skipped.
func NewManager(store Store, client TokenSetter, bus *events.Bus, logger *log.Logger) *Manager {
	return &Manager{store: store, client: client, bus: bus, logger: logger}
}

// Current returns the persisted user, if any. Storage failures read as "no user".
func (m *Manager) Current() (*models.User, bool) {
	user, ok, err := m.store.GetUser()
	if err != nil {
		m.debugf("session store read failed: %v", err)
		return nil, false
	}
	return user, ok
}

// Token returns the persisted bearer token, if any. Storage failures read as "no token".
func (m *Manager) Token() (string, bool) {
	token, ok, err := m.store.GetToken()
	if err != nil {
		m.debugf("session store read failed: %v", err)
		return "", false
	}
	return token, ok
}

// Establish persists the user and token, arms the HTTP client, and broadcasts login.
func (m *Manager) Establish(user *models.User, token string) {
	if err := m.store.SetUser(user); err != nil {
		m.debugf("failed to persist user: %v", err)
	}
	if err := m.store.SetToken(token); err != nil {
		m.debugf("failed to persist token: %v", err)
	}
	if m.client != nil {
		m.client.SetAuthToken(token)
	}
	if m.bus != nil {
		m.bus.Publish(events.LoginEvent(user))
	}
}

// Refresh replaces the persisted user in place, leaving the token untouched.
// Used after profile or avatar updates.
func (m *Manager) Refresh(user *models.User) {
	if err := m.store.SetUser(user); err != nil {
		m.debugf("failed to persist user: %v", err)
	}
}

// Teardown clears the persisted user and token, disarms the HTTP client, and
// broadcasts logout.
func (m *Manager) Teardown() {
	m.clear()
	if m.bus != nil {
		m.bus.Publish(events.LogoutEvent())
	}
}

// Expire performs the 401 teardown sequence: clear persisted user, clear
// persisted token, clear the client's auth header, then broadcast session
// expiry with a user-facing message.
func (m *Manager) Expire(message string) {
	m.clear()
	if m.bus != nil {
		m.bus.Publish(events.SessionExpiredEvent(message))
	}
}

func (m *Manager) clear() {
	if err := m.store.ClearUser(); err != nil {
		m.debugf("failed to clear user: %v", err)
	}
	if err := m.store.ClearToken(); err != nil {
		m.debugf("failed to clear token: %v", err)
	}
	if m.client != nil {
		m.client.SetAuthToken("")
	}
}

func (m *Manager) debugf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Debugf(format, args...)
	}
}
