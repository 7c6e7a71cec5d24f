// package session persists the signed-in identity (user + bearer token) and
// coordinates establishing and tearing the pair down together.
//
// A session exists only when both halves are present: the persisted user and
// the token armed on the shared HTTP client. [Manager] is the single routine
// allowed to set or clear them, so they never diverge.
package session

import (
	"sync"

	"reelist/internal/models"
)

// Store is a typed key-value persistence interface for session state.
//
// Lookups distinguish three outcomes: present (ok=true), absent (ok=false,
// err=nil), and storage failure (err != nil). Malformed persisted data reads
// as absent, never as an error. Callers restoring a session are expected to
// treat storage failures as absence too; the distinction exists so tests can
// tell the cases apart.
type Store interface {
	GetUser() (*models.User, bool, error)
	SetUser(user *models.User) error
	ClearUser() error

	GetToken() (string, bool, error)
	SetToken(token string) error
	ClearToken() error
}

// MemoryStore is an in-process Store used in tests and as a fallback when
// durable storage is unavailable.
type MemoryStore struct {
	mu    sync.Mutex
	user  *models.User
	token string
	has   bool
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) GetUser() (*models.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, false, nil
	}
	u := *m.user
	return &u, true, nil
}

func (m *MemoryStore) SetUser(user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil {
		m.user = nil
		return nil
	}
	u := *user
	m.user = &u
	return nil
}

func (m *MemoryStore) ClearUser() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.user = nil
	return nil
}

func (m *MemoryStore) GetToken() (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.has, nil
}

func (m *MemoryStore) SetToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.has = true
	return nil
}

func (m *MemoryStore) ClearToken() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.has = false
	return nil
}
