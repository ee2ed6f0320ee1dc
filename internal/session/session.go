// Package session holds the server-side state of each logged-in operator:
// the authenticated MES client, the warehouse directory cache, and the scan
// ledger. State is strictly per session — operators never share a cookie
// jar, a directory cache or a ledger.
package session

import (
	"sync"
	"time"

	"pdabridge/internal/mes"
	"pdabridge/internal/transfer"
)

// Session is one operator's session. Operator actions (scan, delete, commit)
// are serialized through the session mutex: the PDA issues one action at a
// time, and none of the session state is safe for concurrent use.
type Session struct {
	Client    *mes.Client
	Directory *mes.Directory
	Ledger    *transfer.Ledger
	Operator  string
	ExpiresAt time.Time

	mu sync.Mutex
}

// Lock serializes access to the session state.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// New creates a session around an authenticated MES client.
func New(client *mes.Client, operator string, expiresAt time.Time) *Session {
	return &Session{
		Client:    client,
		Directory: mes.NewDirectory(client),
		Ledger:    transfer.NewLedger(),
		Operator:  operator,
		ExpiresAt: expiresAt,
	}
}

// Manager is the registry of live sessions, keyed by token JTI.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates an empty session registry.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Put registers a session under a token JTI.
func (m *Manager) Put(jti string, s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[jti] = s
}

// Get returns the session for a token JTI, or nil if there is none or it
// has expired. Expired sessions are dropped on access.
func (m *Manager) Get(jti string) *Session {
	m.mu.RLock()
	s := m.sessions[jti]
	m.mu.RUnlock()

	if s == nil {
		return nil
	}
	if time.Now().After(s.ExpiresAt) {
		m.Delete(jti)
		return nil
	}
	return s
}

// Delete removes a session from the registry.
func (m *Manager) Delete(jti string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, jti)
}
