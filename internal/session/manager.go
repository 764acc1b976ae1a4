package session

import "sync"

type entry struct {
	mu sync.Mutex
	s  Session
}

// Manager holds per-user sessions. Access for a given user is serialized
// through that user's own lock, so two back-to-back events from one user
// cannot interleave their read-modify-write, while different users never
// contend with each other beyond the brief map lookup.
type Manager struct {
	mu    sync.RWMutex
	users map[int64]*entry
}

// NewManager creates an empty session manager.
func NewManager() *Manager {
	return &Manager{users: make(map[int64]*entry)}
}

func (m *Manager) entryFor(userID int64) *entry {
	m.mu.RLock()
	e, ok := m.users[userID]
	m.mu.RUnlock()
	if ok {
		return e
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok = m.users[userID]; ok {
		return e
	}
	e = &entry{s: Session{Node: NodeIdle}}
	m.users[userID] = e
	return e
}

// Update runs fn with exclusive access to the user's session. Mutations
// made by fn are retained.
func (m *Manager) Update(userID int64, fn func(*Session)) {
	e := m.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(&e.s)
}

// Peek returns a copy of the user's current session without blocking
// longer than the copy takes.
func (m *Manager) Peek(userID int64) Session {
	e := m.entryFor(userID)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s
}

// Reset returns the user's session to idle.
func (m *Manager) Reset(userID int64) {
	m.Update(userID, func(s *Session) { s.Reset() })
}
