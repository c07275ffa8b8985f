package session

import "sync"

// VarStore is where a reception delivers its decoded text, keyed by the
// variable name the caller asked for.  The dialplan-style collaborator
// behind it is out of scope; MemStore covers standalone use.
type VarStore interface {
	Set(name, value string)
}

// MemStore is an in-memory VarStore safe for concurrent sessions.
type MemStore struct {
	mu   sync.RWMutex
	vars map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{vars: make(map[string]string)}
}

func (m *MemStore) Set(name, value string) {
	m.mu.Lock()
	m.vars[name] = value
	m.mu.Unlock()
}

func (m *MemStore) Get(name string) (string, bool) {
	m.mu.RLock()
	v, ok := m.vars[name]
	m.mu.RUnlock()
	return v, ok
}
