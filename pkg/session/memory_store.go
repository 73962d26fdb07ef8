package session

import (
	"context"
	"sync"
)

// MemoryStore implements Store in process memory.
// Records are deep-copied on the way in and out, so callers never share
// state with the store. It never expires records on its own.
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]map[string]*Session
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partitions: make(map[string]map[string]*Session),
	}
}

// Get retrieves a session by partition and token
func (m *MemoryStore) Get(_ context.Context, partition, token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.partitions[partition][token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s.Clone(), nil
}

// Put creates or overwrites a session
func (m *MemoryStore) Put(_ context.Context, session *Session) error {
	if session == nil || session.Token == "" || session.Partition == "" {
		return ErrMalformedToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partitions[session.Partition]
	if !ok {
		p = make(map[string]*Session)
		m.partitions[session.Partition] = p
	}
	p[session.Token] = session.Clone()
	return nil
}

// Update overwrites an existing session
func (m *MemoryStore) Update(_ context.Context, session *Session) error {
	if session == nil || session.Token == "" || session.Partition == "" {
		return ErrMalformedToken
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.partitions[session.Partition]
	if _, ok := p[session.Token]; !ok {
		return ErrSessionNotFound
	}
	p[session.Token] = session.Clone()
	return nil
}

// Delete removes a session
func (m *MemoryStore) Delete(_ context.Context, partition, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partitions[partition]
	if !ok {
		return false, nil
	}
	if _, ok := p[token]; !ok {
		return false, nil
	}
	delete(p, token)
	if len(p) == 0 {
		delete(m.partitions, partition)
	}
	return true, nil
}

// Query returns copies of every session in the partition
func (m *MemoryStore) Query(_ context.Context, partition string) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := m.partitions[partition]
	out := make([]*Session, 0, len(p))
	for _, s := range p {
		out = append(out, s.Clone())
	}
	return out, nil
}

// DeleteAll removes every session in the partition
func (m *MemoryStore) DeleteAll(_ context.Context, partition string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.partitions[partition]
	if !ok || len(p) == 0 {
		return false, nil
	}
	delete(m.partitions, partition)
	return true, nil
}

// Len returns the total number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, p := range m.partitions {
		n += len(p)
	}
	return n
}
