package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore guarda sessões em memória com expiração simples. Atende
// desenvolvimento e testes; produção usa RedisStore.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
}

type memoryEntry struct {
	session Session
	expires time.Time
}

// NewMemoryStore cria o store em memória.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryEntry)}
}

// Get devolve uma cópia da sessão armazenada.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	if time.Now().After(entry.expires) {
		delete(s.sessions, id)
		return nil, ErrNotFound
	}

	copied := entry.session
	return &copied, nil
}

// Save grava a sessão, renovando a expiração.
func (s *MemoryStore) Save(ctx context.Context, session *Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, entry := range s.sessions {
		if time.Now().After(entry.expires) {
			delete(s.sessions, id)
		}
	}

	s.sessions[session.ID] = memoryEntry{session: *session, expires: time.Now().Add(ttl)}
	return nil
}

// Delete remove a sessão.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
