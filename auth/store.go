package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"masterboxer.com/kpitter-web/models"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// Store persists session records. database.SessionStore is the Postgres
// implementation; MemoryStore serves single-instance deployments and tests.
type Store interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
	SetFlash(ctx context.Context, id, message string) error
	TakeFlash(ctx context.Context, id string) (string, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]models.Session)}
}

func (m *MemoryStore) Create(_ context.Context, s models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return models.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) SetFlash(_ context.Context, id, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	s.Flash = message
	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) TakeFlash(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", ErrSessionNotFound
	}
	flash := s.Flash
	s.Flash = ""
	m.sessions[id] = s
	return flash, nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len is used by tests.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
