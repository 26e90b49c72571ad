package sessions

import (
	"context"
	"time"

	"finance/src/utils"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process; they are lost on restart.
type MemoryStore struct {
	cache *utils.Cache[uuid.UUID, Session]
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: utils.NewCache[uuid.UUID, Session](), now: time.Now}
}

func (m *MemoryStore) Get(_ context.Context, token uuid.UUID) (*Session, error) {
	s, ok := m.cache.Get(token)
	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	s.Flash = append([]string(nil), s.Flash...)
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	ttl := s.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return ErrNotFound
	}
	stored := *s
	stored.Flash = append([]string(nil), s.Flash...)
	m.cache.Set(s.Token, stored, ttl)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token uuid.UUID) error {
	m.cache.Delete(token)
	return nil
}

// Purge drops expired sessions and reports how many were removed.
func (m *MemoryStore) Purge() int {
	return m.cache.Purge()
}
