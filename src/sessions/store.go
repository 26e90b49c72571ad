package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Session is the server side state behind a session cookie.
type Session struct {
	Token     uuid.UUID `json:"token"`
	UserID    int64     `json:"userId"`
	Flash     []string  `json:"flash,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists sessions by token. Get returns ErrNotFound for unknown or
// expired tokens.
type Store interface {
	Get(ctx context.Context, token uuid.UUID) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, token uuid.UUID) error
}

type contextKey string

const sessionKey = contextKey("session")

func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext returns the session loaded for the current request, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
