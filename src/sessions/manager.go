package sessions

import (
	"context"
	"errors"
	"net/http"
	"time"

	"finance/src/config"
	"finance/src/utils"

	"github.com/google/uuid"
)

// Manager ties a Store to the session cookie.
type Manager struct {
	store      Store
	cookieName string
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

func NewManager(store Store, cfg config.SessionsConfig) *Manager {
	return &Manager{
		store:      store,
		cookieName: cfg.CookieName,
		ttl:        cfg.TTL,
		secure:     cfg.SecureCookie,
		now:        time.Now,
	}
}

// Middleware loads the session named by the request cookie into the request
// context. Requests without a valid session pass through unchanged.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(m.cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		token, err := uuid.Parse(cookie.Value)
		if err != nil {
			m.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		s, err := m.store.Get(r.Context(), token)
		switch {
		case errors.Is(err, ErrNotFound):
			m.clearCookie(w)
		case err != nil:
			utils.LoggerFromContext(r.Context()).WithError(err).Warn("loading session")
		default:
			r = r.WithContext(WithSession(r.Context(), s))
		}
		next.ServeHTTP(w, r)
	})
}

// Start creates a session for userID and sets its cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, userID int64) (*Session, error) {
	s := &Session{
		Token:     uuid.New(),
		UserID:    userID,
		ExpiresAt: m.now().Add(m.ttl),
	}
	if err := m.store.Save(ctx, s); err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    s.Token.String(),
		Path:     "/",
		Expires:  s.ExpiresAt,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return s, nil
}

// Destroy deletes the session, if any, and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	m.clearCookie(w)
	if s == nil {
		return nil
	}
	return m.store.Delete(ctx, s.Token)
}

// AddFlash queues a one-shot message shown on the next rendered page.
func (m *Manager) AddFlash(ctx context.Context, s *Session, message string) error {
	s.Flash = append(s.Flash, message)
	return m.store.Save(ctx, s)
}

// PopFlashes returns the queued messages and clears them.
func (m *Manager) PopFlashes(ctx context.Context, s *Session) ([]string, error) {
	if s == nil || len(s.Flash) == 0 {
		return nil, nil
	}
	flashes := s.Flash
	s.Flash = nil
	return flashes, m.store.Save(ctx, s)
}

func (m *Manager) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
