// Package sessions owns server-side login sessions and the signed
// cookies that point at them. Every resolve re-reads the store, so a
// session revoked by another request is noticed immediately.
package sessions

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"authcore/internal/models"
	"authcore/internal/repositories"
)

// Duration is how long a session row stays valid.
const Duration = 30 * 24 * time.Hour

// New builds an unsaved session row for a user.
func New(userID string) *models.Session {
	return &models.Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		ExpirationDate: time.Now().Add(Duration),
	}
}

type Manager struct {
	sessions repositories.SessionRepository
	codec    *CookieCodec
}

func NewManager(sessions repositories.SessionRepository, codec *CookieCodec) *Manager {
	return &Manager{sessions: sessions, codec: codec}
}

// Create persists a new session for the user and attaches its cookie.
func (m *Manager) Create(w http.ResponseWriter, userID string, remember bool) (*models.Session, error) {
	s := New(userID)
	if err := m.sessions.Create(s); err != nil {
		return nil, err
	}
	if err := m.Attach(w, s, remember); err != nil {
		return nil, err
	}
	return s, nil
}

// Attach mirrors an already-persisted session in the cookie.
func (m *Manager) Attach(w http.ResponseWriter, s *models.Session, remember bool) error {
	return m.codec.SetSessionCookie(w, s.ID, s.ExpirationDate, remember)
}

// Resolve maps the request's session cookie to a user id. A cookie
// pointing at a deleted or expired session is never silently ignored:
// the cookie is cleared and the stale row removed before reporting
// anonymous.
func (m *Manager) Resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return "", false
	}

	sid, err := m.codec.DecodeSessionCookie(cookie.Value)
	if err != nil {
		m.codec.ClearSessionCookie(w)
		return "", false
	}

	s, err := m.sessions.GetActive(sid)
	if err != nil {
		log.Printf("[session][resolve] lookup failed sid=%s: %v", sid, err)
		return "", false
	}
	if s == nil {
		m.codec.ClearSessionCookie(w)
		if delErr := m.sessions.Delete(sid); delErr != nil {
			log.Printf("[session][resolve] stale cleanup failed sid=%s: %v", sid, delErr)
		}
		return "", false
	}
	return s.UserID, true
}

// Destroy deletes the session row best-effort and always clears the
// cookie; a failed delete must not block a logout.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if sid, decErr := m.codec.DecodeSessionCookie(cookie.Value); decErr == nil {
			if delErr := m.sessions.Delete(sid); delErr != nil {
				log.Printf("[session][destroy] delete failed sid=%s: %v", sid, delErr)
			}
		}
	}
	m.codec.ClearSessionCookie(w)
}
