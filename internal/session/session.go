// Package session binds an authenticated identity to an opaque cookie-backed
// session key. Only the principal id is stored; the user record is resolved
// fresh from the database on every request by the access guard.
package session

import (
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	cookieName   = "session"
	principalKey = "user_id"

	// 1 hour, matching the session cookie lifetime of the API contract.
	maxAge = 3600
)

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret []byte) *Manager {
	st := sessions.NewCookieStore(secret)
	st.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	// MaxAge also updates the codecs so stale cookies stop validating.
	st.MaxAge(maxAge)
	return &Manager{store: st}
}

// Bind stores userID as the session principal and issues the cookie.
func (m *Manager) Bind(c echo.Context, userID uint) error {
	sess, err := m.store.Get(c.Request(), cookieName)
	if err != nil {
		// A tampered or stale cookie still yields a usable new session.
		sess, _ = m.store.New(c.Request(), cookieName)
	}
	sess.Values[principalKey] = userID
	return sess.Save(c.Request(), c.Response())
}

// UserID returns the principal bound to this request's session, if any.
func (m *Manager) UserID(c echo.Context) (uint, bool) {
	sess, err := m.store.Get(c.Request(), cookieName)
	if err != nil {
		return 0, false
	}
	id, ok := sess.Values[principalKey].(uint)
	return id, ok
}

// Clear expires the session cookie.
func (m *Manager) Clear(c echo.Context) error {
	sess, err := m.store.Get(c.Request(), cookieName)
	if err != nil {
		sess, _ = m.store.New(c.Request(), cookieName)
	}
	sess.Options.MaxAge = -1
	delete(sess.Values, principalKey)
	return sess.Save(c.Request(), c.Response())
}
