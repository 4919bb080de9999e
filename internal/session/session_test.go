package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

func TestBindAndResolve(t *testing.T) {
	e := echo.New()
	m := NewManager([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Bind(e.NewContext(req, rec), 42))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req2 := httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, ck := range cookies {
		req2.AddCookie(ck)
	}
	id, ok := m.UserID(e.NewContext(req2, httptest.NewRecorder()))
	require.True(t, ok)
	require.Equal(t, uint(42), id)
}

func TestNoSession(t *testing.T) {
	e := echo.New()
	m := NewManager([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	_, ok := m.UserID(e.NewContext(req, httptest.NewRecorder()))
	require.False(t, ok)
}

func TestTamperedCookie(t *testing.T) {
	e := echo.New()
	m := NewManager([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: cookieName, Value: "garbage"})
	_, ok := m.UserID(e.NewContext(req, httptest.NewRecorder()))
	require.False(t, ok)
}

func TestClear(t *testing.T) {
	e := echo.New()
	m := NewManager([]byte("test-secret"))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, m.Bind(e.NewContext(req, rec), 7))

	req2 := httptest.NewRequest(http.MethodPost, "/logout", nil)
	for _, ck := range rec.Result().Cookies() {
		req2.AddCookie(ck)
	}
	rec2 := httptest.NewRecorder()
	require.NoError(t, m.Clear(e.NewContext(req2, rec2)))

	req3 := httptest.NewRequest(http.MethodGet, "/profile", nil)
	for _, ck := range rec2.Result().Cookies() {
		req3.AddCookie(ck)
	}
	_, ok := m.UserID(e.NewContext(req3, httptest.NewRecorder()))
	require.False(t, ok)
}
