package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/hbenali/storefront/internal/auth"
	"github.com/hbenali/storefront/internal/handlers"
	"github.com/hbenali/storefront/internal/hash"
	middlewareauth "github.com/hbenali/storefront/internal/middleware/auth"
	"github.com/hbenali/storefront/internal/models"
	"github.com/hbenali/storefront/internal/session"
	"github.com/hbenali/storefront/internal/store"
	httpserver "github.com/hbenali/storefront/internal/transport/http"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	DB    *gorm.DB
	Store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Cart{},
		&models.CartItem{},
		&models.Product{},
		&models.Category{},
		&models.Order{},
		&models.Review{},
	); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}

	gateway := store.New(db)
	sessions := session.NewManager([]byte("test-secret"))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())

	httpserver.Register(e, &httpserver.Deps{
		Logger: logger,
		Guard:  &middlewareauth.Guard{Sessions: sessions, Store: gateway},
		Users: &handlers.UserHandler{
			Store:    gateway,
			Verifier: auth.NewVerifier(gateway),
			Sessions: sessions,
		},
		Cart:    &handlers.CartHandler{Store: gateway},
		Catalog: &handlers.CatalogHandler{Store: gateway},
	})

	return &testEnv{T: t, E: e, DB: db, Store: gateway}
}

func (env *testEnv) do(method, path string, body interface{}, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// seedUser inserts a user with a real bcrypt hash, bypassing the register
// endpoint.
func (env *testEnv) seedUser(name, username, email, password string) *models.User {
	env.T.Helper()
	hashed, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := models.User{
		Name:         name,
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return &user
}

// login authenticates and returns the session cookies for later requests.
func (env *testEnv) login(email, password string) []*http.Cookie {
	env.T.Helper()
	rec := env.do(http.MethodPost, "/users/login", map[string]string{
		"email":    email,
		"password": password,
	})
	require.Equal(env.T, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(env.T, cookies)
	return cookies
}
