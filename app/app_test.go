package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/rememberable/config"
	"github.com/tech-arch1tect/rememberable/testutils"
	"github.com/tech-arch1tect/rememberable/users"
	"golang.org/x/crypto/bcrypt"
)

func buildApp(t *testing.T, mutate func(cfg *config.Config)) *App {
	t.Helper()

	cfg := testConfig()
	if mutate != nil {
		mutate(cfg)
	}

	app, err := New().WithConfig(cfg).Build()
	require.NoError(t, err)

	_, err = users.NewGormDirectory(app.DB()).Create(context.Background(), "alice@example.com", testutils.TestPasswords.Valid, bcrypt.MinCost)
	require.NoError(t, err)

	return app
}

func serve(app *App, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.Server().ServeHTTP(rec, req)
	return rec
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func assertRememberRoundTrip(t *testing.T, app *App) {
	t.Helper()

	login := serve(app, http.MethodPost, "/auth/login",
		`{"login":"alice@example.com","password":"`+testutils.TestPasswords.Valid+`","remember_me":true}`)
	require.Equal(t, http.StatusOK, login.Code)

	cookie := cookieNamed(login, "remember_user_token")
	require.NotNil(t, cookie)

	me := serve(app, http.MethodGet, "/auth/me", "", cookie)
	assert.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"strategy":"rememberable"`)
}

func TestApp_Accessors(t *testing.T) {
	app := buildApp(t, nil)

	assert.NotNil(t, app.Server())
	assert.NotNil(t, app.DB())
	assert.NotNil(t, app.Logger())
	assert.NotNil(t, app.Remember())
	assert.Equal(t, "Test App", app.Config().App.Name)
}

func TestApp_Healthz(t *testing.T) {
	app := buildApp(t, nil)

	rec := serve(app, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_RememberFlow_Memory(t *testing.T) {
	assertRememberRoundTrip(t, buildApp(t, nil))
}

func TestApp_RememberFlow_Database(t *testing.T) {
	app := buildApp(t, func(cfg *config.Config) {
		cfg.Remember.Store = "database"
		cfg.Session.Store = "database"
	})

	assertRememberRoundTrip(t, app)

	var count int64
	require.NoError(t, app.DB().Table("remember_records").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestApp_RememberFlow_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	app := buildApp(t, func(cfg *config.Config) {
		cfg.Redis.Addr = mr.Addr()
		cfg.Remember.Store = "redis"
		cfg.Session.Store = "redis"
		cfg.RateLimit.Store = "redis"
	})

	assertRememberRoundTrip(t, app)

	assert.NotEmpty(t, mr.Keys())
}

func TestApp_StartStop(t *testing.T) {
	app := buildApp(t, func(cfg *config.Config) {
		cfg.Server.Host = "127.0.0.1"
		cfg.Server.Port = "0"
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, app.Start(ctx))
	require.NoError(t, app.Stop(ctx))
}
