package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/projecthub/internal/auth"
	"github.com/ayush/projecthub/internal/projects"
	"github.com/ayush/projecthub/internal/store"
	"github.com/ayush/projecthub/internal/users"
	"github.com/ayush/projecthub/internal/web"
)

type testApp struct {
	handler http.Handler
	routes  []Route
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := zap.NewNop()
	db := store.NewMemoryStore()
	sessions := auth.NewMemorySessionStore(time.Hour, time.Hour)
	t.Cleanup(sessions.Close)
	tmpl, err := web.NewTemplates()
	require.NoError(t, err)

	routes := Routes(Handlers{
		Auth:     auth.NewHandler(auth.NewAuthenticator(db, bcrypt.MinCost), sessions, auth.CookieConfig{TTL: time.Hour}, log),
		Projects: projects.NewHandler(db, store.NopActivityLog{}, store.NopArchive{}, log),
		Users:    users.NewHandler(db, sessions, log),
	})
	h := NewRouter(Options{Log: log, Renderer: tmpl, Sessions: sessions, CORSOrigins: []string{"http://localhost"}}, routes)
	return &testApp{handler: h, routes: routes}
}

func (a *testApp) do(method, target string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	r := httptest.NewRequest(method, target, body)
	if form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		r.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, r)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func (a *testApp) login(t *testing.T, login, password string) *http.Cookie {
	t.Helper()
	rec := a.do(http.MethodPost, "/register", url.Values{"login": {login}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	rec = a.do(http.MethodPost, "/login", url.Values{"login": {login}, "password": {password}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/profile", rec.Header().Get("Location"))
	return sessionCookie(t, rec)
}

var pathParams = strings.NewReplacer("{id}", "1", "{pid}", "1", "{fid}", "1")

func TestProtectedRoutesRedirectToLogin(t *testing.T) {
	app := newTestApp(t)

	protected := 0
	for _, rt := range app.routes {
		if !rt.Auth {
			continue
		}
		protected++
		rec := app.do(rt.Method, pathParams.Replace(rt.Pattern), url.Values{"name": {"x"}, "text": {"x"}}, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, "%s %s", rt.Method, rt.Pattern)
		assert.Equal(t, "/login", rec.Header().Get("Location"), "%s %s", rt.Method, rt.Pattern)
	}
	assert.Equal(t, 14, protected)

	// nothing was created behind the gate
	cookie := app.login(t, "alice", "pw1")
	rec := app.do(http.MethodGet, "/projects/1", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp(t)

	for _, p := range []string{"/login", "/register"} {
		rec := app.do(http.MethodGet, p, nil, nil)
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}

	rec := app.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = app.do(http.MethodGet, "/static/style.css", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/nowhere", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisterLoginProfileScenario(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "pw1")

	rec := app.do(http.MethodGet, "/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	rec = app.do(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"wrong"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid login or password")

	rec = app.do(http.MethodPost, "/register", url.Values{"login": {"alice"}, "password": {"pw2"}}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLogoutEndsSession(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "pw1")

	rec := app.do(http.MethodPost, "/logout", nil, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	for _, p := range []string{"/profile", "/projects", "/users"} {
		rec = app.do(http.MethodGet, p, nil, cookie)
		assert.Equal(t, http.StatusSeeOther, rec.Code, p)
		assert.Equal(t, "/login", rec.Header().Get("Location"), p)
	}

	// logging out again is fine
	rec = app.do(http.MethodPost, "/logout", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
}

func TestProjectAndFileFlow(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "pw1")

	rec := app.do(http.MethodPost, "/projects/new", url.Values{"name": {"site"}, "description": {"landing"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects", rec.Header().Get("Location"))

	rec = app.do(http.MethodPost, "/projects/1/new_file", url.Values{"name": {"notes.txt"}, "text": {"hello"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/1/file/1", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/projects/1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "notes.txt")

	rec = app.do(http.MethodPatch, "/projects/1/file/1", url.Values{"text": {"updated"}}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/projects/1/file/1", rec.Header().Get("Location"))

	rec = app.do(http.MethodGet, "/projects/1/file/1", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "updated")

	rec = app.do(http.MethodGet, "/projects/1/file/1/raw", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "updated", rec.Body.String())

	rec = app.do(http.MethodPatch, "/projects/1/file/9", url.Values{"text": {"x"}}, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateFileUnderMissingProject(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "pw1")

	rec := app.do(http.MethodPost, "/projects/999/new_file", url.Values{"name": {"a.txt"}, "text": {"x"}}, cookie)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUsersPages(t *testing.T) {
	app := newTestApp(t)
	cookie := app.login(t, "alice", "pw1")

	rec := app.do(http.MethodGet, "/users", nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice")

	rec = app.do(http.MethodGet, "/users/1", nil, cookie)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodGet, "/users/2", nil, cookie)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginKeepsPasswordWhitespace(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(http.MethodPost, "/register", url.Values{"login": {"alice"}, "password": {"  pw1  "}}, nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	rec = app.do(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"pw1"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodPost, "/login", url.Values{"login": {"alice"}, "password": {"  pw1  "}}, nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/profile", rec.Header().Get("Location"))
}

type unreachableSessions struct{}

func (unreachableSessions) Create(context.Context, int64) (string, error) {
	return "", errors.New("connection refused")
}

func (unreachableSessions) Get(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

func (unreachableSessions) Delete(context.Context, string) error { return nil }

func TestSessionBackendFailureRendersErrorPage(t *testing.T) {
	tmpl, err := web.NewTemplates()
	require.NoError(t, err)
	routes := Routes(Handlers{
		Auth:     &auth.Handler{},
		Projects: &projects.Handler{},
		Users:    &users.Handler{},
	})
	h := NewRouter(Options{Log: zap.NewNop(), Renderer: tmpl, Sessions: unreachableSessions{}}, routes)

	r := httptest.NewRequest(http.MethodGet, "/projects", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "live"})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.Empty(t, rec.Result().Cookies())
}
