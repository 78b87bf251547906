package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"anonbox/internal/repository"
	"anonbox/internal/service"
	"anonbox/internal/session"
	"anonbox/internal/store"

	"github.com/gin-gonic/gin"
)

const (
	testAdminUser = "root"
	testAdminPass = "hunter2"
)

type testApp struct {
	router   *gin.Engine
	fs       *store.FileStore
	repos    *repository.Repository
	svc      *service.Service
	sessions *session.MemoryStore
}

func newTestRouter(s *service.Service, limiter *RateLimiter) (*gin.Engine, *session.MemoryStore) {
	gin.SetMode(gin.TestMode)
	sessions := session.NewMemoryStore()
	mgr := session.NewManager(sessions, session.NewTokenCodec("test-secret"), session.Options{}, nil)
	h := NewHandler(s, mgr, limiter, nil)
	return h.InitRoutes(), sessions
}

func newTestApp(t *testing.T, limiter *RateLimiter) *testApp {
	t.Helper()
	fs := store.NewFileStore(t.TempDir(), nil)
	if err := fs.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	repos := repository.NewRepository(fs)
	svc := service.NewService(repos, service.AdminCredentials{Username: testAdminUser, Password: testAdminPass})
	router, sessions := newTestRouter(svc, limiter)
	return &testApp{router: router, fs: fs, repos: repos, svc: svc, sessions: sessions}
}

// client is a browser stand-in: it keeps cookies and never follows redirects.
type client struct {
	t       *testing.T
	r       http.Handler
	cookies map[string]*http.Cookie
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, r: a.router, cookies: map[string]*http.Cookie{}}
}

func (cl *client) do(method, path string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	cl.t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	cl.r.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(cl.cookies, ck.Name)
			continue
		}
		cl.cookies[ck.Name] = ck
	}
	return w
}

func (cl *client) get(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodGet, path, nil, nil)
}

func (cl *client) getJSON(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodGet, path, nil, http.Header{"Accept": {"application/json"}})
}

func (cl *client) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, strings.NewReader(form.Encode()),
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})
}

func (cl *client) postJSON(path, body string) *httptest.ResponseRecorder {
	return cl.do(http.MethodPost, path, strings.NewReader(body),
		http.Header{"Content-Type": {"application/json"}})
}

func (cl *client) delete(path string) *httptest.ResponseRecorder {
	return cl.do(http.MethodDelete, path, nil, nil)
}

func (cl *client) register(username, password string) *httptest.ResponseRecorder {
	return cl.postForm("/register", url.Values{"username": {username}, "password": {password}})
}

func (cl *client) login(username, password string) *httptest.ResponseRecorder {
	return cl.postForm("/login", url.Values{"username": {username}, "password": {password}})
}

func (cl *client) loginAdmin() *httptest.ResponseRecorder {
	return cl.postForm("/admin/login", url.Values{"username": {testAdminUser}, "password": {testAdminPass}})
}

func expectRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	if w.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d (body=%s)", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != location {
		t.Fatalf("expected redirect to %q, got %q", location, got)
	}
}

func expectBody(t *testing.T, w *httptest.ResponseRecorder, code int, contains ...string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("expected %d, got %d (body=%s)", code, w.Code, w.Body.String())
	}
	for _, s := range contains {
		if !strings.Contains(w.Body.String(), s) {
			t.Fatalf("body does not contain %q:\n%s", s, w.Body.String())
		}
	}
}

func timeNow() time.Time { return time.Now().UTC() }
