package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"anonbox/internal/apperror"
	"anonbox/internal/models"
	"anonbox/internal/service"
	"anonbox/internal/session"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t, nil)
	w := app.client(t).get("/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
	var m map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", m)
	}
}

func TestNoRoute(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)

	expectBody(t, cl.get("/nope"), http.StatusNotFound, "找不到頁面")

	w := cl.getJSON("/nope")
	if w.Code != http.StatusNotFound || !strings.Contains(w.Header().Get("Content-Type"), "application/json") {
		t.Fatalf("expected JSON 404, got %d %s", w.Code, w.Header().Get("Content-Type"))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)
	cl.get("/health")
	expectBody(t, cl.get("/metrics"), http.StatusOK, "anonbox_http_requests_total")
}

func TestErrorPagesKeepPendingNotices(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)

	expectRedirect(t, cl.register("alice", "pw"), "/login")

	w := cl.get("/admin/dashboard")
	expectBody(t, w, http.StatusForbidden, "需要管理員權限")
	if strings.Contains(w.Body.String(), msgRegistered) {
		t.Fatalf("403 page consumed the pending notice")
	}
	w = cl.get("/nope")
	expectBody(t, w, http.StatusNotFound, "找不到頁面")
	if strings.Contains(w.Body.String(), msgRegistered) {
		t.Fatalf("404 page consumed the pending notice")
	}

	expectBody(t, cl.get("/login"), http.StatusOK, msgRegistered)
}

func TestStorageFailureIsGeneric500(t *testing.T) {
	msgs := &mockMessaging{
		recipient: &models.User{ID: 1, Username: "alice", Link: "L"},
		sendErr:   apperror.Storage("系統忙碌中，請稍後再試", errors.New("EROFS /srv/instance/Messages.json")),
	}
	router, _ := newTestRouter(&service.Service{Messaging: msgs}, nil)
	cl := &client{t: t, r: router, cookies: map[string]*http.Cookie{}}

	w := cl.postForm("/l/L", url.Values{"content": {"hi"}})
	expectBody(t, w, http.StatusInternalServerError, msgInternal)
	if strings.Contains(w.Body.String(), "EROFS") {
		t.Fatalf("internal error detail leaked: %s", w.Body.String())
	}
}

func TestPanicIsRecovered(t *testing.T) {
	admin := &mockAdmin{panicOnDashboard: true}
	router, sessions := newTestRouter(&service.Service{Administration: admin}, nil)
	cl := &client{t: t, r: router, cookies: map[string]*http.Cookie{}}

	// plant an admin session directly in the store
	codec := session.NewTokenCodec("test-secret")
	s := &session.Session{ID: "admin-sid", Identity: session.AdminIdentity{Username: "root"}}
	s.CreatedAt = timeNow()
	s.ExpiresAt = s.CreatedAt.Add(session.DefaultTTL)
	if err := sessions.Save(t.Context(), s); err != nil {
		t.Fatalf("save: %v", err)
	}
	value, err := codec.Sign(s.ID, s.CreatedAt, s.ExpiresAt)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	cl.cookies[session.DefaultCookieName] = &http.Cookie{Name: session.DefaultCookieName, Value: value}

	expectBody(t, cl.get("/admin/dashboard"), http.StatusInternalServerError, msgInternal)

	w := cl.getJSON("/api/admin/json/users")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for storage failure, got %d", w.Code)
	}
}
