package handlers

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
)

func TestMessages_AnonymousSendReachesInbox(t *testing.T) {
	app := newTestApp(t, nil)
	owner := app.client(t)
	owner.register("alice", "pw")
	owner.login("alice", "pw")
	alice := app.repos.Users.FindByUsername("alice")

	visitor := app.client(t)
	expectBody(t, visitor.get("/l/"+alice.Link), http.StatusOK, "匿名留言給 alice")

	expectRedirect(t, visitor.postForm("/l/"+alice.Link, url.Values{"content": {"  hello  "}}), "/l/"+alice.Link)
	expectBody(t, visitor.get("/l/"+alice.Link), http.StatusOK, "訊息已送出")

	expectBody(t, owner.get("/message_box"), http.StatusOK,
		"hello",
		"http://example.com/l/"+alice.Link,
	)
}

func TestMessages_EmptyContentRejected(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)
	cl.register("alice", "pw")
	alice := app.repos.Users.FindByUsername("alice")

	expectRedirect(t, cl.postForm("/l/"+alice.Link, url.Values{"content": {"   "}}), "/l/"+alice.Link)
	expectBody(t, cl.get("/l/"+alice.Link), http.StatusOK, "訊息內容不能為空")
	if n := len(app.repos.Messages.List()); n != 0 {
		t.Fatalf("empty message stored: %d rows", n)
	}
}

func TestMessages_UnknownLink(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)

	expectRedirect(t, cl.get("/l/doesnotexist"), "/")
	expectBody(t, cl.get("/"), http.StatusOK, "無效的連結")

	expectRedirect(t, cl.postForm("/l/doesnotexist", url.Values{"content": {"hi"}}), "/")
	if n := len(app.repos.Messages.List()); n != 0 {
		t.Fatalf("message stored for unknown link")
	}
}

func TestMessages_InboxRequiresLogin(t *testing.T) {
	app := newTestApp(t, nil)
	owner := app.client(t)
	owner.register("alice", "pw")
	alice := app.repos.Users.FindByUsername("alice")
	if _, err := app.repos.Messages.Create(alice.ID, "secret note"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w := app.client(t).get("/message_box")
	expectRedirect(t, w, "/login")
	if strings.Contains(w.Body.String(), "secret note") {
		t.Fatalf("inbox content leaked to anonymous visitor")
	}
}

func TestMessages_InboxNewestFirst(t *testing.T) {
	app := newTestApp(t, nil)
	cl := app.client(t)
	cl.register("alice", "pw")
	cl.login("alice", "pw")
	alice := app.repos.Users.FindByUsername("alice")

	for _, c := range []string{"msg-A", "msg-B", "msg-C"} {
		if _, err := app.repos.Messages.Create(alice.ID, c); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	body := cl.get("/message_box").Body.String()
	a, b, c := strings.Index(body, "msg-A"), strings.Index(body, "msg-B"), strings.Index(body, "msg-C")
	if !(c < b && b < a) {
		t.Fatalf("expected C, B, A order; positions %d %d %d", c, b, a)
	}
}

func TestMessages_RateLimitedSend(t *testing.T) {
	app := newTestApp(t, NewRateLimiter(0.001, 1))
	cl := app.client(t)
	cl.register("alice", "pw")
	alice := app.repos.Users.FindByUsername("alice")

	cl.postForm("/l/"+alice.Link, url.Values{"content": {"one"}})
	w := cl.postForm("/l/"+alice.Link, url.Values{"content": {"two"}})
	expectBody(t, w, http.StatusTooManyRequests, "請求過於頻繁")
	if n := len(app.repos.Messages.List()); n != 1 {
		t.Fatalf("expected 1 stored message, got %d", n)
	}
}
