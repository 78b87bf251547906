package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"anonbox/internal/session"

	"github.com/gin-gonic/gin"
)

func TestRateLimiter_PerKeyBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatalf("burst of 2 should pass")
	}
	if rl.Allow("a") {
		t.Fatalf("third request inside the same instant should be rejected")
	}
	if !rl.Allow("b") {
		t.Fatalf("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("a") {
		t.Fatalf("bucket should refill after one second")
	}
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	rl.Allow("old")
	now = now.Add(rl.idleTTL + time.Second)
	rl.Allow("fresh")
	rl.Cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if _, ok := rl.limiters["old"]; ok {
		t.Fatalf("idle limiter kept")
	}
	if _, ok := rl.limiters["fresh"]; !ok {
		t.Fatalf("active limiter dropped")
	}
}

func TestRateLimiter_RunCleanupStops(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		rl.RunCleanup(ctx, time.Millisecond)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop did not stop")
	}
}

func postLoginFrom(r http.Handler, forwardedFor string) int {
	form := url.Values{"username": {"x"}, "password": {"y"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimit_IgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	app := newTestApp(t, NewRateLimiter(0.001, 2))

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, postLoginFrom(app.router, "203.0.113."+strconv.Itoa(i+1)))
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("rotating X-Forwarded-For must not reset the bucket, got %v", codes)
	}
}

func TestRateLimit_HonoursForwardedForFromTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := session.NewManager(session.NewMemoryStore(), session.NewTokenCodec("test-secret"), session.Options{}, nil)
	h := NewHandler(newTestApp(t, nil).svc, mgr, NewRateLimiter(0.001, 1), nil)
	// httptest requests come from 192.0.2.1
	h.TrustProxies([]string{"192.0.2.0/24"})
	router := h.InitRoutes()

	if code := postLoginFrom(router, "203.0.113.1"); code == http.StatusTooManyRequests {
		t.Fatalf("first request from a client must pass")
	}
	if code := postLoginFrom(router, "203.0.113.2"); code == http.StatusTooManyRequests {
		t.Fatalf("distinct clients behind a trusted proxy share a bucket")
	}
	if code := postLoginFrom(router, "203.0.113.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for a repeated client, got %d", code)
	}
}
