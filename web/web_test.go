package web

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestTemplates_AllPagesParse(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, name := range []string{
		"index.html", "register.html", "login.html", "message_box.html",
		"anonymous_message.html", "admin_login.html", "admin_dashboard.html", "error.html",
	} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("missing template %s", name)
		}
	}
}

func TestTemplates_FlashesAreEscaped(t *testing.T) {
	tmpl := MustTemplates()
	var buf bytes.Buffer
	data := map[string]any{
		"Flashes": map[string][]string{"error": {"<b>x</b>"}},
		"Now":     time.Now(),
	}
	if err := tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "<b>x</b>") || !strings.Contains(out, "&lt;b&gt;x&lt;/b&gt;") {
		t.Fatalf("flash not escaped: %s", out)
	}
}
