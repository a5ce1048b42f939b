package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("failed to read captured output: %v", err)
	}

	return string(out)
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}

	if got := truncate("a long string that needs cutting", 10); got != "a long ..." {
		t.Errorf("expected truncated string, got %q", got)
	}

	if len(truncate(strings.Repeat("x", 1000), 500)) != 500 {
		t.Error("expected truncation to the limit")
	}
}

func TestPrintJSON(t *testing.T) {
	out := captureOutput(t, func() {
		printJSON(map[string]any{"a": 1})
	})

	expected := "{\n  \"a\": 1\n}\n"
	if out != expected {
		t.Errorf("expected %q, got %q", expected, out)
	}
}

func TestSplitLine(t *testing.T) {
	code, amount, err := splitLine("113=100.50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "113" || amount != "100.50" {
		t.Errorf("expected 113/100.50, got %s/%s", code, amount)
	}

	if _, _, err := splitLine("113"); err == nil {
		t.Error("expected error for missing separator")
	}
}

func TestDoRequest(t *testing.T) {
	var gotActor, gotRole, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotActor = r.Header.Get("X-Actor-Id")
		gotRole = r.Header.Get("X-Actor-Role")
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"a-1"}`))
	}))
	defer srv.Close()

	baseURL = srv.URL
	actorID = "tester"
	actorRole = "admin"
	token = ""

	out := captureOutput(t, func() {
		if err := doRequest(http.MethodGet, "/api/v1/accounts/", nil); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	if gotActor != "tester" || gotRole != "admin" {
		t.Errorf("expected actor headers, got %s/%s", gotActor, gotRole)
	}
	if gotAuth != "" {
		t.Errorf("expected no authorization header, got %q", gotAuth)
	}
	if !strings.Contains(out, `"id": "a-1"`) {
		t.Errorf("expected pretty-printed body, got %q", out)
	}

	token = "tok-123"
	captureOutput(t, func() {
		doRequest(http.MethodGet, "/api/v1/accounts/", nil)
	})
	token = ""

	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotActor != "" {
		t.Errorf("expected actor header to be skipped with a token, got %q", gotActor)
	}
}

func TestDoRequest_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"conflict","message":"account code already exists"}`))
	}))
	defer srv.Close()

	baseURL = srv.URL

	err := doRequest(http.MethodPost, "/api/v1/accounts/", map[string]any{"code": "11"})
	if err == nil {
		t.Fatal("expected error for 409 response")
	}
	if !strings.Contains(err.Error(), "status 409") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestDemoChart(t *testing.T) {
	groups := make(map[string]bool)
	codes := make(map[string]bool)

	for _, a := range demoChart {
		if codes[a.code] {
			t.Errorf("duplicate code %s", a.code)
		}
		codes[a.code] = true

		if !a.postable {
			groups[a.code] = true
		}
	}

	for _, a := range demoChart {
		if a.parent == "" {
			if a.postable {
				t.Errorf("postable account %s has no parent", a.code)
			}
			continue
		}

		if !groups[a.parent] {
			t.Errorf("account %s references missing or postable parent %s", a.code, a.parent)
		}
	}

	// The closing and opening engines need these two accounts.
	if !codes["34"] {
		t.Error("chart is missing the current-year earnings account")
	}
	if !codes["33"] {
		t.Error("chart is missing the retained earnings account")
	}
}
