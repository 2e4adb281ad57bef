package mcp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tableflip.dev/diary/pkg/entry"
)

func TestRunnerEndpoint(t *testing.T) {
	cases := map[string]string{
		"":        "/mcp",
		"  ":      "/mcp",
		"diary":   "/diary",
		"/v1/mcp": "/v1/mcp",
	}
	for in, want := range cases {
		if got := (Runner{HTTPEndpointPath: in}).endpoint(); got != want {
			t.Errorf("endpoint(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunnerTLSPair(t *testing.T) {
	if on, err := (Runner{}).tls(); on || err != nil {
		t.Fatalf("no tls: got %v, %v", on, err)
	}
	if on, err := (Runner{HTTPServerCert: "c", HTTPServerKey: "k"}).tls(); !on || err != nil {
		t.Fatalf("tls: got %v, %v", on, err)
	}
	if _, err := (Runner{HTTPServerCert: "c"}).tls(); !errors.Is(err, ErrTLSPair) {
		t.Fatalf("expected ErrTLSPair, got %v", err)
	}
}

func TestRunnerRequiresService(t *testing.T) {
	if err := (Runner{}).Do(context.Background()); !errors.Is(err, ErrNoService) {
		t.Fatalf("expected ErrNoService, got %v", err)
	}
}

func TestRunnerHealth(t *testing.T) {
	svc := newTestService(t, seedEntry("a", entry.Note, "hello", entry.DateOf(now)))
	r := Runner{App: svc.App}

	rec := httptest.NewRecorder()
	r.health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"entries":1`) {
		t.Fatalf("unexpected body %s", body)
	}
}
