package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, zerolog.Nop()), srv
}

func envelope(t *testing.T, w http.ResponseWriter, status int, data any, message string) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Envelope{
		Success: status < 400,
		Message: message,
		Data:    raw,
	})
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		envelope(t, w, http.StatusOK, map[string]string{"ok": "yes"}, "")
	})

	var out map[string]string
	if err := c.do(context.Background(), http.MethodGet, "/users", nil, "tok123", nil, &out); err != nil {
		t.Fatalf("do returned error: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestClient_NoAuthHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		envelope(t, w, http.StatusOK, nil, "")
	})

	if err := c.do(context.Background(), http.MethodPost, "/auth/login", nil, "", map[string]string{"username": "a"}, nil); err != nil {
		t.Fatalf("do returned error: %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no auth header, got %q", gotAuth)
	}
}

func TestClient_BasePathAndQuery(t *testing.T) {
	var gotPath, gotQuery string
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		envelope(t, w, http.StatusOK, []int{}, "")
	})

	var out []int
	q := map[string][]string{"status": {"ACTIVE"}}
	if err := c.do(context.Background(), http.MethodGet, "/users", q, "t", nil, &out); err != nil {
		t.Fatalf("do returned error: %v", err)
	}
	if gotPath != "/api/v1/users" {
		t.Fatalf("expected /api/v1 prefix, got %s", gotPath)
	}
	if gotQuery != "status=ACTIVE" {
		t.Fatalf("unexpected query %q", gotQuery)
	}
}

func TestClient_UnwrapsEnvelopeData(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusOK, map[string]any{"id": 7, "name": "books"}, "ok")
	})

	var out struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	if err := c.do(context.Background(), http.MethodGet, "/categories/7", nil, "t", nil, &out); err != nil {
		t.Fatalf("do returned error: %v", err)
	}
	if out.ID != 7 || out.Name != "books" {
		t.Fatalf("unexpected data: %+v", out)
	}
}

func TestClient_HTTPErrorCarriesEnvelopeMessage(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(Envelope{
			Success: false,
			Message: "username already taken",
			Errors:  []string{"username must be unique"},
		})
	})

	err := c.do(context.Background(), http.MethodPost, "/users", nil, "t", map[string]string{}, nil)
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", he.Status)
	}
	if he.Message != "username already taken" {
		t.Fatalf("unexpected message %q", he.Message)
	}
	if len(he.Errors) != 1 {
		t.Fatalf("expected envelope errors to survive, got %v", he.Errors)
	}
}

func TestClient_SuccessFalseOn200IsAnError(t *testing.T) {
	c, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Envelope{Success: false, Message: "backend said no"})
	})

	err := c.do(context.Background(), http.MethodGet, "/users", nil, "t", nil, nil)
	var he *HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if he.Message != "backend said no" {
		t.Fatalf("unexpected message %q", he.Message)
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := NewClient(srv.URL, time.Second, zerolog.Nop())
	srv.Close()

	err := c.do(context.Background(), http.MethodGet, "/users", nil, "t", nil, nil)
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
}
