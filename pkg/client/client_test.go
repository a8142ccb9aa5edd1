package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naveenspark/fridge/internal/logging"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

// mutableToken mimics a session whose token changes between calls.
type mutableToken struct{ tok string }

func (m *mutableToken) Token() string { return m.tok }

func TestListFridges(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/fridges" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "not authenticated"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode([]map[string]any{ //nolint:errcheck
			{"id": 1, "name": "Home", "roleOfCurrentUser": "owner"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("test-token"))
	fridges, err := c.ListFridges(context.Background())
	if err != nil {
		t.Fatalf("ListFridges() error: %v", err)
	}
	if len(fridges) != 1 {
		t.Fatalf("got %d fridges, want 1", len(fridges))
	}
	f := fridges[0].(map[string]any)
	if f["id"] != json.Number("1") {
		t.Errorf("id = %#v, want json.Number(1)", f["id"])
	}
}

func TestListFridges_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "not authenticated"}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, staticToken("bad-token"))
	_, err := c.ListFridges(context.Background())
	if err == nil {
		t.Fatal("expected error for unauthorized request")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("IsStatus(401) = false for %v", err)
	}
	if got := ErrorMessage(err); got != "not authenticated" {
		t.Errorf("ErrorMessage = %q, want %q", got, "not authenticated")
	}
}

func TestDo_StatusFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, nil)
	payload, err := c.Do(context.Background(), http.MethodGet, "/api/units", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Message != "HTTP 502" {
		t.Errorf("Message = %q, want HTTP 502", apiErr.Message)
	}
	if payload != "<html>bad gateway</html>" {
		t.Errorf("payload = %#v, want raw text", payload)
	}
}

func TestDo_EmptyBodyIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	payload, err := New(srv.URL, nil).Do(context.Background(), http.MethodPost, "/api/fridges", map[string]string{"name": "x"})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if payload != nil {
		t.Errorf("payload = %#v, want nil", payload)
	}
}

func TestDo_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).Do(context.Background(), http.MethodGet, "/api/fridges", nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T: %v", err, err)
	}
	if ErrorMessage(err) == "" {
		t.Error("network error message should not be empty")
	}
}

func TestDo_TokenReadPerCall(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.Write([]byte("[]")) //nolint:errcheck
	}))
	defer srv.Close()

	tok := &mutableToken{}
	c := New(srv.URL, tok)
	c.ListUnits(context.Background()) //nolint:errcheck
	tok.tok = "fresh"
	c.ListUnits(context.Background()) //nolint:errcheck

	if len(seen) != 2 || seen[0] != "" || seen[1] != "Bearer fresh" {
		t.Errorf("Authorization headers = %q", seen)
	}
}

func TestListHelpers_NonArrayIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"items":[1,2]}`)) //nolint:errcheck
	}))
	defer srv.Close()

	items, err := New(srv.URL, nil).ListProducts(context.Background())
	if err != nil {
		t.Fatalf("ListProducts() error: %v", err)
	}
	if items == nil || len(items) != 0 {
		t.Errorf("items = %#v, want empty slice", items)
	}
}

func TestListFridgeItems_EscapesID(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte("[]")) //nolint:errcheck
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil).ListFridgeItems(context.Background(), "a b"); err != nil {
		t.Fatalf("ListFridgeItems() error: %v", err)
	}
	if gotPath != "/api/fridge-items/a%20b" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestAddFridgeItem_Body(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/fridge-items" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
		w.Write([]byte(`{"message":"added"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	date := "2026-10-20"
	payload, err := New(srv.URL, staticToken("t")).AddFridgeItem(context.Background(), AddFridgeItemRequest{
		FridgeID:       "f1",
		ProductID:      "p1",
		Amount:         2,
		Unit:           "kg",
		BestBeforeDate: &date,
	})
	if err != nil {
		t.Fatalf("AddFridgeItem() error: %v", err)
	}
	if MessageOf(payload, "") != "added" {
		t.Errorf("message = %q", MessageOf(payload, ""))
	}
	if body["customName"] != nil || body["openDate"] != nil {
		t.Errorf("optional fields should be null: %v", body)
	}
	if body["bestBeforeDate"] != "2026-10-20" || body["amount"] != float64(2) {
		t.Errorf("body = %v", body)
	}
}

func TestConnect(t *testing.T) {
	tests := []struct {
		name string
		path string
		resp string
		want string
	}{
		{"default path with message", DefaultConnectPath, `{"message":"linked"}`, "linked"},
		{"custom path without message", "/api/connect", `{}`, "OK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != tt.path {
					http.NotFound(w, r)
					return
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
				if body["ean"] != "5901234123457" {
					t.Errorf("ean = %q", body["ean"])
				}
				w.Write([]byte(tt.resp)) //nolint:errcheck
			}))
			defer srv.Close()

			c := New(srv.URL, nil, WithConnectPath(tt.path))
			msg, err := c.Connect(context.Background(), "5901234123457")
			if err != nil {
				t.Fatalf("Connect() error: %v", err)
			}
			if msg != tt.want {
				t.Errorf("message = %q, want %q", msg, tt.want)
			}
		})
	}
}

func TestMessageOf(t *testing.T) {
	if got := MessageOf(map[string]any{"message": ""}, "fallback"); got != "fallback" {
		t.Errorf("empty message: got %q", got)
	}
	if got := MessageOf("plain", "fallback"); got != "fallback" {
		t.Errorf("string payload: got %q", got)
	}
	if got := MessageOf(nil, "fallback"); got != "fallback" {
		t.Errorf("nil payload: got %q", got)
	}
}

func TestLoggingTransport(t *testing.T) {
	long := strings.Repeat("x", 600)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"` + long + `"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	var buf bytes.Buffer
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	c := New(srv.URL, nil, WithTransport(NewLoggingTransport(nil, logger)))

	_, err := c.CreateFridge(context.Background(), "Garage")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != long {
		t.Error("response body must reach the client untouched")
	}

	out := buf.String()
	for _, want := range []string{"request_id=", "method=POST", `{\"name\":\"Garage\"}`, "status=500", "level=ERROR"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in log:\n%s", want, out)
		}
	}
	if strings.Contains(out, long) {
		t.Error("logged body should be truncated")
	}
}

func TestLoggingTransport_RestoresBody(t *testing.T) {
	rt := NewLoggingTransport(roundTripFunc(func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(strings.NewReader(`[1]`)),
			Header:     http.Header{},
		}, nil
	}), logging.Discard())

	req, _ := http.NewRequest(http.MethodGet, "http://example.test/api/units", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	if string(data) != "[1]" {
		t.Errorf("body = %q, want [1]", data)
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestWithHTTPClient_DoesNotMutateCaller(t *testing.T) {
	base := &http.Client{Timeout: 5 * time.Second}
	rt := roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, errors.New("unused") })

	c := New("http://example.test", nil, WithHTTPClient(base), WithTimeout(time.Second), WithTransport(rt))

	if base.Timeout != 5*time.Second || base.Transport != nil {
		t.Errorf("caller's client changed: timeout=%s transport=%v", base.Timeout, base.Transport)
	}
	if c.httpClient == base {
		t.Fatal("client should hold its own copy")
	}
	if c.httpClient.Timeout != time.Second {
		t.Errorf("timeout = %s, want 1s", c.httpClient.Timeout)
	}
}

func TestWithTransport_LeavesDefaultClientAlone(t *testing.T) {
	before := http.DefaultClient.Transport
	New("http://example.test", nil, WithHTTPClient(http.DefaultClient), WithTransport(NewLoggingTransport(nil, logging.Discard())))
	if http.DefaultClient.Transport != before {
		t.Error("http.DefaultClient must not be modified")
	}
}
