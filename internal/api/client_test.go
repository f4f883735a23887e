package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, serverURL string, tokens TokenSource) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{BaseURL: serverURL, Tokens: tokens})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestBearerAuthHeader(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &StaticTokenSource{Access: "tok-1"})
	if _, err := client.ListConversations(context.Background()); err != nil {
		t.Fatalf("ListConversations() error: %v", err)
	}
	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
}

func TestRefreshRetryOn401(t *testing.T) {
	t.Parallel()

	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/auth/token/refresh/":
			_ = json.NewEncoder(w).Encode(map[string]string{"access": "fresh"})
		case "/chat/conversations/":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"detail":"token expired"}`))
				return
			}
			_, _ = w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	tokens := &StaticTokenSource{Access: "stale", Refresh: "refresh-1"}
	client := newTestClient(t, server.URL, tokens)

	if _, err := client.ListConversations(context.Background()); err != nil {
		t.Fatalf("ListConversations() error: %v", err)
	}

	want := []string{"/chat/conversations/", "/auth/token/refresh/", "/chat/conversations/"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d calls, got %d: %v", len(want), len(paths), paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, paths[i], want[i])
		}
	}
	if tokens.Access != "fresh" {
		t.Errorf("refreshed token not stored, access = %q", tokens.Access)
	}
}

func TestNoRefreshWithoutRefreshToken(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"no"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &StaticTokenSource{Access: "stale"})
	_, err := client.ListConversations(context.Background())
	if !IsAuthError(err) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single attempt, got %d", calls)
	}
}

func TestErrorDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"detail field", http.StatusForbidden, `{"detail":"Not part of this conversation"}`, "Not part of this conversation"},
		{"error field", http.StatusBadRequest, `{"error":"user_id is required"}`, "user_id is required"},
		{"raw body", http.StatusBadGateway, `upstream down`, "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decodeError(tt.status, []byte(tt.body))
			if got.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", got.StatusCode, tt.status)
			}
			if got.Detail != tt.detail {
				t.Errorf("Detail = %q, want %q", got.Detail, tt.detail)
			}
		})
	}
}
