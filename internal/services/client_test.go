package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"reelist/internal/shared"
	tu "reelist/internal/testing"
)

func TestClient(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("Trims Trailing Slash From Origin", func(t *testing.T) {
			client := NewClient("http://example.com/", nil)
			if client.origin != "http://example.com" {
				t.Errorf("expected trimmed origin, got %s", client.origin)
			}
		})

		t.Run("With Nil Client", func(t *testing.T) {
			client := NewClient("http://example.com", nil)
			if client.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
		})

		t.Run("Empty Origin Targets Same Host", func(t *testing.T) {
			client := NewClient("", nil)
			if client.origin != "" {
				t.Errorf("expected empty origin, got %s", client.origin)
			}
		})
	})

	t.Run("Do", func(t *testing.T) {
		t.Run("Prefixes Paths With The API Base", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/watchlist" {
					t.Errorf("expected path '/api/watchlist', got %s", r.URL.Path)
				}
				json.NewEncoder(w).Encode(map[string]any{"watchlist": []any{}})
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			if err := client.Do(context.Background(), http.MethodGet, "/watchlist", nil, nil); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})

		t.Run("Sends Bearer Token When Armed", func(t *testing.T) {
			var authHeader string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authHeader = r.Header.Get("Authorization")
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			client.SetAuthToken("tok-1")
			client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if authHeader != "Bearer tok-1" {
				t.Errorf("expected 'Bearer tok-1', got %q", authHeader)
			}
		})

		t.Run("Empty Token Removes The Header", func(t *testing.T) {
			var authHeader string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				authHeader = r.Header.Get("Authorization")
				w.Write([]byte("{}"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			client.SetAuthToken("tok-1")
			client.SetAuthToken("")
			client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if authHeader != "" {
				t.Errorf("expected no auth header, got %q", authHeader)
			}
		})

		t.Run("Marshals Body And Decodes Result", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Content-Type") != "application/json" {
					t.Errorf("expected JSON content type, got %s", r.Header.Get("Content-Type"))
				}
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				json.NewEncoder(w).Encode(map[string]string{"echo": body["name"]})
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			var result struct {
				Echo string `json:"echo"`
			}
			err := client.Do(context.Background(), http.MethodPost, "/test", map[string]string{"name": "alice"}, &result)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Echo != "alice" {
				t.Errorf("expected echo 'alice', got %s", result.Echo)
			}
		})

		t.Run("Unauthorized Fires Hook Then Returns Error", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			var hookMessage string
			client.OnUnauthorized(func(message string) { hookMessage = message })

			err := client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if !errors.Is(err, shared.ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}
			if hookMessage == "" {
				t.Error("expected hook to receive a message")
			}
		})

		t.Run("Unauthorized Without Hook Still Errors", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			err := client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if !errors.Is(err, shared.ErrSessionExpired) {
				t.Errorf("expected ErrSessionExpired, got %v", err)
			}
		})

		t.Run("Non 2xx Wraps ErrAPIRequest", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "bad input"}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			err := client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "bad input") {
				t.Errorf("expected body in error, got %v", err)
			}
		})

		t.Run("Failed HTTP Request", func(t *testing.T) {
			httpClient := &http.Client{
				Transport: tu.NewMockRoundTripper(nil, errors.New("connection failed")),
			}

			client := NewClient("http://example.com", httpClient)
			err := client.Do(context.Background(), http.MethodGet, "/test", nil, nil)

			if err == nil || !strings.Contains(err.Error(), "request failed") {
				t.Errorf("expected 'request failed' error, got %v", err)
			}
		})

		t.Run("Invalid Response JSON", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			var result map[string]any
			err := client.Do(context.Background(), http.MethodGet, "/test", nil, &result)

			if err == nil || !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode error, got %v", err)
			}
		})
	})

	t.Run("ResolveURL", func(t *testing.T) {
		client := NewClient("http://example.com", nil)

		cases := []struct {
			name string
			in   string
			want string
		}{
			{"Empty Input", "", ""},
			{"Origin Relative Path", "/api/avatars/u1", "http://example.com/api/avatars/u1"},
			{"Full HTTP URL Passes Through", "http://cdn.example.com/a.jpg", "http://cdn.example.com/a.jpg"},
			{"Full HTTPS URL Passes Through", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
			{"Bare Path Passes Through", "a.jpg", "a.jpg"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				if got := client.ResolveURL(tc.in); got != tc.want {
					t.Errorf("expected %q, got %q", tc.want, got)
				}
			})
		}
	})

	t.Run("Raw", func(t *testing.T) {
		t.Run("Get Returns Raw Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Test", "yes")
				json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			resp, err := client.Get(context.Background(), "/health")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Errorf("expected 200, got %d", resp.StatusCode)
			}
			if !resp.IsJSON || resp.JSONData == nil {
				t.Error("expected JSON response to be detected")
			}
			if resp.Headers.Get("X-Test") != "yes" {
				t.Error("expected headers to be preserved")
			}
		})

		t.Run("Post Sends Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var body map[string]string
				json.NewDecoder(r.Body).Decode(&body)
				if body["k"] != "v" {
					t.Errorf("expected request body {k: v}, got %v", body)
				}
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"created": true}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			resp, err := client.Post(context.Background(), "/test", []byte(`{"k":"v"}`))

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.StatusCode != http.StatusCreated {
				t.Errorf("expected 201, got %d", resp.StatusCode)
			}
		})

		t.Run("Unauthorized Fires Hook But Returns The Response", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error": "authentication required"}`))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			fired := false
			client.OnUnauthorized(func(string) { fired = true })

			resp, err := client.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected raw response without error, got %v", err)
			}
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", resp.StatusCode)
			}
			if !fired {
				t.Error("expected interceptor to fire")
			}
		})

		t.Run("Non JSON Body", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain text"))
			}))
			defer server.Close()

			client := NewClient(server.URL, nil)
			resp, err := client.Get(context.Background(), "/test")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if resp.IsJSON || resp.JSONData != nil {
				t.Error("expected non-JSON response")
			}
			if string(resp.Body) != "plain text" {
				t.Errorf("expected body preserved, got %s", string(resp.Body))
			}
		})
	})
}
