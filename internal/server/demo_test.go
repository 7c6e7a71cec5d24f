package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
)

func demoServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(NewDemoRouter(NewDemoStore(), log.New(io.Discard)))
	t.Cleanup(server.Close)
	return server
}

// request issues a JSON request with an optional bearer token and decodes the
// response body into a generic map.
func request(t *testing.T, method, url, token string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var decoded map[string]any
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

// signup registers an account and returns its token.
func signup(t *testing.T, baseURL, username, password string) string {
	t.Helper()

	status, body := request(t, http.MethodPost, baseURL+"/api/auth/signup", "", map[string]string{
		"username": username, "password": password,
	})
	if status != http.StatusCreated {
		t.Fatalf("signup failed with status %d: %v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("signup returned no token")
	}
	return token
}

func TestDemoHealth(t *testing.T) {
	server := demoServer(t)

	status, body := request(t, http.MethodGet, server.URL+"/api/health", "", nil)
	if status != http.StatusOK {
		t.Errorf("expected 200, got %d", status)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestDemoAuth(t *testing.T) {
	t.Run("Signup", func(t *testing.T) {
		t.Run("Creates Account With Token", func(t *testing.T) {
			server := demoServer(t)

			status, body := request(t, http.MethodPost, server.URL+"/api/auth/signup", "", map[string]string{
				"username": "alice", "password": "secret",
			})
			if status != http.StatusCreated {
				t.Fatalf("expected 201, got %d", status)
			}
			user, _ := body["user"].(map[string]any)
			if user["username"] != "alice" || body["token"] == "" {
				t.Errorf("unexpected body: %v", body)
			}
		})

		t.Run("Duplicate Username Conflicts", func(t *testing.T) {
			server := demoServer(t)
			signup(t, server.URL, "alice", "secret")

			status, _ := request(t, http.MethodPost, server.URL+"/api/auth/signup", "", map[string]string{
				"username": "alice", "password": "other",
			})
			if status != http.StatusConflict {
				t.Errorf("expected 409, got %d", status)
			}
		})

		t.Run("Missing Fields", func(t *testing.T) {
			server := demoServer(t)

			status, _ := request(t, http.MethodPost, server.URL+"/api/auth/signup", "", map[string]string{
				"username": "alice",
			})
			if status != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", status)
			}
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("Issues Fresh Token", func(t *testing.T) {
			server := demoServer(t)
			first := signup(t, server.URL, "alice", "secret")

			status, body := request(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
				"username": "alice", "password": "secret",
			})
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			if body["token"] == first {
				t.Error("expected a fresh token per login")
			}
		})

		t.Run("Bad Credentials Are Rejected Not Expired", func(t *testing.T) {
			server := demoServer(t)
			signup(t, server.URL, "alice", "secret")

			status, body := request(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
				"username": "alice", "password": "wrong",
			})
			if status != http.StatusBadRequest {
				t.Errorf("expected 400 for bad credentials, got %d", status)
			}
			if body["error"] != "invalid username or password" {
				t.Errorf("unexpected error message: %v", body)
			}
		})
	})

	t.Run("Me", func(t *testing.T) {
		t.Run("Requires A Bearer Token", func(t *testing.T) {
			server := demoServer(t)

			status, body := request(t, http.MethodGet, server.URL+"/api/auth/me", "", nil)
			if status != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", status)
			}
			if body["error"] != "authentication required" {
				t.Errorf("unexpected error message: %v", body)
			}
		})

		t.Run("Returns The Authenticated User", func(t *testing.T) {
			server := demoServer(t)
			token := signup(t, server.URL, "alice", "secret")

			status, body := request(t, http.MethodGet, server.URL+"/api/auth/me", token, nil)
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			user, _ := body["user"].(map[string]any)
			if user["username"] != "alice" {
				t.Errorf("unexpected user: %v", body)
			}
		})
	})

	t.Run("Profile", func(t *testing.T) {
		t.Run("Renames The Account", func(t *testing.T) {
			server := demoServer(t)
			token := signup(t, server.URL, "alice", "secret")

			status, body := request(t, http.MethodPut, server.URL+"/api/auth/profile", token, map[string]string{
				"username": "alice2",
			})
			if status != http.StatusOK {
				t.Fatalf("expected 200, got %d", status)
			}
			user, _ := body["user"].(map[string]any)
			if user["username"] != "alice2" {
				t.Errorf("unexpected user: %v", body)
			}

			// Old name is free again
			signup(t, server.URL, "alice", "secret")
		})

		t.Run("Taken Username Conflicts", func(t *testing.T) {
			server := demoServer(t)
			signup(t, server.URL, "bob", "secret")
			token := signup(t, server.URL, "alice", "secret")

			status, _ := request(t, http.MethodPut, server.URL+"/api/auth/profile", token, map[string]string{
				"username": "bob",
			})
			if status != http.StatusConflict {
				t.Errorf("expected 409, got %d", status)
			}
		})
	})

	t.Run("Account Deletion", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		status, body := request(t, http.MethodDelete, server.URL+"/api/auth/account", token, nil)
		if status != http.StatusOK || body["deleted"] != true {
			t.Fatalf("expected deletion, got %d %v", status, body)
		}

		// Token is revoked with the account
		status, _ = request(t, http.MethodGet, server.URL+"/api/auth/me", token, nil)
		if status != http.StatusUnauthorized {
			t.Errorf("expected 401 after deletion, got %d", status)
		}
	})
}

func TestDemoAvatars(t *testing.T) {
	raw := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 0x4A, 0x46, 0x49, 0x46}
	encoded := base64.StdEncoding.EncodeToString(raw)

	t.Run("Upload And Serve Round Trip", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		status, body := request(t, http.MethodPost, server.URL+"/api/auth/avatar", token, map[string]string{
			"avatar": encoded,
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		user, _ := body["user"].(map[string]any)
		avatarURL, _ := user["avatarUrl"].(string)
		if avatarURL == "" {
			t.Fatalf("expected avatar URL, got %v", user)
		}

		resp, err := http.Get(server.URL + avatarURL)
		if err != nil {
			t.Fatalf("failed to fetch avatar: %v", err)
		}
		defer resp.Body.Close()

		served, _ := io.ReadAll(resp.Body)
		if !bytes.Equal(served, raw) {
			t.Error("expected served bytes to match the upload")
		}
		if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("expected detected jpeg content type, got %s", ct)
		}
	})

	t.Run("Invalid Base64 Is Rejected", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		status, _ := request(t, http.MethodPost, server.URL+"/api/auth/avatar", token, map[string]string{
			"avatar": "not base64!!!",
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("Remove Clears The URL", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")
		request(t, http.MethodPost, server.URL+"/api/auth/avatar", token, map[string]string{"avatar": encoded})

		status, body := request(t, http.MethodDelete, server.URL+"/api/auth/avatar", token, nil)
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		user, _ := body["user"].(map[string]any)
		if url, _ := user["avatarUrl"].(string); url != "" {
			t.Errorf("expected cleared avatar URL, got %q", url)
		}
	})

	t.Run("Missing Avatar Is Not Found", func(t *testing.T) {
		server := demoServer(t)

		resp, err := http.Get(server.URL + "/api/avatars/nobody")
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
	})
}

func TestDemoUsers(t *testing.T) {
	t.Run("Create Or Fetch By Username", func(t *testing.T) {
		server := demoServer(t)

		status, body := request(t, http.MethodPost, server.URL+"/api/users", "", map[string]string{
			"username": "demo",
		})
		if status != http.StatusOK {
			t.Fatalf("expected 200, got %d", status)
		}
		first, _ := body["user"].(map[string]any)

		_, body = request(t, http.MethodPost, server.URL+"/api/users", "", map[string]string{
			"username": "demo",
		})
		second, _ := body["user"].(map[string]any)

		if first["id"] != second["id"] {
			t.Error("expected the same account for repeated requests")
		}
	})

	t.Run("Missing Username", func(t *testing.T) {
		server := demoServer(t)

		status, _ := request(t, http.MethodPost, server.URL+"/api/users", "", map[string]string{})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})
}

func TestDemoWatchlist(t *testing.T) {
	movie := map[string]any{"movie": map[string]string{"id": "42", "title": "Heat", "poster": "heat.jpg"}}

	t.Run("All Routes Require Authentication", func(t *testing.T) {
		server := demoServer(t)

		for _, tc := range []struct {
			method, path string
		}{
			{http.MethodGet, "/api/watchlist"},
			{http.MethodPost, "/api/watchlist"},
			{http.MethodDelete, "/api/watchlist/42"},
		} {
			status, _ := request(t, tc.method, server.URL+tc.path, "", nil)
			if status != http.StatusUnauthorized {
				t.Errorf("%s %s: expected 401, got %d", tc.method, tc.path, status)
			}
		}
	})

	t.Run("Add Then List", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		status, body := request(t, http.MethodPost, server.URL+"/api/watchlist", token, movie)
		if status != http.StatusCreated {
			t.Fatalf("expected 201, got %d", status)
		}
		item, _ := body["item"].(map[string]any)
		if item["title"] != "Heat" {
			t.Errorf("unexpected item: %v", body)
		}

		_, body = request(t, http.MethodGet, server.URL+"/api/watchlist", token, nil)
		list, _ := body["watchlist"].([]any)
		if len(list) != 1 {
			t.Errorf("expected 1 saved item, got %v", body)
		}
	})

	t.Run("Re-Add Replaces Instead Of Duplicating", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		request(t, http.MethodPost, server.URL+"/api/watchlist", token, movie)
		request(t, http.MethodPost, server.URL+"/api/watchlist", token, map[string]any{
			"movie": map[string]string{"id": "42", "title": "Heat (1995)"},
		})

		_, body := request(t, http.MethodGet, server.URL+"/api/watchlist", token, nil)
		list, _ := body["watchlist"].([]any)
		if len(list) != 1 {
			t.Fatalf("expected 1 item after re-add, got %v", body)
		}
		entry, _ := list[0].(map[string]any)
		if entry["title"] != "Heat (1995)" {
			t.Errorf("expected refreshed entry, got %v", entry)
		}
	})

	t.Run("Missing Movie Fields", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")

		status, _ := request(t, http.MethodPost, server.URL+"/api/watchlist", token, map[string]any{
			"movie": map[string]string{"id": "42"},
		})
		if status != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", status)
		}
	})

	t.Run("Delete Reports Dropped Count", func(t *testing.T) {
		server := demoServer(t)
		token := signup(t, server.URL, "alice", "secret")
		request(t, http.MethodPost, server.URL+"/api/watchlist", token, movie)

		status, body := request(t, http.MethodDelete, server.URL+"/api/watchlist/42", token, nil)
		if status != http.StatusOK || body["deleted"] != float64(1) {
			t.Errorf("expected 1 deleted, got %d %v", status, body)
		}

		// Second delete finds nothing
		_, body = request(t, http.MethodDelete, server.URL+"/api/watchlist/42", token, nil)
		if body["deleted"] != float64(0) {
			t.Errorf("expected 0 deleted, got %v", body)
		}
	})

	t.Run("Watchlists Are Per User", func(t *testing.T) {
		server := demoServer(t)
		alice := signup(t, server.URL, "alice", "secret")
		bob := signup(t, server.URL, "bob", "secret")

		request(t, http.MethodPost, server.URL+"/api/watchlist", alice, movie)

		_, body := request(t, http.MethodGet, server.URL+"/api/watchlist", bob, nil)
		list, _ := body["watchlist"].([]any)
		if len(list) != 0 {
			t.Errorf("expected empty list for other user, got %v", body)
		}
	})
}
