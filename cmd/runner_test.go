package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"reelist/internal/models"
	"reelist/internal/server"
	"reelist/internal/session"
	"reelist/internal/shared"
)

func testRunner(t *testing.T, origin string) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.API.Origin = origin

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config: config,
		Store:  session.NewMemoryStore(),
		Logger: log.New(io.Discard),
		Output: output,
	})
	return runner, output
}

func TestNewRunner(t *testing.T) {
	t.Run("Applies Defaults", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: log.New(io.Discard), Store: session.NewMemoryStore()})

		if runner.config == nil {
			t.Error("expected default config")
		}
		if runner.client == nil || runner.auth == nil || runner.watchlist == nil || runner.metadata == nil {
			t.Error("expected service collaborators to be wired")
		}
		if runner.manager == nil || runner.controller == nil || runner.bus == nil || runner.engine == nil {
			t.Error("expected session and watchlist collaborators to be wired")
		}
	})

	t.Run("Registers All Command Groups", func(t *testing.T) {
		runner, _ := testRunner(t, "")

		commands := runner.register()
		if len(commands) != 7 {
			t.Fatalf("expected 7 command groups, got %d", len(commands))
		}

		names := make(map[string]bool)
		for _, command := range commands {
			names[command.Name] = true
		}
		for _, want := range []string{"setup", "auth", "movies", "watchlist", "api", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected command %s to be registered", want)
			}
		}
	})
}

func TestRunnerOutput(t *testing.T) {
	t.Run("WriteJSON Compact", func(t *testing.T) {
		runner, output := testRunner(t, "")

		if err := runner.writeJSON(map[string]string{"status": "ok"}, false); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "{\"status\":\"ok\"}\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("WriteJSON Pretty", func(t *testing.T) {
		runner, output := testRunner(t, "")

		if err := runner.writeJSON(map[string]string{"status": "ok"}, true); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "  \"status\": \"ok\"") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("WriteJSON Marshal Failure", func(t *testing.T) {
		runner, _ := testRunner(t, "")

		if err := runner.writeJSON(make(chan int), false); err == nil {
			t.Error("expected marshal error")
		}
	})

	t.Run("WritePlain Formats Arguments", func(t *testing.T) {
		runner, output := testRunner(t, "")

		runner.writePlain("saved %d of %d\n", 2, 3)
		if output.String() != "saved 2 of 3\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("WritePlainln Pads With Newlines", func(t *testing.T) {
		runner, output := testRunner(t, "")

		runner.writePlainln("done")
		if output.String() != "\ndone\n" {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("WritePlainHeader Frames The Title", func(t *testing.T) {
		runner, output := testRunner(t, "")

		runner.writePlainHeader("Trending")
		lines := strings.Split(strings.TrimRight(output.String(), "\n"), "\n")
		if len(lines) != 3 || lines[1] != "Trending" {
			t.Errorf("unexpected header: %q", output.String())
		}
	})
}

// TestRunnerSessionWiring exercises the production wiring end to end against
// the demo backend: login arms the auth header, watchlist calls carry it, and
// a dead token tears the session down through the 401 interceptor.
func TestRunnerSessionWiring(t *testing.T) {
	ctx := context.Background()

	backend := httptest.NewServer(server.NewDemoRouter(server.NewDemoStore(), log.New(io.Discard)))
	defer backend.Close()

	t.Run("Signup Arms The Watchlist", func(t *testing.T) {
		runner, _ := testRunner(t, backend.URL)

		user, token, err := runner.auth.Signup(ctx, "alice", "secret")
		if err != nil {
			t.Fatalf("signup failed: %v", err)
		}
		runner.manager.Establish(user, token)

		if _, err := runner.controller.Add(ctx, models.WatchlistItem{MovieID: "42", Title: "Heat"}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if !runner.controller.IsSaved("42") {
			t.Error("expected item in watchlist state")
		}
	})

	t.Run("Dead Token Tears Down Through The Interceptor", func(t *testing.T) {
		runner, _ := testRunner(t, backend.URL)

		runner.manager.Establish(&models.User{ID: "ghost", Username: "ghost"}, "revoked-token")

		if _, err := runner.controller.Add(ctx, models.WatchlistItem{MovieID: "42", Title: "Heat"}); err == nil {
			t.Fatal("expected add with a dead token to fail")
		}
		if user, _ := runner.manager.Current(); user != nil {
			t.Error("expected session cleared after 401")
		}
	})
}
