package shared

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("Generates Unique IDs", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := GenerateID()
			if id == "" {
				t.Fatal("expected non-empty id")
			}
			if seen[id] {
				t.Fatalf("duplicate id generated: %s", id)
			}
			seen[id] = true
		}
	})

	t.Run("UUID Shape", func(t *testing.T) {
		id := GenerateID()
		if len(id) != 36 {
			t.Errorf("expected 36-char uuid, got %q", id)
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]any{"title": "Heat", "year": 1995}

	t.Run("Compact", func(t *testing.T) {
		data, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != `{"title":"Heat","year":1995}` {
			t.Errorf("unexpected output: %s", data)
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("pretty output is not valid JSON: %v", err)
		}
		if len(data) <= len(`{"title":"Heat","year":1995}`) {
			t.Error("expected indented output to be longer than compact")
		}
	})

	t.Run("Unmarshalable Value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for unmarshalable value")
		}
	})
}

func TestValidateJSON(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		if err := ValidateJSON([]byte(`{"a": [1, 2, 3]}`)); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		err := ValidateJSON([]byte(`{"a": `))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestVerifyAndReadFile(t *testing.T) {
	t.Run("Reads Existing File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.json")
		if err := os.WriteFile(path, []byte(`{"ok": true}`), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		data, err := VerifyAndReadFile(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(data) != `{"ok": true}` {
			t.Errorf("unexpected content: %s", data)
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := VerifyAndReadFile(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("Directory", func(t *testing.T) {
		_, err := VerifyAndReadFile(t.TempDir())
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	t.Run("Creates Parent Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		logger.Info("hello")
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected log file to exist: %v", err)
		}
		if info.Size() == 0 {
			t.Error("expected log output in file")
		}
	})
}
