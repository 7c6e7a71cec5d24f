package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"reelist/internal/models"
)

// document is the on-disk session shape.
type document struct {
	User  *models.User `json:"user,omitempty"`
	Token string       `json:"token,omitempty"`
}

// FileStore persists session state as a single JSON document.
//
// The default location is ~/.reelist/session.json. A missing or unparsable
// file reads as "no session"; only filesystem errors surface as storage
// failures.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore at the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultStorePath returns the session file location under the user's home directory.
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".reelist", "session.json")
	}
	return filepath.Join(home, ".reelist", "session.json")
}

// read loads the document. Missing file and malformed JSON both yield an
// empty document with ok=false; only I/O failures return an error.
func (f *FileStore) read() (document, bool, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return document{}, false, nil
	}
	if err != nil {
		return document{}, false, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, false, nil
	}
	return doc, true, nil
}

func (f *FileStore) write(doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0600)
}

func (f *FileStore) GetUser() (*models.User, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, _, err := f.read()
	if err != nil {
		return nil, false, err
	}
	if doc.User == nil {
		return nil, false, nil
	}
	return doc.User, true, nil
}

func (f *FileStore) SetUser(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, _, err := f.read()
	if err != nil {
		return err
	}
	doc.User = user
	return f.write(doc)
}

func (f *FileStore) ClearUser() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok, err := f.read()
	if err != nil {
		return err
	}
	if !ok && doc.User == nil {
		return nil
	}
	doc.User = nil
	return f.write(doc)
}

func (f *FileStore) GetToken() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, _, err := f.read()
	if err != nil {
		return "", false, err
	}
	if doc.Token == "" {
		return "", false, nil
	}
	return doc.Token, true, nil
}

func (f *FileStore) SetToken(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, _, err := f.read()
	if err != nil {
		return err
	}
	doc.Token = token
	return f.write(doc)
}

func (f *FileStore) ClearToken() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok, err := f.read()
	if err != nil {
		return err
	}
	if !ok && doc.Token == "" {
		return nil
	}
	doc.Token = ""
	return f.write(doc)
}
