package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// DemoStore is the in-memory state behind the demo backend: accounts, bearer
// tokens, per-user watchlists, and uploaded avatar images.
//
// Everything lives in process memory; restarting the server resets all state.
type DemoStore struct {
	mu         sync.Mutex
	users      map[string]*models.User // user id -> user
	byUsername map[string]string       // username -> user id
	passwords  map[string]string       // user id -> password
	tokens     map[string]string       // token -> user id
	watchlists map[string][]models.WatchlistItem
	avatars    map[string][]byte
}

// NewDemoStore creates an empty DemoStore.
func NewDemoStore() *DemoStore {
	return &DemoStore{
		users:      make(map[string]*models.User),
		byUsername: make(map[string]string),
		passwords:  make(map[string]string),
		tokens:     make(map[string]string),
		watchlists: make(map[string][]models.WatchlistItem),
		avatars:    make(map[string][]byte),
	}
}

// CreateUser registers a new account and returns the user with a fresh token.
// Returns an error when the username is taken.
func (s *DemoStore) CreateUser(username, password string) (*models.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, "", fmt.Errorf("username already taken: %s", username)
	}

	user := &models.User{ID: shared.GenerateID(), Username: username}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID
	s.passwords[user.ID] = password

	token := shared.GenerateID()
	s.tokens[token] = user.ID

	return user, token, nil
}

// EnsureUser fetches or creates a passwordless account for demo flows.
func (s *DemoStore) EnsureUser(username string) (*models.User, string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byUsername[username]
	if !exists {
		user := &models.User{ID: shared.GenerateID(), Username: username}
		s.users[user.ID] = user
		s.byUsername[username] = user.ID
		id = user.ID
	}

	token := shared.GenerateID()
	s.tokens[token] = id

	return s.users[id], token
}

// Authenticate checks credentials and issues a fresh token on success.
func (s *DemoStore) Authenticate(username, password string) (*models.User, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, exists := s.byUsername[username]
	if !exists || s.passwords[id] != password {
		return nil, "", false
	}

	token := shared.GenerateID()
	s.tokens[token] = id

	return s.users[id], token, true
}

// UserForToken resolves a bearer token to its account.
func (s *DemoStore) UserForToken(token string) (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.tokens[token]
	if !ok {
		return nil, false
	}
	return s.users[id], true
}

// Rename changes an account's username, keeping the uniqueness index consistent.
func (s *DemoStore) Rename(userID, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byUsername[username]; exists && id != userID {
		return nil, fmt.Errorf("username already taken: %s", username)
	}

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user: %s", userID)
	}

	delete(s.byUsername, user.Username)
	user.Username = username
	s.byUsername[username] = userID

	return user, nil
}

// SetAvatar stores avatar bytes and stamps the user's avatar URL.
func (s *DemoStore) SetAvatar(userID string, data []byte) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user: %s", userID)
	}

	s.avatars[userID] = data
	user.AvatarURL = "/api/avatars/" + userID

	return user, nil
}

// ClearAvatar drops an account's avatar.
func (s *DemoStore) ClearAvatar(userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("no such user: %s", userID)
	}

	delete(s.avatars, userID)
	user.AvatarURL = ""

	return user, nil
}

// Avatar returns the stored avatar bytes for a user.
func (s *DemoStore) Avatar(userID string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.avatars[userID]
	return data, ok
}

// DeleteUser removes an account and everything attached to it.
func (s *DemoStore) DeleteUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		delete(s.byUsername, user.Username)
	}
	delete(s.users, userID)
	delete(s.passwords, userID)
	delete(s.watchlists, userID)
	delete(s.avatars, userID)

	for token, id := range s.tokens {
		if id == userID {
			delete(s.tokens, token)
		}
	}
}

// Watchlist returns a copy of a user's saved items.
func (s *DemoStore) Watchlist(userID string) []models.WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.WatchlistItem, len(s.watchlists[userID]))
	copy(items, s.watchlists[userID])
	return items
}

// SaveItem adds an item to a user's watchlist, newest first. Re-adding an
// existing movie replaces the entry rather than duplicating it.
func (s *DemoStore) SaveItem(userID string, item models.WatchlistItem) models.WatchlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]models.WatchlistItem, 0, len(s.watchlists[userID])+1)
	merged = append(merged, item)
	for _, it := range s.watchlists[userID] {
		if it.MovieID != item.MovieID {
			merged = append(merged, it)
		}
	}
	s.watchlists[userID] = merged

	return item
}

// DeleteItem removes a movie from a user's watchlist, reporting how many
// entries were dropped.
func (s *DemoStore) DeleteItem(userID string, movieID models.MovieID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]models.WatchlistItem, 0, len(s.watchlists[userID]))
	deleted := 0
	for _, it := range s.watchlists[userID] {
		if it.MovieID == movieID {
			deleted++
			continue
		}
		kept = append(kept, it)
	}
	s.watchlists[userID] = kept

	return deleted
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// bearerUser resolves the request's bearer token against the store.
func bearerUser(s *DemoStore, r *http.Request) (*models.User, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	return s.UserForToken(token)
}

// HealthHandler reports backend liveness.
type HealthHandler struct{}

// Routes returns the HTTP routes this handler serves.
func (h *HealthHandler) Routes() []string {
	return []string{"/api/health"}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UsersHandler serves the demo user endpoint: create-or-fetch by username,
// no password required. Always issues a fresh token.
type UsersHandler struct {
	store *DemoStore
}

// Routes returns the HTTP routes this handler serves.
func (h *UsersHandler) Routes() []string {
	return []string{"/api/users"}
}

func (h *UsersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	user, token := h.store.EnsureUser(body.Username)
	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

// AuthHandler serves account endpoints: signup, login, profile, avatar, deletion.
type AuthHandler struct {
	store *DemoStore
}

// Routes returns the HTTP routes this handler serves.
func (h *AuthHandler) Routes() []string {
	return []string{
		"/api/auth/signup",
		"/api/auth/login",
		"/api/auth/me",
		"/api/auth/profile",
		"/api/auth/avatar",
		"/api/auth/account",
	}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/auth/signup" && r.Method == http.MethodPost:
		h.signup(w, r)
	case r.URL.Path == "/api/auth/login" && r.Method == http.MethodPost:
		h.login(w, r)
	case r.URL.Path == "/api/auth/me" && r.Method == http.MethodGet:
		h.me(w, r)
	case r.URL.Path == "/api/auth/profile" && r.Method == http.MethodPut:
		h.updateProfile(w, r)
	case r.URL.Path == "/api/auth/avatar" && r.Method == http.MethodPost:
		h.uploadAvatar(w, r)
	case r.URL.Path == "/api/auth/avatar" && r.Method == http.MethodDelete:
		h.removeAvatar(w, r)
	case r.URL.Path == "/api/auth/account" && r.Method == http.MethodDelete:
		h.deleteAccount(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, token, err := h.store.CreateUser(body.Username, body.Password)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user, "token": token})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, ok := h.store.Authenticate(body.Username, body.Password)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid username or password")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user, "token": token})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) updateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Username == "" {
		writeError(w, http.StatusBadRequest, "username is required")
		return
	}

	updated, err := h.store.Rename(user.ID, body.Username)
	if err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *AuthHandler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var body struct {
		Avatar string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Avatar == "" {
		writeError(w, http.StatusBadRequest, "avatar is required")
		return
	}

	data, err := base64.StdEncoding.DecodeString(body.Avatar)
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar must be base64 encoded")
		return
	}

	updated, err := h.store.SetAvatar(user.ID, data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *AuthHandler) removeAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	updated, err := h.store.ClearAvatar(user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

func (h *AuthHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	h.store.DeleteUser(user.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// WatchlistHandler serves the per-user watchlist endpoints.
type WatchlistHandler struct {
	store *DemoStore
}

// Routes returns the HTTP routes this handler serves.
func (h *WatchlistHandler) Routes() []string {
	return []string{"/api/watchlist", "/api/watchlist/"}
}

func (h *WatchlistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, ok := bearerUser(h.store, r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	switch {
	case r.URL.Path == "/api/watchlist" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"watchlist": h.store.Watchlist(user.ID)})

	case r.URL.Path == "/api/watchlist" && r.Method == http.MethodPost:
		var body struct {
			Movie struct {
				ID     models.MovieID `json:"id"`
				Title  string         `json:"title"`
				Poster string         `json:"poster"`
			} `json:"movie"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Movie.ID == "" || body.Movie.Title == "" {
			writeError(w, http.StatusBadRequest, "movie id and title are required")
			return
		}

		item := h.store.SaveItem(user.ID, models.WatchlistItem{
			MovieID: body.Movie.ID,
			Title:   body.Movie.Title,
			Poster:  body.Movie.Poster,
		})
		writeJSON(w, http.StatusCreated, map[string]any{"item": item})

	case strings.HasPrefix(r.URL.Path, "/api/watchlist/") && r.Method == http.MethodDelete:
		id := strings.TrimPrefix(r.URL.Path, "/api/watchlist/")
		if id == "" {
			writeError(w, http.StatusBadRequest, "movie id is required")
			return
		}

		deleted := h.store.DeleteItem(user.ID, models.MovieID(id))
		writeJSON(w, http.StatusOK, map[string]int{"deleted": deleted})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// AvatarHandler serves uploaded avatar images as raw bytes.
type AvatarHandler struct {
	store *DemoStore
}

// Routes returns the HTTP routes this handler serves.
func (h *AvatarHandler) Routes() []string {
	return []string{"/api/avatars/"}
}

func (h *AvatarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/api/avatars/")
	data, ok := h.store.Avatar(userID)
	if !ok {
		writeError(w, http.StatusNotFound, "no avatar")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// NewDemoRouter builds the full demo backend router with logging and JSON
// middleware plus every handler attached.
func NewDemoRouter(store *DemoStore, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(LoggingMiddleware(logger), JSONMiddleware())
	r.Handler(&HealthHandler{})
	r.Handler(&UsersHandler{store: store})
	r.Handler(&AuthHandler{store: store})
	r.Handler(&WatchlistHandler{store: store})
	r.Handler(&AvatarHandler{store: store})
	return r
}
