package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// MovieID is a movie identifier normalized to its string form.
//
// Accepts JSON numbers and strings when unmarshalling; always marshals as a string.
type MovieID string

// UnmarshalJSON implements [json.Unmarshaler], accepting both `42` and `"42"`.
func (m *MovieID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = MovieID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*m = MovieID(n.String())
		return nil
	}

	return fmt.Errorf("movie id must be a string or number, got %s", string(data))
}

// NormalizeMovieID converts any raw id value (string, int, float from decoded JSON) to its MovieID form.
func NormalizeMovieID(raw any) MovieID {
	switch v := raw.(type) {
	case string:
		return MovieID(v)
	case MovieID:
		return v
	case int:
		return MovieID(strconv.Itoa(v))
	case int64:
		return MovieID(strconv.FormatInt(v, 10))
	case float64:
		return MovieID(strconv.FormatFloat(v, 'f', -1, 64))
	case json.Number:
		return MovieID(v.String())
	default:
		return MovieID(fmt.Sprintf("%v", raw))
	}
}

// User represents an account identity returned by the auth backend.
type User struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Movie represents browsable movie metadata from the metadata API.
type Movie struct {
	ID          MovieID  `json:"id"`
	Title       string   `json:"title"`
	Year        int      `json:"year,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Image       string   `json:"image,omitempty"`
	Description string   `json:"description,omitempty"`
}

// WatchlistItem represents a saved movie reference.
//
// At most one item per MovieID exists in a user's list; the server returns
// the canonical normalized form on add.
type WatchlistItem struct {
	MovieID MovieID `json:"movieId"`
	Title   string  `json:"title"`
	Poster  string  `json:"poster,omitempty"`
}

// ItemFromMovie builds the watchlist payload for a browsable movie.
func ItemFromMovie(m Movie) WatchlistItem {
	return WatchlistItem{MovieID: m.ID, Title: m.Title, Poster: m.Image}
}

// WatchlistExport bundles the owning user and a snapshot of their saved items
// for file export.
type WatchlistExport struct {
	Username string        `json:"username"`
	Items    []ExportEntry `json:"items"`
}

// ExportEntry pairs a saved item with its enriched metadata, when available.
type ExportEntry struct {
	Item  WatchlistItem `json:"item"`
	Movie *Movie        `json:"movie,omitempty"`
}

// CachedItem is a locally persisted snapshot of a remote watchlist entry.
type CachedItem struct {
	ID        string
	Sequence  int
	Item      WatchlistItem
	SyncedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}

// Validate checks that the cached item carries the fields the cache schema requires.
func (c *CachedItem) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("cached item missing id")
	}
	if c.Item.MovieID == "" {
		return fmt.Errorf("cached item missing movie id")
	}
	if c.Item.Title == "" {
		return fmt.Errorf("cached item missing title")
	}
	return nil
}

// Repository defines the interface for data access operations on cached entities.
type Repository[T any] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
