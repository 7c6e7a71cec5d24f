package services

import (
	"context"
	"net/http"
	"net/url"

	"reelist/internal/models"
)

// WatchlistAPI maps the watchlist REST endpoints onto four request functions.
//
// No retry, no backoff, no caching; every non-2xx response propagates to the
// caller, which decides between toast, log, or forced logout.
type WatchlistAPI struct {
	client *Client
}

// NewWatchlistAPI creates a WatchlistAPI issuing requests through the shared client.
func NewWatchlistAPI(client *Client) *WatchlistAPI {
	return &WatchlistAPI{client: client}
}

// EnsureDemoUser creates or fetches a passwordless user by username and
// returns it with a fresh bearer token.
func (w *WatchlistAPI) EnsureDemoUser(ctx context.Context, username string) (*models.User, string, error) {
	var resp struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	body := map[string]string{"username": username}
	if err := w.client.Do(ctx, http.MethodPost, "/users", body, &resp); err != nil {
		return nil, "", err
	}
	return &resp.User, resp.Token, nil
}

// Add saves a movie to the current user's watchlist. The server returns the
// canonical normalized item, which is the copy callers must merge into state.
func (w *WatchlistAPI) Add(ctx context.Context, item models.WatchlistItem) (*models.WatchlistItem, error) {
	var resp struct {
		Item models.WatchlistItem `json:"item"`
	}
	body := map[string]any{
		"movie": map[string]any{
			"id":     item.MovieID,
			"title":  item.Title,
			"poster": item.Poster,
		},
	}
	if err := w.client.Do(ctx, http.MethodPost, "/watchlist", body, &resp); err != nil {
		return nil, err
	}
	return &resp.Item, nil
}

// Remove deletes a watchlist entry by movie id and returns the number of rows
// the server deleted.
func (w *WatchlistAPI) Remove(ctx context.Context, movieID models.MovieID) (int, error) {
	var resp struct {
		Deleted int `json:"deleted"`
	}
	path := "/watchlist/" + url.PathEscape(string(movieID))
	if err := w.client.Do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// List fetches the full watchlist for the current session; the server infers
// identity from the auth header.
func (w *WatchlistAPI) List(ctx context.Context) ([]models.WatchlistItem, error) {
	var resp struct {
		Watchlist []models.WatchlistItem `json:"watchlist"`
	}
	if err := w.client.Do(ctx, http.MethodGet, "/watchlist", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Watchlist, nil
}
