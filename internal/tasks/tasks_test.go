package tasks

import (
	"context"
	"errors"
	"testing"

	"reelist/internal/models"
	"reelist/internal/services"
)

// fakeWatchlist returns a fixed item list or an error.
type fakeWatchlist struct {
	items []models.WatchlistItem
	err   error
}

func (f *fakeWatchlist) List(ctx context.Context) ([]models.WatchlistItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

// fakeCache is an in-memory ItemCacher with per-id failure injection.
type fakeCache struct {
	items     map[models.MovieID]models.WatchlistItem
	order     []models.MovieID
	failCache map[models.MovieID]error
	failEvict map[models.MovieID]error
	listErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		items:     make(map[models.MovieID]models.WatchlistItem),
		failCache: make(map[models.MovieID]error),
		failEvict: make(map[models.MovieID]error),
	}
}

func (f *fakeCache) CacheItem(item models.WatchlistItem) error {
	if err := f.failCache[item.MovieID]; err != nil {
		return err
	}
	if _, exists := f.items[item.MovieID]; !exists {
		f.order = append(f.order, item.MovieID)
	}
	f.items[item.MovieID] = item
	return nil
}

func (f *fakeCache) EvictItem(movieID models.MovieID) error {
	if err := f.failEvict[movieID]; err != nil {
		return err
	}
	delete(f.items, movieID)
	return nil
}

func (f *fakeCache) CachedItems() ([]models.WatchlistItem, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	items := make([]models.WatchlistItem, 0, len(f.items))
	for _, id := range f.order {
		if item, ok := f.items[id]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

// fakeAPIClient serves canned raw responses per path.
type fakeAPIClient struct {
	responses map[string]*services.APIResponse
	errs      map[string]error
}

func (f *fakeAPIClient) Get(ctx context.Context, path string) (*services.APIResponse, error) {
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	if resp, ok := f.responses[path]; ok {
		return resp, nil
	}
	return &services.APIResponse{StatusCode: 404}, nil
}

func wlItem(id, title string) models.WatchlistItem {
	return models.WatchlistItem{MovieID: models.MovieID(id), Title: title}
}

func TestSync(t *testing.T) {
	ctx := context.Background()

	t.Run("Caches Every Remote Item", func(t *testing.T) {
		cache := newFakeCache()
		engine := NewWatchlistEngine(&fakeWatchlist{items: []models.WatchlistItem{
			wlItem("1", "Heat"), wlItem("2", "Ronin"),
		}}, nil, cache, nil)

		result, err := engine.Sync(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.CachedCount != 2 || result.FailedCount != 0 {
			t.Errorf("expected 2 cached, got %+v", result)
		}
		if len(cache.items) != 2 {
			t.Errorf("expected 2 cache entries, got %d", len(cache.items))
		}
	})

	t.Run("Evicts Stale Cache Rows", func(t *testing.T) {
		cache := newFakeCache()
		cache.CacheItem(wlItem("1", "Heat"))
		cache.CacheItem(wlItem("99", "Gone From Remote"))

		engine := NewWatchlistEngine(&fakeWatchlist{items: []models.WatchlistItem{
			wlItem("1", "Heat"),
		}}, nil, cache, nil)

		result, err := engine.Sync(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.EvictedCount != 1 {
			t.Errorf("expected 1 eviction, got %d", result.EvictedCount)
		}
		if _, exists := cache.items["99"]; exists {
			t.Error("expected stale row to be evicted")
		}
		if _, exists := cache.items["1"]; !exists {
			t.Error("expected live row to remain")
		}
	})

	t.Run("Collects Per Item Failures", func(t *testing.T) {
		cache := newFakeCache()
		cache.failCache["2"] = errors.New("disk full")

		engine := NewWatchlistEngine(&fakeWatchlist{items: []models.WatchlistItem{
			wlItem("1", "Heat"), wlItem("2", "Ronin"), wlItem("3", "Collateral"),
		}}, nil, cache, nil)

		result, err := engine.Sync(ctx, nil)
		if err != nil {
			t.Fatalf("expected no run-level error, got %v", err)
		}
		if result.CachedCount != 2 || result.FailedCount != 1 {
			t.Errorf("expected 2 cached 1 failed, got %+v", result)
		}
		if len(result.Failures) != 1 || result.Failures[0].Item.MovieID != "2" {
			t.Errorf("unexpected failures: %v", result.Failures)
		}
	})

	t.Run("List Failure Aborts The Run", func(t *testing.T) {
		engine := NewWatchlistEngine(&fakeWatchlist{err: errors.New("network down")}, nil, newFakeCache(), nil)

		if _, err := engine.Sync(ctx, nil); err == nil {
			t.Error("expected error when list fetch fails")
		}
	})

	t.Run("Missing Collaborators", func(t *testing.T) {
		if _, err := NewWatchlistEngine(nil, nil, newFakeCache(), nil).Sync(ctx, nil); err == nil {
			t.Error("expected error without watchlist service")
		}
		if _, err := NewWatchlistEngine(&fakeWatchlist{}, nil, nil, nil).Sync(ctx, nil); err == nil {
			t.Error("expected error without cache")
		}
	})

	t.Run("Reports Progress Without Blocking", func(t *testing.T) {
		cache := newFakeCache()
		engine := NewWatchlistEngine(&fakeWatchlist{items: []models.WatchlistItem{
			wlItem("1", "Heat"), wlItem("2", "Ronin"),
		}}, nil, cache, nil)

		// Buffered channel that is never drained; sends must not block.
		progress := make(chan ProgressUpdate, 1)
		if _, err := engine.Sync(ctx, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		update := <-progress
		if update.Phase != FetchList {
			t.Errorf("expected first update in fetch phase, got %v", update.Phase)
		}
	})
}

func TestDump(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches All Endpoints", func(t *testing.T) {
		api := &fakeAPIClient{responses: map[string]*services.APIResponse{
			"/health":    {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"status": "ok"}},
			"/auth/me":   {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"user": "alice"}},
			"/watchlist": {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"watchlist": []any{}}},
		}}
		engine := NewWatchlistEngine(nil, nil, nil, api)

		result, err := engine.Dump(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Health == nil || result.Profile == nil || result.Watchlist == nil {
			t.Errorf("expected all sections populated: %+v", result)
		}
		if len(result.Errors) != 0 {
			t.Errorf("expected no errors, got %v", result.Errors)
		}
	})

	t.Run("Collects Endpoint Failures", func(t *testing.T) {
		api := &fakeAPIClient{
			responses: map[string]*services.APIResponse{
				"/health": {StatusCode: 200, IsJSON: true, JSONData: map[string]any{"status": "ok"}},
			},
			errs: map[string]error{
				"/auth/me": errors.New("connection refused"),
			},
		}
		engine := NewWatchlistEngine(nil, nil, nil, api)

		result, err := engine.Dump(ctx, nil)
		if err != nil {
			t.Fatalf("expected no run-level error, got %v", err)
		}
		if result.Health == nil {
			t.Error("expected health section populated")
		}
		// /auth/me errored, /watchlist 404'd
		if len(result.Errors) != 2 {
			t.Errorf("expected 2 endpoint failures, got %v", result.Errors)
		}
	})

	t.Run("Missing API Client", func(t *testing.T) {
		if _, err := NewWatchlistEngine(nil, nil, nil, nil).Dump(ctx, nil); err == nil {
			t.Error("expected error without API client")
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := map[Phase]string{
		FetchList:      "fetch_list",
		CacheItems:     "cache_items",
		EvictItems:     "evict_items",
		FetchHealth:    "fetch_health",
		FetchProfile:   "fetch_profile",
		FetchWatchlist: "fetch_watchlist",
		FetchMetadata:  "fetch_metadata",
		ExportItems:    "export_items",
	}
	for phase, want := range cases {
		if phase.String() != want {
			t.Errorf("expected %q, got %q", want, phase.String())
		}
	}
}
