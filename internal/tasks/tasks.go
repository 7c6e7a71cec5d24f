// package tasks implements long-running watchlist operations against the backend.
//
// The core abstraction is SyncEngine, which orchestrates local cache syncs, data dumps, and bulk exports.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"reelist/internal/models"
	"reelist/internal/services"
	"reelist/internal/shared"
)

// ItemSyncResult represents the result of syncing a single watchlist item.
type ItemSyncResult struct {
	Item  models.WatchlistItem // Item from the remote list
	Error error                // Error if caching failed
}

// SyncRunResult contains all data from a full cache sync operation.
type SyncRunResult struct {
	Items        []models.WatchlistItem // Remote watchlist snapshot
	CachedCount  int                    // Number of items cached or refreshed
	EvictedCount int                    // Number of stale cache rows evicted
	FailedCount  int                    // Number of items that failed to cache
	Failures     []ItemSyncResult       // Individual failures
}

// EndpointResult represents the result of fetching data from a single API endpoint.
type EndpointResult struct {
	Endpoint string
	Data     any
	Error    error
}

// DumpResult contains all data fetched from the backend.
type DumpResult struct {
	Health    any              // Health status
	Profile   any              // Current account profile
	Watchlist any              // Saved watchlist
	Errors    []EndpointResult // Failed endpoint fetches
}

type DumpData struct {
	Health    any   `json:"health"`
	Profile   any   `json:"profile,omitempty"`
	Watchlist any   `json:"watchlist,omitempty"`
	Errors    []any `json:"errors,omitempty"`
}

type endpointOperation struct {
	name    string
	path    string
	target  *any
	phase   Phase
	message string
}

// WatchlistService fetches the remote watchlist. Implemented by services.WatchlistAPI.
type WatchlistService interface {
	List(ctx context.Context) ([]models.WatchlistItem, error)
}

// MetadataService fetches movie metadata. Implemented by services.MetadataAPI.
type MetadataService interface {
	Movie(ctx context.Context, id models.MovieID) (*models.Movie, error)
}

// ItemCacher persists local watchlist snapshots. Implemented by repositories.ItemCacheAdapter.
type ItemCacher interface {
	CacheItem(item models.WatchlistItem) error
	EvictItem(movieID models.MovieID) error
	CachedItems() ([]models.WatchlistItem, error)
}

// APIClient defines the interface for making raw API requests to the backend.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type APIClient interface {
	Get(ctx context.Context, path string) (*services.APIResponse, error)
}

// SyncEngine defines operations for syncing the watchlist with local storage.
type SyncEngine interface {
	// Sync refreshes the local cache from the remote watchlist by caching every remote item and evicting stale rows.
	Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncRunResult, error)

	// Dump fetches all data from the backend by retrieving health, profile, and watchlist.
	Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error)
}

// WatchlistEngine implements SyncEngine for watchlist operations.
// Contains dependencies on the backend services and local cache.
type WatchlistEngine struct {
	watchlist WatchlistService
	metadata  MetadataService
	cache     ItemCacher
	api       APIClient
}

// NewWatchlistEngine creates a new WatchlistEngine with the provided collaborators.
func NewWatchlistEngine(watchlist WatchlistService, metadata MetadataService, cache ItemCacher, api APIClient) *WatchlistEngine {
	return &WatchlistEngine{
		watchlist: watchlist,
		metadata:  metadata,
		cache:     cache,
		api:       api,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *WatchlistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Sync refreshes the local cache from the remote watchlist.
//
// Every remote item is cached (or refreshed in place), then cache rows whose
// movie no longer appears remotely are evicted. Per-item failures are
// collected rather than aborting the run.
func (e *WatchlistEngine) Sync(ctx context.Context, progress chan<- ProgressUpdate) (*SyncRunResult, error) {
	if e.watchlist == nil {
		return nil, fmt.Errorf("%w: watchlist service not initialized", shared.ErrServiceUnavailable)
	}
	if e.cache == nil {
		return nil, fmt.Errorf("%w: item cache not initialized", shared.ErrServiceUnavailable)
	}

	result := &SyncRunResult{}

	e.sendProgress(progress, fetchingListUpdate(1, 1))

	items, err := e.watchlist.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch watchlist: %v", shared.ErrAPIRequest, err)
	}

	result.Items = items
	total := len(items)

	remote := make(map[models.MovieID]bool, total)
	for i, item := range items {
		remote[item.MovieID] = true

		e.sendProgress(progress, cacheItemUpdate(i+1, total, item))

		if err := e.cache.CacheItem(item); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, ItemSyncResult{Item: item, Error: err})
			continue
		}
		result.CachedCount++
	}

	cached, err := e.cache.CachedItems()
	if err != nil {
		return result, fmt.Errorf("sync completed but failed to read cache for eviction: %w", err)
	}

	for _, item := range cached {
		if remote[item.MovieID] {
			continue
		}

		e.sendProgress(progress, evictItemUpdate(item))

		if err := e.cache.EvictItem(item.MovieID); err != nil {
			result.FailedCount++
			result.Failures = append(result.Failures, ItemSyncResult{Item: item, Error: err})
			continue
		}
		result.EvictedCount++
	}

	return result, nil
}

// Dump fetches all data from the backend.
func (e *WatchlistEngine) Dump(ctx context.Context, progress chan<- ProgressUpdate) (*DumpResult, error) {
	if e.api == nil {
		return nil, fmt.Errorf("%w: API client not initialized", shared.ErrServiceUnavailable)
	}

	result := &DumpResult{
		Errors: []EndpointResult{},
	}

	endpoints := []endpointOperation{
		{name: "health", path: "/health", target: &result.Health, phase: FetchHealth, message: "Fetching health status..."},
		{name: "profile", path: "/auth/me", target: &result.Profile, phase: FetchProfile, message: "Fetching profile..."},
		{name: "watchlist", path: "/watchlist", target: &result.Watchlist, phase: FetchWatchlist, message: "Fetching watchlist..."},
	}

	totalSteps := len(endpoints)

	for i, endpoint := range endpoints {
		e.sendProgress(progress, operationUpdate(endpoint, i+1, totalSteps))

		resp, err := e.api.Get(ctx, endpoint.path)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errMsg := ""
			if err != nil {
				errMsg = err.Error()
			} else {
				errMsg = fmt.Sprintf("status %d", resp.StatusCode)
			}
			result.Errors = append(result.Errors, EndpointResult{
				Endpoint: endpoint.path,
				Error:    fmt.Errorf("%s", errMsg),
			})
		} else {
			*endpoint.target = resp.JSONData
		}
	}

	return result, nil
}
