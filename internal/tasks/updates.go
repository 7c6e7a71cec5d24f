package tasks

import (
	"fmt"

	"reelist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchList Phase = iota
	CacheItems
	EvictItems
	FetchHealth
	FetchProfile
	FetchWatchlist
	FetchMetadata
	ExportItems
)

func (p Phase) String() string {
	switch p {
	case FetchList:
		return "fetch_list"
	case CacheItems:
		return "cache_items"
	case EvictItems:
		return "evict_items"
	case FetchHealth:
		return "fetch_health"
	case FetchProfile:
		return "fetch_profile"
	case FetchWatchlist:
		return "fetch_watchlist"
	case FetchMetadata:
		return "fetch_metadata"
	case ExportItems:
		return "export_items"
	default:
		return ""
	}
}

func fetchingListUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchList,
		Step:    step,
		Total:   total,
		Message: "Fetching watchlist from server...",
	}
}

func cacheItemUpdate(step, total int, item models.WatchlistItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Caching: %s", step, total, item.Title),
	}
}

func evictItemUpdate(item models.WatchlistItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   EvictItems,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Evicting stale entry: %s", item.Title),
	}
}

func operationUpdate(endpoint endpointOperation, step int, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   endpoint.phase,
		Step:    step,
		Total:   total,
		Message: endpoint.message,
	}
}

func fetchMetadataUpdate(step, total int, item models.WatchlistItem) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMetadata,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Fetching metadata: %s", step, total, item.Title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
