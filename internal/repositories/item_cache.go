package repositories

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// ItemCacheAdapter implements tasks.ItemCacher using WatchlistCacheRepository.
//
// Provides automatic item caching with deduplication via the movie_id UNIQUE
// constraint. Items already cached are updated in place with a fresh sync timestamp.
type ItemCacheAdapter struct {
	repo *WatchlistCacheRepository
}

// NewItemCacheAdapter creates a new ItemCacheAdapter with the given repository
func NewItemCacheAdapter(repo *WatchlistCacheRepository) *ItemCacheAdapter {
	return &ItemCacheAdapter{repo: repo}
}

// CacheItem stores a watchlist item snapshot.
// Existing entries are refreshed rather than duplicated.
// Only returns errors for actual failures (not constraint violations).
func (a *ItemCacheAdapter) CacheItem(item models.WatchlistItem) error {
	existing, err := a.repo.GetByMovieID(item.MovieID)
	if err == nil && existing != nil {
		existing.Item = item
		existing.SyncedAt = time.Now()
		if err := a.repo.Update(existing); err != nil {
			return fmt.Errorf("failed to refresh cached item: %w", err)
		}
		return nil
	}
	if err != nil && !errors.Is(err, shared.ErrItemNotFound) {
		return fmt.Errorf("failed to check cache: %w", err)
	}

	cached := &models.CachedItem{Item: item, SyncedAt: time.Now()}

	err = a.repo.Create(cached)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache item: %w", err)
	}

	return nil
}

// EvictItem drops a movie's cache entry, tolerating entries that were never cached.
func (a *ItemCacheAdapter) EvictItem(movieID models.MovieID) error {
	return a.repo.DeleteByMovieID(movieID)
}

// CachedItems returns the currently cached watchlist snapshot in sequence order.
func (a *ItemCacheAdapter) CachedItems() ([]models.WatchlistItem, error) {
	cached, err := a.repo.List(map[string]any{})
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}

	items := make([]models.WatchlistItem, 0, len(cached))
	for _, c := range cached {
		items = append(items, c.Item)
	}
	return items, nil
}
