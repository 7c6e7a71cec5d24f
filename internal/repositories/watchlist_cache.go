package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// WatchlistCacheRepository implements [models.Repository] for [models.CachedItem] persistence.
//
// The cache is a local snapshot of the remote watchlist used by offline export
// and inspection commands; it is never the source of truth for view state.
type WatchlistCacheRepository struct {
	db *sql.DB
}

// NewWatchlistCacheRepository creates a new [WatchlistCacheRepository] with the given database connection
func NewWatchlistCacheRepository(db *sql.DB) *WatchlistCacheRepository {
	return &WatchlistCacheRepository{db: db}
}

// Create inserts a new cached item into the database with generated ID and sequence
func (r *WatchlistCacheRepository) Create(item *models.CachedItem) error {
	sequence, err := NextSequence(r.db, "watchlist_cache")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	item.ID = shared.GenerateID()
	item.Sequence = sequence

	now := time.Now()
	if item.SyncedAt.IsZero() {
		item.SyncedAt = now
	}
	item.CreatedAt = now
	item.UpdatedAt = now

	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO watchlist_cache (id, sequence, movie_id, title, poster, synced_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, item.ID, item.Sequence, string(item.Item.MovieID), item.Item.Title, item.Item.Poster, item.SyncedAt, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cached item: %w", err)
	}

	return nil
}

// Get retrieves a cached item by ID, excluding soft-deleted rows
func (r *WatchlistCacheRepository) Get(id string) (*models.CachedItem, error) {
	query := `
		SELECT id, sequence, movie_id, title, poster, synced_at, created_at, updated_at, deleted_at
		FROM watchlist_cache
		WHERE id = ? AND deleted_at IS NULL
	`

	item, err := scanCachedItem(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cached item %s", shared.ErrItemNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached item: %w", err)
	}

	return item, nil
}

// GetByMovieID retrieves a cached item by its movie id, excluding soft-deleted rows
func (r *WatchlistCacheRepository) GetByMovieID(movieID models.MovieID) (*models.CachedItem, error) {
	query := `
		SELECT id, sequence, movie_id, title, poster, synced_at, created_at, updated_at, deleted_at
		FROM watchlist_cache
		WHERE movie_id = ? AND deleted_at IS NULL
	`

	item, err := scanCachedItem(r.db.QueryRow(query, string(movieID)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: movie %s", shared.ErrItemNotFound, movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cached item: %w", err)
	}

	return item, nil
}

// Update modifies an existing cached item in the database
func (r *WatchlistCacheRepository) Update(item *models.CachedItem) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	item.UpdatedAt = now

	query := `
		UPDATE watchlist_cache
		SET title = ?, poster = ?, synced_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, item.Item.Title, item.Item.Poster, item.SyncedAt, now, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update cached item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("cached item not found or already deleted: %s", item.ID)
	}

	return nil
}

// Delete soft-deletes a cached item by ID
func (r *WatchlistCacheRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE watchlist_cache
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete cached item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("cached item not found or already deleted: %s", id)
	}

	return nil
}

// DeleteByMovieID soft-deletes a cached item by its movie id. Missing rows are
// not an error; a remote removal may never have been cached locally.
func (r *WatchlistCacheRepository) DeleteByMovieID(movieID models.MovieID) error {
	query := `
		UPDATE watchlist_cache
		SET deleted_at = ?
		WHERE movie_id = ? AND deleted_at IS NULL
	`

	if _, err := r.db.Exec(query, time.Now(), string(movieID)); err != nil {
		return fmt.Errorf("failed to delete cached item: %w", err)
	}

	return nil
}

// List retrieves all cached items matching the given criteria, excluding soft-deleted rows
func (r *WatchlistCacheRepository) List(criteria map[string]any) ([]*models.CachedItem, error) {
	query := `
		SELECT id, sequence, movie_id, title, poster, synced_at, created_at, updated_at, deleted_at
		FROM watchlist_cache
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if movieID, ok := criteria["movie_id"].(string); ok && movieID != "" {
		query += " AND movie_id = ?"
		args = append(args, movieID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached items: %w", err)
	}
	defer rows.Close()

	var items []*models.CachedItem
	for rows.Next() {
		item, err := scanCachedItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCachedItem(row rowScanner) (*models.CachedItem, error) {
	var (
		id        string
		sequence  int
		movieID   string
		title     string
		poster    sql.NullString
		syncedAt  time.Time
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &movieID, &title, &poster, &syncedAt, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	item := &models.CachedItem{
		ID:       id,
		Sequence: sequence,
		Item: models.WatchlistItem{
			MovieID: models.MovieID(movieID),
			Title:   title,
			Poster:  poster.String,
		},
		SyncedAt:  syncedAt,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
	if deletedAt.Valid {
		item.DeletedAt = &deletedAt.Time
	}

	return item, nil
}
