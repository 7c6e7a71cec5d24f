package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"reelist/internal/models"
	"reelist/internal/repositories"
	"reelist/internal/shared"
	"reelist/internal/tasks"
)

// WatchlistList prints the current watchlist.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	if !r.controller.Seeded() {
		if err := r.controller.Seed(ctx); err != nil {
			return fmt.Errorf("failed to load watchlist: %w", err)
		}
	}

	items := r.controller.Items()

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	r.writePlainHeader(fmt.Sprintf("Watchlist (%d)", len(items)))
	for i, item := range items {
		r.writePlain("%d. %s (id %s)\n", i+1, item.Title, item.MovieID)
	}
	return nil
}

// WatchlistAdd saves a movie to the watchlist, looking up metadata when no
// title was given.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	item := models.WatchlistItem{
		MovieID: models.NormalizeMovieID(id),
		Title:   cmd.String("title"),
		Poster:  cmd.String("poster"),
	}

	if item.Title == "" {
		movie, err := r.metadata.Movie(ctx, item.MovieID)
		if err != nil {
			return fmt.Errorf("no title given and metadata lookup failed: %w", err)
		}
		item = models.ItemFromMovie(*movie)
	}

	saved, err := r.controller.Add(ctx, item)
	if err != nil {
		return fmt.Errorf("failed to add: %w", err)
	}

	r.logger.Infof("added %s to watchlist", saved.MovieID)
	return r.writePlain("✓ Added: %s (%d saved)\n", saved.Title, r.controller.Count())
}

// WatchlistRemove removes one or more movies by id. Removals are independent;
// a failing id does not stop the rest.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	args := cmd.Args().Slice()
	if len(args) == 0 {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	ids := make([]models.MovieID, 0, len(args))
	for _, arg := range args {
		ids = append(ids, models.NormalizeMovieID(arg))
	}

	result := r.controller.RemoveBulk(ctx, ids)

	for _, id := range result.Removed {
		r.writePlain("✓ Removed %s\n", id)
	}
	for id, err := range result.Failed {
		r.writePlain("✗ Failed %s: %v\n", id, err)
	}

	if len(result.Failed) == len(ids) {
		return fmt.Errorf("all removals failed")
	}
	return nil
}

// WatchlistSync refreshes the local cache database from the remote watchlist.
func (r *Runner) WatchlistSync(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open cache database: %w", err)
	}
	defer db.Close()
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cache := repositories.NewItemCacheAdapter(repositories.NewWatchlistCacheRepository(db))
	engine := tasks.NewWatchlistEngine(r.watchlist, r.metadata, cache, r.client)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := engine.Sync(ctx, progress)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	r.writePlainln("✓ Sync complete: %d cached, %d evicted, %d failed",
		result.CachedCount, result.EvictedCount, result.FailedCount)
	for _, failure := range result.Failures {
		r.writePlain("  ✗ %s: %v\n", failure.Item.Title, failure.Error)
	}

	return nil
}

// WatchlistExport exports every saved movie to per-item files with a manifest.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	if !r.controller.Seeded() {
		if err := r.controller.Seed(ctx); err != nil {
			return fmt.Errorf("failed to load watchlist: %w", err)
		}
	}

	items := r.controller.Items()
	if len(items) == 0 {
		return r.writePlain("Watchlist is empty, nothing to export\n")
	}

	opts := tasks.BulkExportOpts{
		Format:     cmd.String("format"),
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.BulkExport(ctx, progress, items, opts)
	close(progress)
	<-done

	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	r.writePlainln("✓ Exported %d/%d movies to %s",
		result.SuccessfulExports, result.TotalItems, result.OutputDirectory)
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	return nil
}
