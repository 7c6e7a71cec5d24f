package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"reelist/internal/formatter"
	"reelist/internal/models"
	"reelist/internal/shared"
)

// BulkExportResult summarizes a bulk item export run.
type BulkExportResult = formatter.BulkExportResult

// ItemExportJob carries one watchlist item, with fetched metadata, to an export worker.
type ItemExportJob struct {
	Item  models.WatchlistItem
	Movie *models.Movie // nil when metadata lookup failed or was skipped
}

// BulkExportOpts contains configuration for bulk watchlist exports.
type BulkExportOpts struct {
	Format     string  // Export format: json, csv, markdown, txt
	OutputDir  string  // Base output directory (default: watchlist_export_{epoch})
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Metadata requests per second (default: 5)
}

// BulkExport exports every watchlist item to its own file(s) concurrently with
// rate limiting and progress tracking.
//
// This method implements a worker pool pattern: a feeder goroutine fetches
// movie metadata under the rate limit and workers write the per-item files.
// Metadata failures degrade the entry to its bare saved form rather than
// failing the export, and a manifest file summarizes the run.
func (e *WatchlistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	items []models.WatchlistItem,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchlist_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalItems:      len(items),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.ItemExportResult, 0, len(items)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan ItemExportJob, len(items))
	results := make(chan formatter.ItemExportResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		for i, item := range items {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			job := ItemExportJob{Item: item}

			if e.metadata != nil {
				e.sendProgress(prog, fetchMetadataUpdate(i+1, len(items), item))

				if err := limiter.Wait(ctx); err != nil {
					close(jobs)
					return
				}

				if movie, err := e.metadata.Movie(ctx, item.MovieID); err == nil {
					job.Movie = movie
				}
			}

			jobs <- job
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(
				completed,
				len(items),
				res.Title,
				len(res.Files),
			))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(
				completed,
				len(items),
				res.Title,
				res.Error,
			))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteBulkExportManifest(*result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker is a worker goroutine that exports items from the jobs channel.
func (e *WatchlistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan ItemExportJob,
	results chan<- formatter.ItemExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res := e.exportSingleItem(job, opts)
		results <- res
	}
}

// exportSingleItem exports a single watchlist item to the appropriate format.
func (e *WatchlistEngine) exportSingleItem(j ItemExportJob, opts BulkExportOpts) formatter.ItemExportResult {
	result := formatter.ItemExportResult{
		MovieID: string(j.Item.MovieID),
		Title:   j.Item.Title,
		Success: false,
		Files:   []string{},
	}

	entry := models.ExportEntry{Item: j.Item, Movie: j.Movie}

	switch opts.Format {
	case "csv":
		baseFilepath := filepath.Join(opts.OutputDir, string(j.Item.MovieID))
		export := &models.WatchlistExport{Items: []models.ExportEntry{entry}}
		csvRes, err := formatter.WriteCSVExport(export, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.ItemsFile, csvRes.MetadataFile}
		result.Success = true

	case "markdown":
		outputDir := filepath.Join(opts.OutputDir, string(j.Item.MovieID))

		mdRes, err := formatter.WriteMovieMarkdown(entry, outputDir, j.Item.Poster)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		result.Files = mdRes.Files
		result.Success = true

	case "txt":
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.txt", j.Item.MovieID))
		filepath, err := formatter.WriteMovieText(entry, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{filepath}
		result.Success = true
	case "json":
		fallthrough
	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.Item.MovieID))
		data, err := shared.MarshalJSON(entry, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(jsonPath, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{jsonPath}
		result.Success = true
	}
	return result
}
