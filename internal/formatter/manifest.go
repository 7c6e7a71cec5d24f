package formatter

import (
	"fmt"
	"os"
	"time"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// ItemExportResult records the outcome of exporting a single watchlist item.
type ItemExportResult struct {
	MovieID string
	Title   string
	Success bool
	Files   []string
	Error   error
}

// BulkExportResult summarizes a bulk item export run.
type BulkExportResult struct {
	TotalItems        int
	SuccessfulExports int
	FailedExports     int
	Results           []ItemExportResult
	OutputDirectory   string
	ManifestPath      string
}

type manifestItem struct {
	MovieID string   `json:"movie_id"`
	Title   string   `json:"title"`
	Status  string   `json:"status"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type manifest struct {
	Format            string         `json:"format"`
	GeneratedAt       time.Time      `json:"generated_at"`
	TotalItems        int            `json:"total_items"`
	SuccessfulExports int            `json:"successful_exports"`
	FailedExports     int            `json:"failed_exports"`
	Items             []manifestItem `json:"items"`
}

// WriteBulkExportManifest writes a JSON summary of a bulk export run.
//
// The manifest records per-item status so partial failures are inspectable
// after the run without re-parsing logs.
func WriteBulkExportManifest(result BulkExportResult, format string, manifestPath string) error {
	m := manifest{
		Format:            format,
		GeneratedAt:       time.Now().UTC(),
		TotalItems:        result.TotalItems,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		Items:             make([]manifestItem, 0, len(result.Results)),
	}

	for _, res := range result.Results {
		item := manifestItem{
			MovieID: res.MovieID,
			Title:   res.Title,
			Files:   res.Files,
		}
		if res.Success {
			item.Status = "success"
		} else {
			item.Status = "failed"
			if res.Error != nil {
				item.Error = res.Error.Error()
			}
		}
		m.Items = append(m.Items, item)
	}

	data, err := shared.MarshalJSON(m, true)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	return nil
}

// WriteJSONExport exports a watchlist to a pretty-printed JSON file.
//
// Defaults to watchlist.json as the filename.
func WriteJSONExport(export *models.WatchlistExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist.json"
	}

	data, err := shared.MarshalJSON(export, true)
	if err != nil {
		return "", fmt.Errorf("failed to marshal export: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	return filepath, nil
}
