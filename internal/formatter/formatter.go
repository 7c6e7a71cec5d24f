// package formatter provides functions to export watchlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// ExportToCSV converts a WatchlistExport to CSV format with columns: MovieID, Title, Year, Rating, Genre, Poster
func ExportToCSV(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"MovieID", "Title", "Year", "Rating", "Genre", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range export.Items {
		year := ""
		rating := ""
		genre := ""
		if entry.Movie != nil {
			if entry.Movie.Year > 0 {
				year = strconv.Itoa(entry.Movie.Year)
			}
			if entry.Movie.Rating > 0 {
				rating = strconv.FormatFloat(entry.Movie.Rating, 'f', 1, 64)
			}
			genre = strings.Join(entry.Movie.Genre, "; ")
		}

		record := []string{
			string(entry.Item.MovieID),
			entry.Item.Title,
			year,
			rating,
			genre,
			entry.Item.Poster,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a WatchlistExport to Markdown format with optional cover image
func ExportToMarkdown(export *models.WatchlistExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Watchlist\n\n")

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if export.Username != "" {
		buf.WriteString(fmt.Sprintf("**User**: %s\n\n", export.Username))
	}

	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(export.Items)))

	buf.WriteString("## Movies\n\n")
	for i, entry := range export.Items {
		detail := ""
		if entry.Movie != nil {
			parts := []string{}
			if entry.Movie.Year > 0 {
				parts = append(parts, strconv.Itoa(entry.Movie.Year))
			}
			if entry.Movie.Rating > 0 {
				parts = append(parts, fmt.Sprintf("★ %.1f", entry.Movie.Rating))
			}
			if len(entry.Movie.Genre) > 0 {
				parts = append(parts, strings.Join(entry.Movie.Genre, ", "))
			}
			if len(parts) > 0 {
				detail = fmt.Sprintf(" (%s)", strings.Join(parts, " · "))
			}
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n", i+1, entry.Item.Title, detail))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a WatchlistExport to plain text format
func ExportToText(export *models.WatchlistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("Watchlist\n")
	if export.Username != "" {
		buf.WriteString(fmt.Sprintf("User: %s\n", export.Username))
	}
	buf.WriteString(fmt.Sprintf("Movies: %d\n\n", len(export.Items)))

	for i, entry := range export.Items {
		buf.WriteString(fmt.Sprintf("%d. %s\n", i+1, entry.Item.Title))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// ToMetadataJSON generates a JSON representation of the export metadata (without item details)
func ToMetadataJSON(export *models.WatchlistExport) ([]byte, error) {
	metadata := struct {
		Username string `json:"username,omitempty"`
		Count    int    `json:"count"`
	}{
		Username: export.Username,
		Count:    len(export.Items),
	}
	return shared.MarshalJSON(metadata, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	ItemsFile    string
	MetadataFile string
}

// WriteCSVExport exports a watchlist to CSV format with accompanying metadata JSON file.
//
// Creates {base}_items.csv and {base}_metadata.json
func WriteCSVExport(export *models.WatchlistExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "watchlist"
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	itemsFile := baseFilepath + "_items.csv"
	if err := os.WriteFile(itemsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		ItemsFile:    itemsFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a watchlist to Markdown format in a dedicated directory.
//
// The imageURL parameter is optional - if provided, attempts to download a cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(export *models.WatchlistExport, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "watchlist"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a watchlist to plain text format.
//
// Defaults to watchlist_items.txt as the filename.
func WriteTextExport(export *models.WatchlistExport, filepath string) (string, error) {
	if filepath == "" {
		filepath = "watchlist_items.txt"
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
