package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"reelist/internal/models"
)

// MovieToMarkdown converts a single export entry to a Markdown movie page with optional poster image
func MovieToMarkdown(entry models.ExportEntry, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", entry.Item.Title))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Poster](%s)\n\n", imageFilename))
	}

	if entry.Movie != nil {
		if entry.Movie.Year > 0 {
			buf.WriteString(fmt.Sprintf("**Year**: %d\n", entry.Movie.Year))
		}
		if entry.Movie.Rating > 0 {
			buf.WriteString(fmt.Sprintf("**Rating**: %.1f\n", entry.Movie.Rating))
		}
		if len(entry.Movie.Genre) > 0 {
			buf.WriteString(fmt.Sprintf("**Genre**: %s\n", strings.Join(entry.Movie.Genre, ", ")))
		}
		buf.WriteString("\n")
		if entry.Movie.Description != "" {
			buf.WriteString(entry.Movie.Description)
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// MovieToText converts a single export entry to plain text format
func MovieToText(entry models.ExportEntry) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Title: %s\n", entry.Item.Title))
	buf.WriteString(fmt.Sprintf("Movie ID: %s\n", entry.Item.MovieID))

	if entry.Movie != nil {
		if entry.Movie.Year > 0 {
			buf.WriteString(fmt.Sprintf("Year: %s\n", strconv.Itoa(entry.Movie.Year)))
		}
		if entry.Movie.Rating > 0 {
			buf.WriteString(fmt.Sprintf("Rating: %.1f\n", entry.Movie.Rating))
		}
		if len(entry.Movie.Genre) > 0 {
			buf.WriteString(fmt.Sprintf("Genre: %s\n", strings.Join(entry.Movie.Genre, ", ")))
		}
		if entry.Movie.Description != "" {
			buf.WriteString(fmt.Sprintf("\n%s\n", entry.Movie.Description))
		}
	}

	return buf.Bytes(), nil
}

// WriteMovieMarkdown exports a single movie to Markdown format in a dedicated directory.
//
// The imageURL parameter is optional - if provided, attempts to download the poster.
// Creates a directory structure: {dir}/README.md and optionally {dir}/poster.jpg
func WriteMovieMarkdown(entry models.ExportEntry, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = string(entry.Item.MovieID)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var posterFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download poster: %v\n", err)
		} else {
			posterFilename = "poster.jpg"
			posterPath := fmt.Sprintf("%s/%s", outputDir, posterFilename)
			if err := os.WriteFile(posterPath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save poster: %v\n", err)
				posterFilename = ""
			} else {
				result.CoverImage = posterPath
				result.Files = append(result.Files, posterPath)
			}
		}
	}

	mdData, err := MovieToMarkdown(entry, posterFilename)
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

// WriteMovieText exports a single movie to plain text format.
func WriteMovieText(entry models.ExportEntry, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s.txt", entry.Item.MovieID)
	}

	textData, err := MovieToText(entry)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
