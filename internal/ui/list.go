package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"reelist/internal/models"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = watchlistItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
//
// The saved flag renders as a heart marker so the browse grid reflects
// watchlist membership without a second lookup.
type movieItem struct {
	movie models.Movie
	saved bool
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	if i.saved {
		return "♥ " + i.movie.Title
	}
	return i.movie.Title
}
func (i movieItem) Description() string {
	parts := []string{}
	if i.movie.Year > 0 {
		parts = append(parts, fmt.Sprintf("%d", i.movie.Year))
	}
	if i.movie.Rating > 0 {
		parts = append(parts, fmt.Sprintf("★ %.1f", i.movie.Rating))
	}
	if len(i.movie.Genre) > 0 {
		parts = append(parts, strings.Join(i.movie.Genre, ", "))
	}
	return strings.Join(parts, " • ")
}

// watchlistItem wraps [models.WatchlistItem] to implement [list.Item].
//
// The selected flag renders as a checkbox for bulk removal.
type watchlistItem struct {
	item     models.WatchlistItem
	selected bool
}

func (i watchlistItem) FilterValue() string { return i.item.Title }
func (i watchlistItem) Title() string {
	if i.selected {
		return "[x] " + i.item.Title
	}
	return "[ ] " + i.item.Title
}
func (i watchlistItem) Description() string {
	return fmt.Sprintf("id %s", i.item.MovieID)
}
