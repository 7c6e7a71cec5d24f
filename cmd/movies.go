package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"reelist/internal/models"
	"reelist/internal/shared"
)

// MoviesTrending lists trending movies with saved markers from the watchlist state.
func (r *Runner) MoviesTrending(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	movies, err := r.metadata.Trending(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader("Trending Movies")
	r.printMovies(movies)
	return nil
}

// MoviesSearch searches movies by title.
func (r *Runner) MoviesSearch(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	movies, err := r.metadata.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movies, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Results for '%s' (%d)", query, len(movies)))
	r.printMovies(movies)
	return nil
}

// MoviesShow prints full metadata for a single movie.
func (r *Runner) MoviesShow(ctx context.Context, cmd *cli.Command) error {
	r.bootstrap(ctx)

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: movie id", shared.ErrMissingArgument)
	}

	movie, err := r.metadata.Movie(ctx, models.NormalizeMovieID(id))
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(movie, true)
	}

	r.writePlainHeader(movie.Title)
	if movie.Year > 0 {
		r.writePlain("Year: %d\n", movie.Year)
	}
	if movie.Rating > 0 {
		r.writePlain("Rating: %.1f\n", movie.Rating)
	}
	if len(movie.Genre) > 0 {
		r.writePlain("Genre: %s\n", strings.Join(movie.Genre, ", "))
	}
	if movie.Description != "" {
		r.writePlain("\n%s\n", movie.Description)
	}
	if r.controller.IsSaved(movie.ID) {
		r.writePlain("\n♥ On your watchlist\n")
	}

	return nil
}

func (r *Runner) printMovies(movies []models.Movie) {
	for i, movie := range movies {
		marker := " "
		if r.controller.IsSaved(movie.ID) {
			marker = "♥"
		}
		detail := ""
		if movie.Year > 0 {
			detail = fmt.Sprintf(" (%d)", movie.Year)
		}
		r.writePlain("%s %d. %s%s [id %s]\n", marker, i+1, movie.Title, detail, movie.ID)
	}
}
