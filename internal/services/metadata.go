// Movie metadata API client
//
// Queried client-side to populate browse/search/trending views; treated as an
// opaque external source beyond the movie shape downstream state consumes.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"reelist/internal/models"
	"reelist/internal/shared"
)

const defaultMetadataBaseURL = "http://localhost:8081"

// MetadataAPI queries the third-party movie metadata service.
//
// Requests are rate limited client-side; providers that require OAuth2
// client-credentials auth get a token-refreshing HTTP client, otherwise the
// plain client is used.
type MetadataAPI struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewMetadataAPI creates a metadata client from config. A nil httpClient
// falls back to [http.DefaultClient] (or an OAuth2 client when credentials
// are configured).
func NewMetadataAPI(cfg shared.MetadataConfig, httpClient *http.Client) *MetadataAPI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultMetadataBaseURL
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
		if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.TokenURL != "" {
			conf := &clientcredentials.Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenURL:     cfg.TokenURL,
			}
			httpClient = conf.Client(context.Background())
		}
	}

	limit := cfg.RateLimit
	if limit <= 0 {
		limit = 5.0
	}

	return &MetadataAPI{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    rate.NewLimiter(rate.Limit(limit), 1),
	}
}

// doRequest performs a rate-limited GET against the metadata API and decodes
// the JSON response into result.
func (m *MetadataAPI) doRequest(ctx context.Context, endpoint string, result any) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return shared.ErrMovieNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: metadata API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search queries movies matching the given text.
func (m *MetadataAPI) Search(ctx context.Context, query string) ([]models.Movie, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	var resp struct {
		Results []models.Movie `json:"results"`
	}
	endpoint := "/movies/search?q=" + url.QueryEscape(query)
	if err := m.doRequest(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Trending retrieves the current trending movies.
func (m *MetadataAPI) Trending(ctx context.Context) ([]models.Movie, error) {
	var resp struct {
		Results []models.Movie `json:"results"`
	}
	if err := m.doRequest(ctx, "/movies/trending", &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Movie retrieves full metadata for a single movie by id.
func (m *MetadataAPI) Movie(ctx context.Context, id models.MovieID) (*models.Movie, error) {
	var movie models.Movie
	endpoint := "/movies/" + url.PathEscape(string(id))
	if err := m.doRequest(ctx, endpoint, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}
