// Package tmdb is the client for the third-party movie catalog API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents an HTTP client for the TMDB API
type Client struct {
	apiKey     string
	baseURL    string
	imageBase  string
	httpClient *http.Client
}

// New creates a new catalog client
func New(apiKey, baseURL, imageBase string) *Client {
	return &Client{
		apiKey:    apiKey,
		baseURL:   strings.TrimRight(baseURL, "/"),
		imageBase: strings.TrimRight(imageBase, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// Genre is a catalog genre as returned on detail responses
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is an actor credit on a movie
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// CrewMember is a crew credit on a movie
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// Credits are the people attached to a movie
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

// Movie is a catalog movie. List endpoints populate GenreIDs; the detail
// endpoint populates Genres, Runtime and (when requested) Credits.
type Movie struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  float64  `json:"vote_average"`
	Runtime      int      `json:"runtime"`
	GenreIDs     []int    `json:"genre_ids"`
	Genres       []Genre  `json:"genres"`
	Credits      *Credits `json:"credits,omitempty"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", "en-US")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Movie fetches one movie by catalog id, with credits appended
func (c *Client) Movie(ctx context.Context, id int64) (*Movie, error) {
	params := url.Values{"append_to_response": {"credits"}}
	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// Search finds movies by title, first page only
func (c *Client) Search(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{"query": {query}, "page": {"1"}}
	var resp struct {
		Results []Movie `json:"results"`
	}
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Popular returns the catalog's current popular listing, first page only
func (c *Client) Popular(ctx context.Context) ([]Movie, error) {
	params := url.Values{"page": {"1"}}
	var resp struct {
		Results []Movie `json:"results"`
	}
	if err := c.get(ctx, "/movie/popular", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// ImageURL builds a renderable CDN URL for a poster or backdrop path.
// Returns "" for an empty path so templates can fall back to a
// placeholder.
func (c *Client) ImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	if size == "" {
		size = "w500"
	}
	return c.imageBase + "/" + size + path
}
