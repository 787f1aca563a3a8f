// Package backend is the typed client for the recommendation REST API.
// Calls that touch a user's data take the bearer token issued at login;
// catalog proxies are issued without one and then carry no Authorization
// header at all.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client represents an HTTP client for the recommendation API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// errorBody covers the message shapes the backend emits
type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do issues one request. token may be empty: the Authorization header is
// then omitted entirely, never sent with a stringified empty value.
func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err == nil {
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			for _, msg := range []string{eb.Detail, eb.Error, eb.Message} {
				if msg != "" {
					return msg
				}
			}
		}
	}
	return "request failed"
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Password          string   `json:"password"`
	FavoriteGenres    []string `json:"favorite_genres"`
	FavoriteActors    []string `json:"favorite_actors"`
	FavoriteDirectors []string `json:"favorite_directors"`
}

// Register creates a new account
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/register", "", nil, req, nil)
}

// LoginResponse represents the login response
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates the user and returns the issued bearer token.
// A 404 means the username is unknown, a 401 bad credentials.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", nil, body, &resp); err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response carried no access token")
	}
	return &resp, nil
}

// Logout tells the backend to discard the token. Best effort; callers
// ignore the result beyond logging.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil, nil)
}

// HistoryEntry is one viewed movie in the user's history
type HistoryEntry struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Timestamp  string `json:"timestamp"`
	PosterPath string `json:"poster_path"`
}

// History lists the user's viewing history, newest first
func (c *Client) History(ctx context.Context, token string) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/history", token, nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// AddToHistory records a viewed movie by its TMDB id
func (c *Client) AddToHistory(ctx context.Context, token string, tmdbMovieID int64) error {
	body := map[string]int64{"tmdb_movie_id": tmdbMovieID}
	return c.do(ctx, http.MethodPost, "/history", token, nil, body, nil)
}

// ClearHistory wipes the user's viewing history
func (c *Client) ClearHistory(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/history", token, nil, nil, nil)
}

// Movie is a movie object as the backend returns it
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	GenreIDs    []int   `json:"genre_ids"`
}

// Recommendations returns the personalized feed for the token's user
func (c *Client) Recommendations(ctx context.Context, token string) ([]Movie, error) {
	var resp struct {
		Recommendations []Movie `json:"recommendations"`
	}
	if err := c.do(ctx, http.MethodGet, "/recommendations", token, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// RecommendByTitle returns titles similar to the given movie title.
// The endpoint is public and returns bare title strings.
func (c *Client) RecommendByTitle(ctx context.Context, title string) ([]string, error) {
	query := url.Values{"movie": {title}}
	var resp struct {
		Recommendations []string `json:"recommendations"`
	}
	if err := c.do(ctx, http.MethodGet, "/recommend", "", query, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Recommendations, nil
}

// FavoriteKind selects one of the user's favorites lists
type FavoriteKind string

const (
	FavoriteGenres    FavoriteKind = "genres"
	FavoriteActors    FavoriteKind = "actors"
	FavoriteDirectors FavoriteKind = "directors"
)

// Favorites reads one favorites list
func (c *Client) Favorites(ctx context.Context, token string, kind FavoriteKind) ([]string, error) {
	var values []string
	if err := c.do(ctx, http.MethodGet, "/favorites/"+string(kind), token, nil, nil, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// UpdateFavorites replaces one favorites list wholesale
func (c *Client) UpdateFavorites(ctx context.Context, token string, kind FavoriteKind, values []string) error {
	if values == nil {
		values = []string{}
	}
	return c.do(ctx, http.MethodPut, "/favorites/"+string(kind), token, nil, values, nil)
}

// Profile represents the user's account data
type Profile struct {
	ID                int64    `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	FavoriteGenres    []string `json:"favorite_genres"`
	FavoriteActors    []string `json:"favorite_actors"`
	FavoriteDirectors []string `json:"favorite_directors"`
}

// Profile fetches the account data for the token's user
func (c *Client) Profile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	if err := c.do(ctx, http.MethodGet, "/profile", token, nil, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ProfileUpdate represents a profile replacement. Password is only
// changed when non-empty.
type ProfileUpdate struct {
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	Password          string   `json:"password,omitempty"`
	FavoriteGenres    []string `json:"favorite_genres"`
	FavoriteActors    []string `json:"favorite_actors"`
	FavoriteDirectors []string `json:"favorite_directors"`
}

// UpdateProfile replaces the profile and returns the stored result
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (*Profile, error) {
	var resp struct {
		Message string  `json:"message"`
		User    Profile `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/profile", token, nil, update, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// RateMovie stores an integer rating between 1 and 5
func (c *Client) RateMovie(ctx context.Context, token string, movieID int64, rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	body := map[string]int{"rating": rating}
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/movies/%d/rate", movieID), token, nil, body, nil)
}

// MovieRating returns the user's stored rating for a movie, 0 if none
func (c *Client) MovieRating(ctx context.Context, token string, movieID int64) (int, error) {
	var resp struct {
		Rating int `json:"rating"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/movies/%d/rating", movieID), token, nil, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Rating, nil
}

// SearchMovies proxies the catalog title search through the backend
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	params := url.Values{"query": {query}}
	var resp struct {
		Results []Movie `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/search/movie", "", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// PopularMovies proxies the catalog popular listing through the backend
func (c *Client) PopularMovies(ctx context.Context) ([]Movie, error) {
	var resp struct {
		Results []Movie `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/movies/popular", "", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
