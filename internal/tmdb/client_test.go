package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search/movie", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "matrix", r.URL.Query().Get("query"))

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"id":           603,
					"title":        "The Matrix",
					"overview":     "A hacker discovers reality is a simulation.",
					"poster_path":  "/matrix.jpg",
					"release_date": "1999-03-30",
					"vote_average": 8.2,
					"genre_ids":    []int{28, 878},
				},
			},
		})
	}))
	defer srv.Close()

	client := New("test-key", srv.URL, "https://image.example/t/p")
	results, err := client.Search(context.Background(), "matrix")
	require.NoError(t, err)
	require.Len(t, results, 1)

	m := results[0]
	assert.Equal(t, int64(603), m.ID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, []int{28, 878}, m.GenreIDs)
}

func TestMovieWithCredits(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "credits", r.URL.Query().Get("append_to_response"))

		json.NewEncoder(w).Encode(map[string]any{
			"id":      603,
			"title":   "The Matrix",
			"runtime": 136,
			"genres":  []map[string]any{{"id": 878, "name": "Science Fiction"}},
			"credits": map[string]any{
				"cast": []map[string]any{{"name": "Keanu Reeves", "character": "Neo"}},
				"crew": []map[string]any{{"name": "Lana Wachowski", "job": "Director"}},
			},
		})
	}))
	defer srv.Close()

	client := New("test-key", srv.URL, "https://image.example/t/p")
	movie, err := client.Movie(context.Background(), 603)
	require.NoError(t, err)

	assert.Equal(t, 136, movie.Runtime)
	require.Len(t, movie.Genres, 1)
	assert.Equal(t, "Science Fiction", movie.Genres[0].Name)
	require.NotNil(t, movie.Credits)
	assert.Equal(t, "Neo", movie.Credits.Cast[0].Character)
	assert.Equal(t, "Director", movie.Credits.Crew[0].Job)
}

func TestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := New("bad-key", srv.URL, "https://image.example/t/p")
	_, err := client.Popular(context.Background())
	assert.Error(t, err)
}

func TestImageURL(t *testing.T) {
	client := New("test-key", "https://api.example/3", "https://image.example/t/p")

	assert.Equal(t, "https://image.example/t/p/w500/matrix.jpg", client.ImageURL("/matrix.jpg", "w500"))
	assert.Equal(t, "https://image.example/t/p/w500/matrix.jpg", client.ImageURL("/matrix.jpg", ""))
	assert.Equal(t, "https://image.example/t/p/w92/matrix.jpg", client.ImageURL("/matrix.jpg", "w92"))
	assert.Empty(t, client.ImageURL("", "w500"))
}

func TestGenreNames(t *testing.T) {
	assert.Equal(t, "Action", GenreName(28))
	assert.Equal(t, "Science Fiction", GenreName(878))
	assert.Empty(t, GenreName(99999))

	names := GenreNames([]int{28, 99999, 18})
	assert.Equal(t, []string{"Action", "Drama"}, names)
}
