package server

import (
	"errors"
	"strings"

	"github.com/cinematch-dev/cinematch/internal/backend"
	"github.com/cinematch-dev/cinematch/internal/session"
	"github.com/cinematch-dev/cinematch/internal/tmdb"
)

// pageMeta is rendered by the shared head and nav partials on every page
type pageMeta struct {
	Title    string
	LoggedIn bool
	Username string
}

func (s *Server) meta(title string, sess *session.Session) pageMeta {
	m := pageMeta{Title: title}
	if sess != nil {
		m.LoggedIn = sess.LoggedIn()
		m.Username = sess.User.Username
	}
	return m
}

// movieCard is one movie tile on a listing page
type movieCard struct {
	ID          int64
	Title       string
	Overview    string
	PosterPath  string
	VoteAverage float64
	Genres      []string
	ReleaseDate string
}

type loadingData struct {
	pageMeta
}

func (s *Server) cardFromCatalog(m tmdb.Movie) movieCard {
	genres := tmdb.GenreNames(m.GenreIDs)
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}
	return movieCard{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		Genres:      genres,
		ReleaseDate: m.ReleaseDate,
	}
}

func (s *Server) cardFromBackend(m backend.Movie) movieCard {
	return movieCard{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		Genres:      tmdb.GenreNames(m.GenreIDs),
	}
}

func userFromProfile(p *backend.Profile) session.User {
	return session.User{
		ID:                p.ID,
		Username:          p.Username,
		Email:             p.Email,
		FavoriteGenres:    p.FavoriteGenres,
		FavoriteActors:    p.FavoriteActors,
		FavoriteDirectors: p.FavoriteDirectors,
	}
}

// friendlyError maps a backend failure to banner text, keeping the
// backend's own message when it sent one and distinguishing a server
// rejection from an unreachable server.
func friendlyError(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" && apiErr.Message != "request failed" {
			return apiErr.Message
		}
		return "The server could not handle that request. Please try again."
	}
	return "Could not reach the server. Check your connection and try again."
}

// splitCSV turns a comma-separated form field into a clean list
func splitCSV(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
