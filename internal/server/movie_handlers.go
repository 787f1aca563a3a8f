package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
	"github.com/cinematch-dev/cinematch/internal/tmdb"
)

type movieData struct {
	pageMeta
	Movie     movieCard
	Runtime   int
	Cast      []tmdb.CastMember
	Directors []string
	Rating    int
	Saved     bool
	Error     string
}

type errorData struct {
	pageMeta
	Message string
}

// moviePage is public: anyone can read the catalog detail. The rating
// and history widgets render only with a logged-in session.
func (s *Server) moviePage(c *gin.Context) {
	sess, _ := SessionFrom(c)
	ctx := c.Request.Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.HTML(http.StatusNotFound, "error", errorData{
			pageMeta: s.meta("Not found", sess),
			Message:  "That movie does not exist.",
		})
		return
	}

	movie, err := s.catalog.Movie(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Int64("movie_id", id).Msg("Failed to load movie")
		c.HTML(http.StatusNotFound, "error", errorData{
			pageMeta: s.meta("Not found", sess),
			Message:  "We could not find that movie.",
		})
		return
	}

	data := movieData{
		pageMeta: s.meta(movie.Title, sess),
		Movie:    s.cardFromCatalog(*movie),
		Runtime:  movie.Runtime,
		Saved:    c.Query("saved") == "1",
	}
	if c.Query("err") == "rate" {
		data.Error = "Could not save your rating. Please try again."
	}
	if movie.Credits != nil {
		cast := movie.Credits.Cast
		if len(cast) > 10 {
			cast = cast[:10]
		}
		data.Cast = cast
		for _, crew := range movie.Credits.Crew {
			if crew.Job == "Director" {
				data.Directors = append(data.Directors, crew.Name)
			}
		}
	}

	if sess != nil && sess.LoggedIn() {
		rating, err := s.backend.MovieRating(ctx, sess.Token, id)
		switch {
		case err == nil:
			data.Rating = rating
		case backend.IsUnauthorized(err):
			s.forceLogout(c)
			return
		case !backend.IsNotFound(err):
			// A missing rating is normal; anything else is cosmetic.
			s.logger.Warn().Err(err).Int64("movie_id", id).Msg("Failed to load rating")
		}
	}

	c.HTML(http.StatusOK, "movie", data)
}

func (s *Server) rateMovie(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok || !sess.LoggedIn() {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/movies/%d?err=rate", id))
		return
	}

	if err := s.backend.RateMovie(c.Request.Context(), sess.Token, id, rating); err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Int64("movie_id", id).Msg("Failed to store rating")
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/movies/%d?err=rate", id))
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/movies/%d", id))
}

func (s *Server) addToHistory(c *gin.Context) {
	sess, ok := SessionFrom(c)
	if !ok || !sess.LoggedIn() {
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if err := s.backend.AddToHistory(c.Request.Context(), sess.Token, id); err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Int64("movie_id", id).Msg("Failed to add movie to history")
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/movies/%d", id))
		return
	}

	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/movies/%d?saved=1", id))
}
