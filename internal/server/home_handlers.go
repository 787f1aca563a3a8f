package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
)

type homeData struct {
	pageMeta
	Recommendations []movieCard
	RecError        string
	Popular         []movieCard
	PopularError    string
}

// homePage renders the personalized feed next to the catalog's popular
// listing. The two fetches fail independently: each section carries its
// own banner and never blanks the other.
func (s *Server) homePage(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	data := homeData{pageMeta: s.meta("Home", sess)}

	recs, err := s.backend.Recommendations(ctx, sess.Token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Msg("Failed to load recommendations")
		data.RecError = friendlyError(err)
	}
	for _, m := range recs {
		data.Recommendations = append(data.Recommendations, s.cardFromBackend(m))
	}

	popular, err := s.catalog.Popular(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Failed to load popular movies")
		data.PopularError = "Could not load popular movies right now."
	}
	for _, m := range popular {
		data.Popular = append(data.Popular, s.cardFromCatalog(m))
	}

	c.HTML(http.StatusOK, "home", data)
}
