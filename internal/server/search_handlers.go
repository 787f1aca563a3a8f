package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
)

type searchData struct {
	pageMeta
	Query   string
	Like    string
	Results []movieCard
	Error   string
}

// searchPage serves two modes: a plain catalog title search (?q=) and a
// "more like this" lookup (?like=) that asks the backend for similar
// titles and enriches each through the catalog, skipping misses.
func (s *Server) searchPage(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	data := searchData{
		pageMeta: s.meta("Search", sess),
		Query:    strings.TrimSpace(c.Query("q")),
		Like:     strings.TrimSpace(c.Query("like")),
	}

	switch {
	case data.Like != "":
		titles, err := s.backend.RecommendByTitle(ctx, data.Like)
		if err != nil {
			if backend.IsNotFound(err) {
				data.Error = "We don't know that movie yet. Try another title."
			} else {
				s.logger.Warn().Err(err).Str("movie", data.Like).Msg("Similar-title lookup failed")
				data.Error = friendlyError(err)
			}
			break
		}
		for _, title := range titles {
			results, err := s.catalog.Search(ctx, title)
			if err != nil || len(results) == 0 {
				continue
			}
			data.Results = append(data.Results, s.cardFromCatalog(results[0]))
		}
	case data.Query != "":
		results, err := s.catalog.Search(ctx, data.Query)
		if err != nil {
			s.logger.Warn().Err(err).Str("query", data.Query).Msg("Catalog search failed")
			data.Error = "Search is unavailable right now. Please try again."
			break
		}
		for _, m := range results {
			data.Results = append(data.Results, s.cardFromCatalog(m))
		}
	}

	c.HTML(http.StatusOK, "search", data)
}
