package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
)

type historyData struct {
	pageMeta
	Entries []backend.HistoryEntry
	Error   string
}

func (s *Server) historyPage(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}

	data := historyData{pageMeta: s.meta("History", sess)}
	entries, err := s.backend.History(c.Request.Context(), sess.Token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Msg("Failed to load history")
		data.Error = friendlyError(err)
	}
	data.Entries = entries

	c.HTML(http.StatusOK, "history", data)
}

func (s *Server) clearHistory(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}

	if err := s.backend.ClearHistory(c.Request.Context(), sess.Token); err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Msg("Failed to clear history")
	}

	c.Redirect(http.StatusSeeOther, "/history")
}
