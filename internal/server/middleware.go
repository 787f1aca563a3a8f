package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/auth"
	"github.com/cinematch-dev/cinematch/internal/guard"
	"github.com/cinematch-dev/cinematch/internal/session"
)

const (
	// sessionCookie carries the signed session id.
	sessionCookie = "cm_session"
	// tokenCookie mirrors the bearer token for the router-level guard,
	// which runs before the store has been consulted.
	tokenCookie = "cm_token"
)

func setSession(c *gin.Context, sess *session.Session) {
	c.Set("session", sess)
}

// SessionFrom returns the rehydrated session for this request
func SessionFrom(c *gin.Context) (*session.Session, bool) {
	v, exists := c.Get("session")
	if !exists {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	return sess, ok
}

// routeGuardMiddleware is the pre-render enforcement point. It only
// looks at the mirror cookie, so it can run before session rehydration.
func (s *Server) routeGuardMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, err := c.Cookie(tokenCookie)
		hasToken := err == nil

		switch guard.Decide(true, hasToken, c.Request.URL.Path) {
		case guard.RedirectHome:
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
		case guard.RedirectLogin:
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
		default:
			c.Next()
		}
	}
}

// sessionMiddleware rehydrates the persisted session named by the signed
// cookie. A missing or invalid cookie yields a completed, logged-out
// session, never an error.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(sessionCookie)
		if err != nil || cookie == "" {
			setSession(c, &session.Session{Initialized: true})
			c.Next()
			return
		}

		sid, err := auth.ParseSessionID(cookie)
		if err != nil {
			s.logger.Debug().Err(err).Msg("Rejecting unparseable session cookie")
			setSession(c, &session.Session{Initialized: true})
			c.Next()
			return
		}

		setSession(c, s.store.Rehydrate(c.Request.Context(), sid))
		c.Next()
	}
}

// requireSession is the handler-level enforcement point: it re-runs the
// shared guard decision against the rehydrated store, which may disagree
// with the cookie the router-level check saw. Returns false when the
// response has already been written.
func (s *Server) requireSession(c *gin.Context) (*session.Session, bool) {
	sess, ok := SessionFrom(c)
	if !ok {
		sess = &session.Session{}
	}

	switch guard.Decide(sess.Initialized, sess.LoggedIn(), c.Request.URL.Path) {
	case guard.ShowLoading:
		c.HTML(http.StatusOK, "loading", loadingData{pageMeta: pageMeta{Title: "Loading"}})
		c.Abort()
		return nil, false
	case guard.RedirectLogin:
		// Reaching here on a protected path means the mirror cookie
		// claimed a login the store no longer has (pruned row, stale
		// cookie). Expire the cookies so the router-level guard reaches
		// the same verdict on the next hop instead of bouncing back.
		s.expireAuthCookies(c)
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return nil, false
	case guard.RedirectHome:
		// The inverse divergence: the store holds a login the mirror
		// cookie lost. Reissue the cookies so the next hop agrees.
		if sess.LoggedIn() {
			if err := s.issueAuthCookies(c, sess.SID, sess.Token); err != nil {
				s.logger.Error().Err(err).Msg("Failed to reissue auth cookies")
			}
		}
		c.Redirect(http.StatusSeeOther, "/")
		c.Abort()
		return nil, false
	}
	return sess, true
}

// forceLogout clears credentials and lands the browser on the login
// entry point. Runs on explicit logout and on any 401 from the backend.
// Cookie erasure and the redirect happen even when the store reset or
// the backend logout call fail.
func (s *Server) forceLogout(c *gin.Context) {
	if sess, ok := SessionFrom(c); ok {
		s.store.ClearAuth(c.Request.Context(), sess)
	}
	s.expireAuthCookies(c)
	c.Redirect(http.StatusSeeOther, "/login")
	c.Abort()
}

func (s *Server) issueAuthCookies(c *gin.Context, sid, token string) error {
	signed, err := auth.SignSessionID(sid)
	if err != nil {
		return err
	}
	maxAge := int(s.config.Session.TTL.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, signed, maxAge, "/", "", false, true)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", false, true)
	return nil
}

func (s *Server) expireAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.SetCookie(tokenCookie, "", -1, "/", "", false, true)
}
