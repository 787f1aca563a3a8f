package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
	"github.com/cinematch-dev/cinematch/internal/session"
)

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type signupForm struct {
	Username  string `form:"username" binding:"required,alphanumdash"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"required,min=8"`
	Genres    string `form:"genres"`
	Actors    string `form:"actors"`
	Directors string `form:"directors"`
}

type loginData struct {
	pageMeta
	Username   string
	Error      string
	Registered bool
}

type signupData struct {
	pageMeta
	Form  signupForm
	Error string
}

func (s *Server) loginPage(c *gin.Context) {
	if _, ok := s.requireSession(c); !ok {
		return
	}
	c.HTML(http.StatusOK, "login", loginData{
		pageMeta:   pageMeta{Title: "Log in"},
		Registered: c.Query("registered") == "1",
	})
}

// login runs the full login sequence: authenticate against the backend,
// mint and persist a session, cache a provisional user, try to refine it
// with a profile fetch, then force a fresh navigation to home so the
// guard re-evaluates against persisted state.
func (s *Server) login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "login", loginData{
			pageMeta: pageMeta{Title: "Log in"},
			Error:    "Username and password are required.",
		})
		return
	}

	ctx := c.Request.Context()
	resp, err := s.backend.Login(ctx, form.Username, form.Password)
	if err != nil {
		data := loginData{pageMeta: pageMeta{Title: "Log in"}, Username: form.Username}
		switch {
		case backend.IsNotFound(err):
			data.Error = "No account found for that username. Want to sign up instead?"
		case backend.IsUnauthorized(err):
			data.Error = "Invalid username or password."
		default:
			s.logger.Warn().Err(err).Msg("Login request failed")
			data.Error = friendlyError(err)
		}
		c.HTML(http.StatusOK, "login", data)
		return
	}

	sess := s.store.New()
	if err := s.store.SetToken(ctx, sess, resp.AccessToken); err != nil {
		c.HTML(http.StatusInternalServerError, "login", loginData{
			pageMeta: pageMeta{Title: "Log in"},
			Username: form.Username,
			Error:    "Could not start a session. Please try again.",
		})
		return
	}

	// Provisional user: only the submitted username is known at this
	// point. The profile fetch below replaces it when it succeeds.
	provisional := session.User{
		Username:          form.Username,
		FavoriteGenres:    []string{},
		FavoriteActors:    []string{},
		FavoriteDirectors: []string{},
	}
	if err := s.store.SetUser(ctx, sess, provisional); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache provisional user")
	}
	if profile, err := s.backend.Profile(ctx, resp.AccessToken); err != nil {
		s.logger.Warn().Err(err).Msg("Profile refresh after login failed")
	} else if err := s.store.SetUser(ctx, sess, userFromProfile(profile)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to cache refreshed user")
	}

	if err := s.issueAuthCookies(c, sess.SID, resp.AccessToken); err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue auth cookies")
		c.HTML(http.StatusInternalServerError, "login", loginData{
			pageMeta: pageMeta{Title: "Log in"},
			Username: form.Username,
			Error:    "Could not start a session. Please try again.",
		})
		return
	}

	s.logger.Info().Str("username", form.Username).Msg("User logged in")
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) signupPage(c *gin.Context) {
	if _, ok := s.requireSession(c); !ok {
		return
	}
	c.HTML(http.StatusOK, "signup", signupData{pageMeta: pageMeta{Title: "Sign up"}})
}

func (s *Server) signup(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "signup", signupData{
			pageMeta: pageMeta{Title: "Sign up"},
			Form:     form,
			Error:    "Check the form: username (letters, digits, - and _), a valid email and a password of at least 8 characters are required.",
		})
		return
	}

	req := backend.RegisterRequest{
		Username:          form.Username,
		Email:             form.Email,
		Password:          form.Password,
		FavoriteGenres:    splitCSV(form.Genres),
		FavoriteActors:    splitCSV(form.Actors),
		FavoriteDirectors: splitCSV(form.Directors),
	}
	if err := s.backend.Register(c.Request.Context(), req); err != nil {
		s.logger.Warn().Err(err).Str("username", form.Username).Msg("Registration failed")
		c.HTML(http.StatusOK, "signup", signupData{
			pageMeta: pageMeta{Title: "Sign up"},
			Form:     form,
			Error:    friendlyError(err),
		})
		return
	}

	s.logger.Info().Str("username", form.Username).Msg("User registered")
	c.Redirect(http.StatusSeeOther, "/login?registered=1")
}

// logout delegates to forceLogout: clear the store, expire cookies,
// land on /login. Safe to call when already logged out.
func (s *Server) logout(c *gin.Context) {
	s.forceLogout(c)
}
