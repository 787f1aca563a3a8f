package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cinematch-dev/cinematch/internal/backend"
)

type profileForm struct {
	Username  string `form:"username" binding:"required,alphanumdash"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"omitempty,min=8"`
	Genres    string `form:"genres"`
	Actors    string `form:"actors"`
	Directors string `form:"directors"`
}

type profileData struct {
	pageMeta
	Form  profileForm
	Saved bool
	Error string
}

func (s *Server) profilePage(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	data := profileData{pageMeta: s.meta("Profile", sess), Saved: c.Query("saved") == "1"}

	profile, err := s.backend.Profile(ctx, sess.Token)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Msg("Failed to load profile")
		data.Error = friendlyError(err)
		// Fall back to the cached user so the form is not empty.
		data.Form = profileForm{
			Username:  sess.User.Username,
			Email:     sess.User.Email,
			Genres:    strings.Join(sess.User.FavoriteGenres, ", "),
			Actors:    strings.Join(sess.User.FavoriteActors, ", "),
			Directors: strings.Join(sess.User.FavoriteDirectors, ", "),
		}
		c.HTML(http.StatusOK, "profile", data)
		return
	}

	// Keep the cached user in step with what the backend holds.
	if err := s.store.SetUser(ctx, sess, userFromProfile(profile)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to refresh cached user")
	}

	data.pageMeta = s.meta("Profile", sess)
	data.Form = profileForm{
		Username:  profile.Username,
		Email:     profile.Email,
		Genres:    strings.Join(profile.FavoriteGenres, ", "),
		Actors:    strings.Join(profile.FavoriteActors, ", "),
		Directors: strings.Join(profile.FavoriteDirectors, ", "),
	}
	c.HTML(http.StatusOK, "profile", data)
}

func (s *Server) updateProfile(c *gin.Context) {
	sess, ok := s.requireSession(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var form profileForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusBadRequest, "profile", profileData{
			pageMeta: s.meta("Profile", sess),
			Form:     form,
			Error:    "Check the form: username (letters, digits, - and _) and a valid email are required; a new password needs at least 8 characters.",
		})
		return
	}

	update := backend.ProfileUpdate{
		Username:          form.Username,
		Email:             form.Email,
		Password:          form.Password,
		FavoriteGenres:    splitCSV(form.Genres),
		FavoriteActors:    splitCSV(form.Actors),
		FavoriteDirectors: splitCSV(form.Directors),
	}
	updated, err := s.backend.UpdateProfile(ctx, sess.Token, update)
	if err != nil {
		if backend.IsUnauthorized(err) {
			s.forceLogout(c)
			return
		}
		s.logger.Warn().Err(err).Msg("Failed to update profile")
		c.HTML(http.StatusOK, "profile", profileData{
			pageMeta: s.meta("Profile", sess),
			Form:     form,
			Error:    friendlyError(err),
		})
		return
	}

	if err := s.store.SetUser(ctx, sess, userFromProfile(updated)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to refresh cached user")
	}

	c.Redirect(http.StatusSeeOther, "/profile?saved=1")
}
