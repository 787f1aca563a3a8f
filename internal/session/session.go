// Package session is the single source of truth for a browser's
// credentials: the backend-issued bearer token and a cached user summary,
// durable across server restarts. All mutation goes through the Store's
// operations; pages never write fields directly.
package session

// User is the locally cached profile summary for a logged-in user. It is
// populated optimistically at login with only the username and replaced
// wholesale by later profile fetches, so callers must tolerate empty
// fields (a zero ID, a blank email) on a valid session.
type User struct {
	ID                int64    `json:"id"`
	Username          string   `json:"username"`
	Email             string   `json:"email"`
	FavoriteGenres    []string `json:"favorite_genres"`
	FavoriteActors    []string `json:"favorite_actors"`
	FavoriteDirectors []string `json:"favorite_directors"`
}

// Session is the in-memory view of one browser's credentials.
//
// The zero value is the pre-rehydration state: Initialized is false and
// no routing decision may be based on it. Every Store operation that
// completes a load or a write flips Initialized to true, including loads
// that find nothing.
type Session struct {
	SID         string
	Token       string
	User        User
	Initialized bool
}

// LoggedIn reports whether the session carries a bearer token. Protected
// pages must not render their data-fetching body when this is false.
func (s *Session) LoggedIn() bool {
	return s.Token != ""
}
