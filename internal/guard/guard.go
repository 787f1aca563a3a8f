// Package guard decides, per navigation, whether a request may proceed or
// must be redirected. Decisions are pure functions of session state and
// the target path; the guard never consults the network.
package guard

import "strings"

// Decision is the action to take before rendering a page.
type Decision int

const (
	// ShowLoading means persisted session state has not finished loading:
	// render a neutral placeholder and make no redirect decision.
	ShowLoading Decision = iota
	// Allow renders the target page.
	Allow
	// RedirectLogin sends the browser to the login entry point.
	RedirectLogin
	// RedirectHome sends an already-authenticated browser away from the
	// login/signup pages.
	RedirectHome
)

func (d Decision) String() string {
	switch d {
	case ShowLoading:
		return "show-loading"
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect-login"
	case RedirectHome:
		return "redirect-home"
	}
	return "unknown"
}

var protectedPrefixes = []string{"/search", "/history", "/profile"}

// IsAuthPath reports whether path is one of the login/signup entry pages.
func IsAuthPath(path string) bool {
	return strings.HasPrefix(path, "/login") || strings.HasPrefix(path, "/signup")
}

// IsProtectedPath reports whether path requires an authenticated session.
// Movie detail pages are public; their rating and history widgets degrade
// when no session exists.
func IsProtectedPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, prefix := range protectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Decide maps (rehydration done, token present, target path) to an
// action. It is evaluated both at the router boundary and inside each
// protected handler, since the two run at different times relative to
// session rehydration, and must be re-run whenever the session changes.
func Decide(initialized, hasToken bool, path string) Decision {
	if !initialized {
		return ShowLoading
	}
	if IsAuthPath(path) {
		if hasToken {
			return RedirectHome
		}
		return Allow
	}
	if IsProtectedPath(path) && !hasToken {
		return RedirectLogin
	}
	return Allow
}
