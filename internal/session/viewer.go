package session

import (
	"arcadia-news/internal/api"
	"arcadia-news/internal/models"
)

// State is the capability gate's three-valued read of the current
// viewer's authentication.
type State int

const (
	// Unknown means the session store could not be read. Spend-gated
	// affordances render disabled rather than absent.
	Unknown State = iota
	// Absent means no valid session: public affordances plus a login
	// call-to-action.
	Absent
	// Present means a valid session with a usable bearer token.
	Present
)

// Viewer is the projection of authentication state handed to handlers
// and templates. It carries the token as an explicit capability; no
// collaborator reaches into shared session state.
type Viewer struct {
	State State
	Token api.Token
	User  *models.User
}

// Anonymous is the viewer for requests with no session.
var Anonymous = Viewer{State: Absent}

// LoggedIn reports whether spend-gated affordances are enabled.
func (v Viewer) LoggedIn() bool {
	return v.State == Present && v.Token != ""
}

// Name returns the display name for the navbar, or "" when anonymous.
func (v Viewer) Name() string {
	if v.User == nil {
		return ""
	}
	return v.User.Username
}
