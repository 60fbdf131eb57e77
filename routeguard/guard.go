// Package routeguard is the pure access-decision function gating protected
// views. It holds no state and touches no rendering framework, so every
// portal shares one unit-testable policy instead of scattering navigation
// calls through its screens.
package routeguard

import (
	"github.com/flanux/bankportal/session"
)

// Outcome is what the caller should do with the target route.
type Outcome string

const (
	OutcomeRender   Outcome = "render"
	OutcomeRedirect Outcome = "redirect"
)

// Decision is the result of consulting the guard.
type Decision struct {
	Outcome    Outcome
	RedirectTo string // set only when Outcome is OutcomeRedirect
}

// Render reports whether the target route may be shown.
func (d Decision) Render() bool {
	return d.Outcome == OutcomeRender
}

// Decide gates access to targetRoute. The login route always renders, even
// with an active session (no forced bounce away from an explicitly visited
// login screen). Every other route renders only when a session is present;
// otherwise the caller is redirected to the login route. Session presence is
// necessary and sufficient: there is no per-route role check.
func Decide(sess *session.Session, targetRoute string) Decision {
	if targetRoute == RouteLogin {
		return Decision{Outcome: OutcomeRender}
	}
	if sess == nil {
		return Decision{Outcome: OutcomeRedirect, RedirectTo: RouteLogin}
	}
	return Decision{Outcome: OutcomeRender}
}
