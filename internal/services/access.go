package services

import "campuseventhub/internal/domain"

// Decision is the outcome of the access gate for a protected view.
type Decision int

const (
	// DecisionLoading means the session is still resolving; render a
	// placeholder and re-evaluate on the next state change.
	DecisionLoading Decision = iota
	// DecisionAllow renders the protected content.
	DecisionAllow
	// DecisionRedirectLogin sends the visitor to the login view, preserving
	// the originating location.
	DecisionRedirectLogin
	// DecisionRedirectEvents sends an authenticated non-admin away from an
	// admin-only view to the general events listing.
	DecisionRedirectEvents
)

func (d Decision) String() string {
	switch d {
	case DecisionLoading:
		return "loading"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectEvents:
		return "redirect_events"
	}
	return "unknown"
}

// Decide is the single access-decision function consumed by every gated view.
// required is the role the view demands; RoleUser admits any authenticated
// visitor. The function is pure: same state and role, same decision.
func Decide(state domain.SessionState, required domain.Role) Decision {
	if state.IsLoading {
		return DecisionLoading
	}
	if !state.IsAuthenticated {
		return DecisionRedirectLogin
	}
	if required == domain.RoleAdmin && !state.IsAdmin {
		return DecisionRedirectEvents
	}
	return DecisionAllow
}
