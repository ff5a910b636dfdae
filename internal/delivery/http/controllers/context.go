package controllers

import (
	"net/http"

	"campuseventhub/internal/delivery/http/middleware"
	"campuseventhub/internal/domain"
)

// userFromRequest returns the profile the gate placed in the request context.
func userFromRequest(r *http.Request) (*domain.Profile, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok || user == nil {
		return nil, false
	}
	return user, true
}
