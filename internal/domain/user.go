package domain

import (
	"context"
	"time"
)

// Role is the closed set of application roles.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Session mirrors the credential issued by the external auth provider.
// The provider owns it; this is the local copy kept in sync through the
// session-change notification stream.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	ExpiresAt   time.Time
}

// Expired reports whether the session's credential has passed its expiry.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Profile is the application-level user derived from a session.
// Role is never absent while a session exists: a missing profile record
// resolves to RoleUser, never to an error.
// swagger:model Profile
type Profile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// SignUpMetadata travels with a signup request; the backend copies it into
// the profile record created for the new user.
type SignUpMetadata struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `json:"role"`
}

// AuthProvider is the external authentication service.
type AuthProvider interface {
	// SignIn authenticates. On success the provider emits a session-change
	// notification; callers must not assume local state is updated when
	// SignIn returns.
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) error
	SignOut(ctx context.Context) error
	// CurrentSession returns the provider's view of the session, or nil.
	CurrentSession() *Session
	// OnSessionChange registers cb for session-or-nil notifications.
	// cb is invoked at least once with the current session upon registration.
	// The returned function unsubscribes.
	OnSessionChange(cb func(*Session)) (unsubscribe func())
}

// ProfileRecord is the raw profile row keyed by the session's user id.
type ProfileRecord struct {
	ID        string
	FirstName string
	LastName  string
	Role      Role
}

// ProfileStore is the external profile storage.
type ProfileStore interface {
	// GetProfile returns ErrNotFound when no record exists for userID.
	GetProfile(ctx context.Context, userID string) (*ProfileRecord, error)
}

// SessionState is the snapshot exposed by the session service.
// swagger:model SessionState
type SessionState struct {
	IsAuthenticated bool     `json:"isAuthenticated"`
	IsAdmin         bool     `json:"isAdmin"`
	IsLoading       bool     `json:"isLoading"`
	User            *Profile `json:"user"`
}

// SessionService maintains the current session and its derived profile.
// Lifecycle is owned by the application root: Start subscribes to the auth
// provider's notification stream, Close tears the subscription down.
type SessionService interface {
	Start()
	Close()
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, firstName, lastName string) error
	Logout(ctx context.Context) error
	State() SessionState
	// Subscribe registers fn for state-change notifications; the returned
	// function unsubscribes.
	Subscribe(fn func(SessionState)) (unsubscribe func())
	// WaitUntilSettled blocks until the state is no longer loading, or ctx ends.
	WaitUntilSettled(ctx context.Context) error
}
