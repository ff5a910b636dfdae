package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"campuseventhub/internal/domain"
)

const profileResolveTimeout = 10 * time.Second

type sessionService struct {
	provider   domain.AuthProvider
	profiles   domain.ProfileStore
	adminEmail string
	logger     *slog.Logger

	mu        sync.Mutex
	session   *domain.Session
	user      *domain.Profile
	loading   bool
	seq       uint64
	settledCh chan struct{}

	listeners    map[int]func(domain.SessionState)
	nextListener int

	unsubscribe func()
}

// NewSessionService creates a SessionService backed by the given auth provider
// and profile store. adminEmail is the fixed administrative address for the
// role fast path. Call Start to begin observing the provider's notifications.
func NewSessionService(provider domain.AuthProvider, profiles domain.ProfileStore, adminEmail string, logger *slog.Logger) domain.SessionService {
	return &sessionService{
		provider:   provider,
		profiles:   profiles,
		adminEmail: strings.TrimSpace(adminEmail),
		logger:     logger,
		loading:    true,
		settledCh:  make(chan struct{}),
		listeners:  make(map[int]func(domain.SessionState)),
	}
}

func (v *sessionService) Start() {
	v.unsubscribe = v.provider.OnSessionChange(v.handleSessionChange)
}

func (v *sessionService) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *sessionService) Login(ctx context.Context, email, password string) error {
	// Local state is not touched here: the provider emits a session-change
	// notification on success and resolution runs off that stream, so there
	// is no race between this result and the notification.
	if err := v.provider.SignIn(ctx, email, password); err != nil {
		v.logger.Warn("login failed", "email", email, "err", err)
		return domain.NewAuthError(err.Error(), err)
	}
	return nil
}

func (v *sessionService) Register(ctx context.Context, email, password, firstName, lastName string) error {
	role := domain.RoleUser
	if strings.EqualFold(email, v.adminEmail) {
		role = domain.RoleAdmin
	}
	meta := domain.SignUpMetadata{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Role:      role,
	}
	if err := v.provider.SignUp(ctx, email, password, meta); err != nil {
		v.logger.Warn("registration failed", "email", email, "err", err)
		return domain.NewAuthError(err.Error(), err)
	}
	return nil
}

func (v *sessionService) Logout(ctx context.Context) error {
	if err := v.provider.SignOut(ctx); err != nil {
		v.logger.Warn("logout failed", "err", err)
		return domain.NewAuthError(err.Error(), err)
	}
	return nil
}

func (v *sessionService) State() domain.SessionState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stateLocked()
}

func (v *sessionService) stateLocked() domain.SessionState {
	var user *domain.Profile
	if v.user != nil {
		u := *v.user
		user = &u
	}
	return domain.SessionState{
		IsAuthenticated: v.user != nil,
		IsAdmin:         v.user.IsAdmin(),
		IsLoading:       v.loading,
		User:            user,
	}
}

func (v *sessionService) Subscribe(fn func(domain.SessionState)) func() {
	v.mu.Lock()
	id := v.nextListener
	v.nextListener++
	v.listeners[id] = fn
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		delete(v.listeners, id)
		v.mu.Unlock()
	}
}

func (v *sessionService) WaitUntilSettled(ctx context.Context) error {
	for {
		v.mu.Lock()
		if !v.loading {
			v.mu.Unlock()
			return nil
		}
		ch := v.settledCh
		v.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// handleSessionChange runs for every provider notification, including the
// initial one at subscription. Each notification takes a sequence number;
// a resolution result is discarded if a newer notification has arrived,
// so stale lookups never overwrite the profile slot.
func (v *sessionService) handleSessionChange(s *domain.Session) {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	if s == nil {
		v.session = nil
		v.user = nil
		v.setLoadingLocked(false)
		v.mu.Unlock()
		v.notify()
		return
	}
	sess := *s
	v.session = &sess
	v.setLoadingLocked(true)
	v.mu.Unlock()
	v.notify()

	go v.resolveProfile(seq, sess.UserID, sess.Email)
}

func (v *sessionService) resolveProfile(seq uint64, userID, email string) {
	profile := v.lookupProfile(userID, email)

	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		v.logger.Debug("discarding stale profile resolution", "user_id", userID)
		return
	}
	v.user = profile
	v.setLoadingLocked(false)
	v.mu.Unlock()
	v.notify()
}

func (v *sessionService) lookupProfile(userID, email string) *domain.Profile {
	// Admin fast path: the operator account skips the profile round trip.
	if v.isAdminEmail(email) {
		return &domain.Profile{ID: userID, Name: "Admin User", Email: email, Role: domain.RoleAdmin}
	}

	ctx, cancel := context.WithTimeout(context.Background(), profileResolveTimeout)
	defer cancel()

	rec, err := v.profiles.GetProfile(ctx, userID)
	if err != nil {
		// Absence of a profile record never fails the session; fall back to a
		// default profile with the user role.
		v.logger.Warn("profile lookup failed, using default profile", "user_id", userID, "err", err)
		role := domain.RoleUser
		if v.isAdminEmail(email) {
			role = domain.RoleAdmin
		}
		return &domain.Profile{ID: userID, Name: "User", Email: email, Role: role}
	}

	name := strings.TrimSpace(rec.FirstName + " " + rec.LastName)
	if name == "" {
		name = "User"
	}
	role := rec.Role
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	return &domain.Profile{ID: userID, Name: name, Email: email, Role: role}
}

func (v *sessionService) isAdminEmail(email string) bool {
	return v.adminEmail != "" && strings.EqualFold(email, v.adminEmail)
}

// setLoadingLocked transitions the loading flag and maintains the settle
// channel: it is open while loading and closed once settled.
func (v *sessionService) setLoadingLocked(loading bool) {
	if v.loading == loading {
		return
	}
	if loading {
		v.settledCh = make(chan struct{})
	} else {
		close(v.settledCh)
	}
	v.loading = loading
}

func (v *sessionService) notify() {
	v.mu.Lock()
	state := v.stateLocked()
	fns := make([]func(domain.SessionState), 0, len(v.listeners))
	for _, fn := range v.listeners {
		fns = append(fns, fn)
	}
	v.mu.Unlock()
	for _, fn := range fns {
		fn(state)
	}
}
