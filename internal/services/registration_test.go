package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"campuseventhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRegistrationStore is an in-memory RegistrationStore for tests.
type fakeRegistrationStore struct {
	regs      []*domain.EventRegistration
	nextID    int
	createErr error
	getErr    error
	listErr   error
}

func (f *fakeRegistrationStore) CreateRegistration(ctx context.Context, reg *domain.EventRegistration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	reg.ID = string(rune('0' + f.nextID))
	f.regs = append(f.regs, reg)
	return nil
}

func (f *fakeRegistrationStore) GetRegistration(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.regs {
		if r.EventID == eventID && r.UserID == userID {
			return r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRegistrationStore) ListRegistrationsByUser(ctx context.Context, userID string) ([]*domain.EventRegistration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.EventRegistration
	for _, r := range f.regs {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeSessions serves a fixed session state.
type fakeSessions struct {
	state domain.SessionState
}

func (f *fakeSessions) Start() {}
func (f *fakeSessions) Close() {}
func (f *fakeSessions) Login(ctx context.Context, email, password string) error { return nil }
func (f *fakeSessions) Register(ctx context.Context, email, password, firstName, lastName string) error {
	return nil
}
func (f *fakeSessions) Logout(ctx context.Context) error                      { return nil }
func (f *fakeSessions) State() domain.SessionState                            { return f.state }
func (f *fakeSessions) Subscribe(fn func(domain.SessionState)) func()         { return func() {} }
func (f *fakeSessions) WaitUntilSettled(ctx context.Context) error            { return nil }

// fakeEmailService records confirmation sends.
type fakeEmailService struct {
	sent []*domain.RegistrationConfirmationEmailData
	err  error
}

func (f *fakeEmailService) SendRegistrationConfirmation(ctx context.Context, data *domain.RegistrationConfirmationEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}

func signedInAs(id, name, email string) *fakeSessions {
	user := &domain.Profile{ID: id, Name: name, Email: email, Role: domain.RoleUser}
	return &fakeSessions{state: domain.SessionState{IsAuthenticated: true, User: user}}
}

func registrationFixture(t *testing.T) (domain.EventCache, *fakeRegistrationStore, *fakeEmailService, domain.RegistrationService) {
	t.Helper()
	cache := NewEventCache(newFakeEventStore(
		domain.Event{ID: "ev-1", Title: "Jazz Night", Date: "2026-09-12", Time: "19:00", Location: "Student Center"},
	), testLogger)
	require.NoError(t, cache.FetchAll(context.Background()))
	store := &fakeRegistrationStore{}
	emails := &fakeEmailService{}
	svc := NewRegistrationService(store, cache, signedInAs("u1", "Ada Lovelace", "ada@example.edu"), emails, testLogger)
	return cache, store, emails, svc
}

func TestRegisterInterest_CreatesAndSendsConfirmation(t *testing.T) {
	_, store, emails, svc := registrationFixture(t)

	reg, created, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")

	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, reg)
	assert.Equal(t, "ev-1", reg.EventID)
	assert.Equal(t, "u1", reg.UserID)
	assert.Len(t, store.regs, 1)
	require.Len(t, emails.sent, 1)
	assert.Equal(t, "ada@example.edu", emails.sent[0].Email)
	assert.Equal(t, "Jazz Night", emails.sent[0].EventTitle)
}

func TestRegisterInterest_IsIdempotent(t *testing.T) {
	_, store, emails, svc := registrationFixture(t)

	first, created, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.regs, 1)
	assert.Len(t, emails.sent, 1, "no second confirmation email")
}

func TestRegisterInterest_UnknownEvent(t *testing.T) {
	_, _, _, svc := registrationFixture(t)

	_, _, err := svc.RegisterInterest(context.Background(), "missing", "u1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterInterest_CreateFailurePropagates(t *testing.T) {
	_, store, emails, svc := registrationFixture(t)
	cause := errors.New("store down")
	store.createErr = cause

	_, _, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")

	assert.ErrorIs(t, err, cause)
	assert.Empty(t, emails.sent)
}

func TestRegisterInterest_EmailFailureDoesNotFailRegistration(t *testing.T) {
	cache := NewEventCache(newFakeEventStore(domain.Event{ID: "ev-1", Title: "Jazz Night"}), testLogger)
	require.NoError(t, cache.FetchAll(context.Background()))
	store := &fakeRegistrationStore{}
	emails := &fakeEmailService{err: errors.New("smtp down")}
	svc := NewRegistrationService(store, cache, signedInAs("u1", "Ada", "ada@example.edu"), emails, testLogger)

	_, created, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Len(t, store.regs, 1)
}

func TestRegisterInterest_NilEmailServiceSkipsConfirmation(t *testing.T) {
	cache := NewEventCache(newFakeEventStore(domain.Event{ID: "ev-1"}), testLogger)
	require.NoError(t, cache.FetchAll(context.Background()))
	svc := NewRegistrationService(&fakeRegistrationStore{}, cache, signedInAs("u1", "Ada", "ada@example.edu"), nil, testLogger)

	_, created, err := svc.RegisterInterest(context.Background(), "ev-1", "u1")

	require.NoError(t, err)
	assert.True(t, created)
}

func TestListMine_JoinsWithCacheAndSkipsDeletedEvents(t *testing.T) {
	cache := NewEventCache(newFakeEventStore(
		domain.Event{ID: "ev-1", Title: "Jazz Night"},
	), testLogger)
	require.NoError(t, cache.FetchAll(context.Background()))
	store := &fakeRegistrationStore{regs: []*domain.EventRegistration{
		{ID: "r1", EventID: "ev-1", UserID: "u1", CreatedAt: time.Now()},
		{ID: "r2", EventID: "ev-gone", UserID: "u1", CreatedAt: time.Now()},
		{ID: "r3", EventID: "ev-1", UserID: "someone-else", CreatedAt: time.Now()},
	}}
	svc := NewRegistrationService(store, cache, signedInAs("u1", "Ada", "ada@example.edu"), nil, testLogger)

	got, err := svc.ListMine(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "r1", got[0].Registration.ID)
	assert.Equal(t, "Jazz Night", got[0].Event.Title)
}
