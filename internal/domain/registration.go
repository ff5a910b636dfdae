package domain

import (
	"context"
	"time"
)

// EventRegistration records a user's interest in an event.
// swagger:model EventRegistration
type EventRegistration struct {
	ID        string    `json:"id"`
	EventID   string    `json:"eventId"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewEventRegistration creates an EventRegistration. ID is set by the store on create.
func NewEventRegistration(eventID, userID string, createdAt time.Time) *EventRegistration {
	return &EventRegistration{
		EventID:   eventID,
		UserID:    userID,
		CreatedAt: createdAt,
	}
}

// RegistrationStore is the external storage for interest registrations.
type RegistrationStore interface {
	CreateRegistration(ctx context.Context, reg *EventRegistration) error
	// GetRegistration returns ErrNotFound when the user has no registration
	// for the event.
	GetRegistration(ctx context.Context, eventID, userID string) (*EventRegistration, error)
	ListRegistrationsByUser(ctx context.Context, userID string) ([]*EventRegistration, error)
}

// RegisteredEvent bundles a registration with its event from the cache.
type RegisteredEvent struct {
	Registration *EventRegistration `json:"registration"`
	Event        Event              `json:"event"`
}

// RegistrationService defines attendee-facing interest registration.
type RegistrationService interface {
	// RegisterInterest registers userID for eventID. created is false when the
	// user was already registered; the call is idempotent.
	RegisterInterest(ctx context.Context, eventID, userID string) (reg *EventRegistration, created bool, err error)
	ListMine(ctx context.Context, userID string) ([]*RegisteredEvent, error)
}
