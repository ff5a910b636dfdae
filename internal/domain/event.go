package domain

import (
	"context"
	"net/url"
	"strings"
)

// Event represents a campus event listing. The authoritative copy lives in
// the external event store; in-memory copies are cache entries.
// Date is YYYY-MM-DD and Time is HH:MM, as stored.
// swagger:model Event
type Event struct {
	ID                   string `json:"id"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Location             string `json:"location"`
	Organizer            string `json:"organizer"`
	ImageURL             string `json:"imageUrl"`
	Category             string `json:"category"`
	RegistrationRequired bool   `json:"registrationRequired"`
	RegistrationLink     string `json:"registrationLink,omitempty"`
}

// EventFields is the payload for creating an event; the store assigns the ID.
type EventFields struct {
	Title                string `json:"title"`
	Description          string `json:"description"`
	Date                 string `json:"date"`
	Time                 string `json:"time"`
	Location             string `json:"location"`
	Organizer            string `json:"organizer"`
	ImageURL             string `json:"imageUrl"`
	Category             string `json:"category"`
	RegistrationRequired bool   `json:"registrationRequired"`
	RegistrationLink     string `json:"registrationLink"`
}

// Validate checks the form-submission rules. The registration-link invariant
// (required and a valid URL iff registration is required) is enforced here,
// not by the stores, which accept a null link regardless.
func (f EventFields) Validate() []FieldError {
	var errs []FieldError
	if len(strings.TrimSpace(f.Title)) < 3 {
		errs = append(errs, FieldError{Field: "title", Message: "must be at least 3 characters"})
	}
	if len(strings.TrimSpace(f.Description)) < 10 {
		errs = append(errs, FieldError{Field: "description", Message: "must be at least 10 characters"})
	}
	if f.Date == "" {
		errs = append(errs, FieldError{Field: "date", Message: "is required"})
	}
	if f.Time == "" {
		errs = append(errs, FieldError{Field: "time", Message: "is required"})
	}
	if f.Location == "" {
		errs = append(errs, FieldError{Field: "location", Message: "is required"})
	}
	if f.Organizer == "" {
		errs = append(errs, FieldError{Field: "organizer", Message: "is required"})
	}
	if !validWebURL(f.ImageURL) {
		errs = append(errs, FieldError{Field: "imageUrl", Message: "must be a valid URL"})
	}
	if f.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "is required"})
	}
	if f.RegistrationRequired {
		if f.RegistrationLink == "" {
			errs = append(errs, FieldError{Field: "registrationLink", Message: "is required when registration is enabled"})
		} else if !validWebURL(f.RegistrationLink) {
			errs = append(errs, FieldError{Field: "registrationLink", Message: "must be a valid URL"})
		}
	} else if f.RegistrationLink != "" && !validWebURL(f.RegistrationLink) {
		errs = append(errs, FieldError{Field: "registrationLink", Message: "must be a valid URL"})
	}
	return errs
}

func validWebURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// EventPatch is a partial update; nil fields are left unchanged.
type EventPatch struct {
	Title                *string `json:"title"`
	Description          *string `json:"description"`
	Date                 *string `json:"date"`
	Time                 *string `json:"time"`
	Location             *string `json:"location"`
	Organizer            *string `json:"organizer"`
	ImageURL             *string `json:"imageUrl"`
	Category             *string `json:"category"`
	RegistrationRequired *bool   `json:"registrationRequired"`
	RegistrationLink     *string `json:"registrationLink"`
}

// IsZero reports whether the patch carries no fields.
func (p EventPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Date == nil && p.Time == nil &&
		p.Location == nil && p.Organizer == nil && p.ImageURL == nil && p.Category == nil &&
		p.RegistrationRequired == nil && p.RegistrationLink == nil
}

// Apply merges the patch's present fields into e.
func (p EventPatch) Apply(e *Event) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Time != nil {
		e.Time = *p.Time
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.ImageURL != nil {
		e.ImageURL = *p.ImageURL
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.RegistrationRequired != nil {
		e.RegistrationRequired = *p.RegistrationRequired
	}
	if p.RegistrationLink != nil {
		e.RegistrationLink = *p.RegistrationLink
	}
}

// EventStore is the external data store for events.
type EventStore interface {
	// ListEvents returns all events ordered by date ascending.
	ListEvents(ctx context.Context) ([]Event, error)
	InsertEvent(ctx context.Context, fields EventFields) (*Event, error)
	// UpdateEvent applies only the fields present in patch.
	UpdateEvent(ctx context.Context, id string, patch EventPatch) error
	DeleteEvent(ctx context.Context, id string) error
}

// EventCache is the in-memory mirror of the event store: rebuilt wholesale by
// FetchAll, patched per record on local mutation for immediate feedback, and
// eventually consistent with the store only across FetchAll calls.
type EventCache interface {
	FetchAll(ctx context.Context) error
	// Add always returns ErrCreateNotSupported; see that error's doc.
	Add(ctx context.Context, fields EventFields) error
	Update(ctx context.Context, id string, patch EventPatch) error
	Delete(ctx context.Context, id string) error
	// GetByID is a pure cache lookup; the second result is false when absent.
	GetByID(id string) (Event, bool)
	Events() []Event
}
