package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"campuseventhub/internal/domain"
)

type registrationService struct {
	store        domain.RegistrationStore
	events       domain.EventCache
	sessions     domain.SessionService
	emailService domain.EmailService
	logger       *slog.Logger
}

// NewRegistrationService creates a RegistrationService. emailService may be
// nil; confirmation emails are then skipped.
func NewRegistrationService(store domain.RegistrationStore, events domain.EventCache, sessions domain.SessionService, emailService domain.EmailService, logger *slog.Logger) domain.RegistrationService {
	return &registrationService{
		store:        store,
		events:       events,
		sessions:     sessions,
		emailService: emailService,
		logger:       logger,
	}
}

func (s *registrationService) RegisterInterest(ctx context.Context, eventID, userID string) (*domain.EventRegistration, bool, error) {
	event, ok := s.events.GetByID(eventID)
	if !ok {
		return nil, false, domain.ErrNotFound
	}

	// Already registered: idempotent, no duplicate row, no second email.
	if existing, err := s.store.GetRegistration(ctx, eventID, userID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, fmt.Errorf("get registration: %w", err)
	}

	reg := domain.NewEventRegistration(eventID, userID, time.Now())
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		return nil, false, fmt.Errorf("create registration: %w", err)
	}

	s.sendConfirmation(ctx, event, userID)
	return reg, true, nil
}

// sendConfirmation is best effort: a mail failure never rolls back the
// registration.
func (s *registrationService) sendConfirmation(ctx context.Context, event domain.Event, userID string) {
	if s.emailService == nil {
		return
	}
	user := s.sessions.State().User
	if user == nil || user.ID != userID || user.Email == "" {
		return
	}
	data := &domain.RegistrationConfirmationEmailData{
		Email:         user.Email,
		Name:          user.Name,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventTime:     event.Time,
		EventLocation: event.Location,
	}
	if err := s.emailService.SendRegistrationConfirmation(ctx, data); err != nil {
		s.logger.Warn("confirmation email failed", "event_id", event.ID, "err", err)
	}
}

func (s *registrationService) ListMine(ctx context.Context, userID string) ([]*domain.RegisteredEvent, error) {
	regs, err := s.store.ListRegistrationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	result := make([]*domain.RegisteredEvent, 0, len(regs))
	for _, reg := range regs {
		event, ok := s.events.GetByID(reg.EventID)
		if !ok {
			// Event deleted but the registration row remains; skip it.
			continue
		}
		result = append(result, &domain.RegisteredEvent{Registration: reg, Event: event})
	}
	return result, nil
}
