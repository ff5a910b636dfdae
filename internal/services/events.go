package services

import (
	"context"
	"log/slog"
	"sync"

	"campuseventhub/internal/domain"
)

type eventCache struct {
	store  domain.EventStore
	logger *slog.Logger

	mu     sync.Mutex
	events []domain.Event
}

// NewEventCache creates an EventCache over the given event store. The cache
// starts empty; call FetchAll to populate it.
func NewEventCache(store domain.EventStore, logger *slog.Logger) domain.EventCache {
	return &eventCache{store: store, logger: logger}
}

func (c *eventCache) FetchAll(ctx context.Context) error {
	events, err := c.store.ListEvents(ctx)
	if err != nil {
		// The previous cache stays intact on failure.
		c.logger.Error("failed to fetch events", "err", err)
		return domain.NewStoreError("list events", err)
	}
	c.mu.Lock()
	c.events = events
	c.mu.Unlock()
	return nil
}

// Add is deliberately not implemented: creation is issued directly against
// the event store by the originating caller, followed by FetchAll. Kept as an
// explicit sentinel rather than unified silently.
func (c *eventCache) Add(ctx context.Context, fields domain.EventFields) error {
	return domain.ErrCreateNotSupported
}

func (c *eventCache) Update(ctx context.Context, id string, patch domain.EventPatch) error {
	if err := c.store.UpdateEvent(ctx, id, patch); err != nil {
		// No optimistic mutation happened before confirmation, so there is
		// nothing to roll back.
		c.logger.Error("failed to update event", "event_id", id, "err", err)
		return domain.NewStoreError("update event", err)
	}
	c.mu.Lock()
	for i := range c.events {
		if c.events[i].ID == id {
			patch.Apply(&c.events[i])
			break
		}
	}
	c.mu.Unlock()
	return nil
}

func (c *eventCache) Delete(ctx context.Context, id string) error {
	if err := c.store.DeleteEvent(ctx, id); err != nil {
		c.logger.Error("failed to delete event", "event_id", id, "err", err)
		return domain.NewStoreError("delete event", err)
	}
	c.mu.Lock()
	kept := c.events[:0]
	for _, e := range c.events {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	c.events = kept
	c.mu.Unlock()
	return nil
}

func (c *eventCache) GetByID(id string) (domain.Event, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.events {
		if e.ID == id {
			return e, true
		}
	}
	return domain.Event{}, false
}

func (c *eventCache) Events() []domain.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}
