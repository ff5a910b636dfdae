package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"campuseventhub/internal/delivery/http/helpers"
	"campuseventhub/internal/domain"
	"campuseventhub/internal/filter"
)

// EventController serves the event listing, detail, and admin management
// endpoints on top of the in-memory event cache.
type EventController struct {
	Logger *slog.Logger
	Cache  domain.EventCache
	Store  domain.EventStore
}

func NewEventController(logger *slog.Logger, cache domain.EventCache, store domain.EventStore) *EventController {
	return &EventController{
		Logger: logger,
		Cache:  cache,
		Store:  store,
	}
}

// ListEventsResponse is the data payload for GET /events (200).
type ListEventsResponse struct {
	Events     []domain.Event `json:"events"`
	Categories []string       `json:"categories"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  ListEventsResponse `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEvents godoc
// @Summary List events
// @Description Returns cached events filtered by optional search term and category, plus the category choices derived from the full cache. Search matches title, description, and location case-insensitively; category "All" or empty matches everything.
// @Tags events
// @Produce json
// @Param search query string false "Substring to match against title, description, and location"
// @Param category query string false "Exact category, or All"
// @Success 200 {object} controllers.ListEventsSuccessResponse "data contains events and categories"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	all := c.Cache.Events()
	q := filter.Query{
		Term:            r.URL.Query().Get("search"),
		Category:        r.URL.Query().Get("category"),
		IncludeLocation: true,
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Events:     filter.Apply(all, q),
		Categories: filter.Categories(all),
	})
}

// ListFeaturedSuccessResponse is the success response envelope for GET /events/featured (200).
type ListFeaturedSuccessResponse struct {
	Data  []domain.Event    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListFeatured godoc
// @Summary List events for the featured carousel
// @Description Returns cached events filtered by optional search term and category. Unlike the main listing, search does not match the location field.
// @Tags events
// @Produce json
// @Param search query string false "Substring to match against title and description"
// @Param category query string false "Exact category, or All"
// @Success 200 {object} controllers.ListFeaturedSuccessResponse "data is an array of events"
// @Router /events/featured [get]
func (c *EventController) ListFeatured(w http.ResponseWriter, r *http.Request) {
	q := filter.Query{
		Term:            r.URL.Query().Get("search"),
		Category:        r.URL.Query().Get("category"),
		IncludeLocation: false,
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, filter.Apply(c.Cache.Events(), q))
}

// GetEventSuccessResponse is the success response envelope for GET /events/{eventID} (200).
type GetEventSuccessResponse struct {
	Data  domain.Event      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetEvent godoc
// @Summary Get an event by ID
// @Description Returns a single event from the cache.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.GetEventSuccessResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, ok := c.Cache.GetByID(eventID)
	if !ok {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	domain.EventFields
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []domain.FieldError {
	return c.EventFields.Validate()
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Inserts the event into the backing store and refreshes the cache. Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event fields"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: validation_failed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Store.InsertEvent(r.Context(), req.EventFields)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	// The cache refresh is best effort. The insert already succeeded, so the
	// next successful refresh picks the event up.
	if err := c.Cache.FetchAll(r.Context()); err != nil {
		c.Logger.WarnContext(r.Context(), "cache refresh after create failed", "err", err)
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEventSuccessResponse is the success response envelope for PATCH /events/{eventID} (200).
type UpdateEventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// UpdateEvent godoc
// @Summary Update event fields
// @Description Applies a partial update to the stored event and patches the cached copy in place. Omitted fields are unchanged. Admin only.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Param body body domain.EventPatch true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateEventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var patch domain.EventPatch
	if !helpers.DecodeAndValidate(w, r, &patch) {
		return
	}
	if patch.IsZero() {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "no fields to update")
		return
	}
	if err := c.Cache.Update(r.Context(), eventID, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	event, ok := c.Cache.GetByID(eventID)
	if !ok {
		// The store accepted the update but the cache has no copy; report the
		// state we can observe.
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &event)
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID} (200).
type DeleteEventResponse struct {
	Status string `json:"status"`
}

// DeleteEventSuccessResponse is the success response envelope for DELETE /events/{eventID} (200).
type DeleteEventSuccessResponse struct {
	Data  DeleteEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event from the backing store and removes it from the cache. Admin only.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} controllers.DeleteEventSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if err := c.Cache.Delete(r.Context(), eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{Status: "deleted"})
}

// RefreshEventsResponse is the data payload for POST /events/refresh (200).
type RefreshEventsResponse struct {
	Count int `json:"count"`
}

// RefreshEventsSuccessResponse is the success response envelope for POST /events/refresh (200).
type RefreshEventsSuccessResponse struct {
	Data  RefreshEventsResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// RefreshEvents godoc
// @Summary Reload the event cache
// @Description Fetches all events from the backing store and replaces the cache wholesale. On failure the previous cache contents are kept.
// @Tags events
// @Produce json
// @Success 200 {object} controllers.RefreshEventsSuccessResponse "data contains the cached event count"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/refresh [post]
func (c *EventController) RefreshEvents(w http.ResponseWriter, r *http.Request) {
	if err := c.Cache.FetchAll(r.Context()); err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RefreshEventsResponse{Count: len(c.Cache.Events())})
}
