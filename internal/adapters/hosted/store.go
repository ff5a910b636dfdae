package hosted

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"campuseventhub/internal/domain"
)

// DataClient implements domain.EventStore, domain.ProfileStore, and
// domain.RegistrationStore against the hosted REST data API. Rows use the
// store's snake_case column naming; translation to and from the domain model
// happens here.
type DataClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	// token returns the current user bearer token; empty falls back to the
	// API key, which the backend accepts for anonymous reads.
	token func() string
}

// NewDataClient returns a DataClient. token may be nil for anonymous access.
func NewDataClient(baseURL, apiKey string, client *http.Client, token func() string) *DataClient {
	if client == nil {
		client = http.DefaultClient
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &DataClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		token:   token,
	}
}

type eventRow struct {
	ID                   string  `json:"id,omitempty"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Date                 string  `json:"date"`
	Time                 string  `json:"time"`
	Location             string  `json:"location"`
	Organizer            string  `json:"organizer"`
	ImageURL             string  `json:"image_url"`
	Category             string  `json:"category"`
	RegistrationRequired bool    `json:"registration_required"`
	RegistrationLink     *string `json:"registration_link"`
}

func (r eventRow) toDomain() domain.Event {
	e := domain.Event{
		ID:                   r.ID,
		Title:                r.Title,
		Description:          r.Description,
		Date:                 r.Date,
		Time:                 r.Time,
		Location:             r.Location,
		Organizer:            r.Organizer,
		ImageURL:             r.ImageURL,
		Category:             r.Category,
		RegistrationRequired: r.RegistrationRequired,
	}
	if r.RegistrationLink != nil {
		e.RegistrationLink = *r.RegistrationLink
	}
	return e
}

func rowFromFields(f domain.EventFields) eventRow {
	row := eventRow{
		Title:                f.Title,
		Description:          f.Description,
		Date:                 f.Date,
		Time:                 f.Time,
		Location:             f.Location,
		Organizer:            f.Organizer,
		ImageURL:             f.ImageURL,
		Category:             f.Category,
		RegistrationRequired: f.RegistrationRequired,
	}
	// The store accepts a null link regardless of registration_required;
	// the invariant is enforced at form-submission time.
	if f.RegistrationLink != "" {
		link := f.RegistrationLink
		row.RegistrationLink = &link
	}
	return row
}

// patchColumns translates only the fields present in the patch into the
// store's column names.
func patchColumns(p domain.EventPatch) map[string]any {
	cols := make(map[string]any)
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.Time != nil {
		cols["time"] = *p.Time
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Organizer != nil {
		cols["organizer"] = *p.Organizer
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.RegistrationRequired != nil {
		cols["registration_required"] = *p.RegistrationRequired
	}
	if p.RegistrationLink != nil {
		if *p.RegistrationLink == "" {
			cols["registration_link"] = nil
		} else {
			cols["registration_link"] = *p.RegistrationLink
		}
	}
	return cols
}

func (c *DataClient) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var rows []eventRow
	if err := c.do(ctx, http.MethodGet, "/rest/v1/events?select=*&order=date.asc", nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]domain.Event, len(rows))
	for i, r := range rows {
		events[i] = r.toDomain()
	}
	return events, nil
}

func (c *DataClient) InsertEvent(ctx context.Context, fields domain.EventFields) (*domain.Event, error) {
	var rows []eventRow
	if err := c.do(ctx, http.MethodPost, "/rest/v1/events", []eventRow{rowFromFields(fields)}, "return=representation", &rows); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("insert event: empty response")
	}
	event := rows[0].toDomain()
	return &event, nil
}

func (c *DataClient) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error {
	cols := patchColumns(patch)
	if len(cols) == 0 {
		return nil
	}
	path := "/rest/v1/events?id=eq." + url.QueryEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, cols, "", nil); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (c *DataClient) DeleteEvent(ctx context.Context, id string) error {
	path := "/rest/v1/events?id=eq." + url.QueryEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, "", nil); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

type profileRow struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

func (c *DataClient) GetProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	var rows []profileRow
	path := "/rest/v1/profiles?select=*&id=eq." + url.QueryEscape(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	r := rows[0]
	return &domain.ProfileRecord{
		ID:        r.ID,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      domain.Role(r.Role),
	}, nil
}

type registrationRow struct {
	ID        string    `json:"id,omitempty"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

func (c *DataClient) CreateRegistration(ctx context.Context, reg *domain.EventRegistration) error {
	body := []registrationRow{{EventID: reg.EventID, UserID: reg.UserID}}
	var rows []registrationRow
	if err := c.do(ctx, http.MethodPost, "/rest/v1/event_registrations", body, "return=representation", &rows); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	if len(rows) > 0 {
		reg.ID = rows[0].ID
		if !rows[0].CreatedAt.IsZero() {
			reg.CreatedAt = rows[0].CreatedAt
		}
	}
	return nil
}

func (c *DataClient) GetRegistration(ctx context.Context, eventID, userID string) (*domain.EventRegistration, error) {
	path := "/rest/v1/event_registrations?select=*&event_id=eq." + url.QueryEscape(eventID) +
		"&user_id=eq." + url.QueryEscape(userID)
	var rows []registrationRow
	if err := c.do(ctx, http.MethodGet, path, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound
	}
	return regFromRow(rows[0]), nil
}

func (c *DataClient) ListRegistrationsByUser(ctx context.Context, userID string) ([]*domain.EventRegistration, error) {
	path := "/rest/v1/event_registrations?select=*&user_id=eq." + url.QueryEscape(userID) + "&order=created_at.desc"
	var rows []registrationRow
	if err := c.do(ctx, http.MethodGet, path, nil, "", &rows); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	regs := make([]*domain.EventRegistration, len(rows))
	for i, r := range rows {
		regs[i] = regFromRow(r)
	}
	return regs, nil
}

func regFromRow(r registrationRow) *domain.EventRegistration {
	return &domain.EventRegistration{
		ID:        r.ID,
		EventID:   r.EventID,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

func (c *DataClient) do(ctx context.Context, method, path string, body any, prefer string, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	bearer := c.token()
	if bearer == "" {
		bearer = c.apiKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("data api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("data api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode data api response: %w", err)
		}
	}
	return nil
}
