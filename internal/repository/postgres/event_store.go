package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"campuseventhub/internal/domain"
)

type eventStore struct {
	DB *sql.DB
}

// NewEventStore returns an EventStore backed directly by Postgres, for
// self-hosted deployments that skip the hosted REST API.
func NewEventStore(db *sql.DB) domain.EventStore {
	return &eventStore{DB: db}
}

const eventColumns = `id, title, description, date, time, location, organizer, image_url, category, registration_required, registration_link`

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var e domain.Event
	var link sql.NullString
	err := scan(
		&e.ID, &e.Title, &e.Description, &e.Date, &e.Time, &e.Location,
		&e.Organizer, &e.ImageURL, &e.Category, &e.RegistrationRequired, &link,
	)
	if err != nil {
		return domain.Event{}, err
	}
	if link.Valid {
		e.RegistrationLink = link.String
	}
	return e, nil
}

func (r *eventStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY date ASC`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventStore) InsertEvent(ctx context.Context, f domain.EventFields) (*domain.Event, error) {
	// The link column accepts null regardless of registration_required; the
	// invariant is enforced at form-submission time.
	var link sql.NullString
	if f.RegistrationLink != "" {
		link = sql.NullString{String: f.RegistrationLink, Valid: true}
	}
	id := uuid.NewString()
	query := `
		INSERT INTO events (id, title, description, date, time, location, organizer, image_url, category, registration_required, registration_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		id, f.Title, f.Description, f.Date, f.Time, f.Location,
		f.Organizer, f.ImageURL, f.Category, f.RegistrationRequired, link,
	)
	if err != nil {
		return nil, err
	}
	return &domain.Event{
		ID:                   id,
		Title:                f.Title,
		Description:          f.Description,
		Date:                 f.Date,
		Time:                 f.Time,
		Location:             f.Location,
		Organizer:            f.Organizer,
		ImageURL:             f.ImageURL,
		Category:             f.Category,
		RegistrationRequired: f.RegistrationRequired,
		RegistrationLink:     f.RegistrationLink,
	}, nil
}

// UpdateEvent applies only the fields present in the patch, translated to
// column names.
func (r *eventStore) UpdateEvent(ctx context.Context, id string, patch domain.EventPatch) error {
	var setClauses []string
	var args []interface{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Time != nil {
		add("time", *patch.Time)
	}
	if patch.Location != nil {
		add("location", *patch.Location)
	}
	if patch.Organizer != nil {
		add("organizer", *patch.Organizer)
	}
	if patch.ImageURL != nil {
		add("image_url", *patch.ImageURL)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.RegistrationRequired != nil {
		add("registration_required", *patch.RegistrationRequired)
	}
	if patch.RegistrationLink != nil {
		var link sql.NullString
		if *patch.RegistrationLink != "" {
			link = sql.NullString{String: *patch.RegistrationLink, Valid: true}
		}
		add("registration_link", link)
	}
	if len(setClauses) == 0 {
		return nil
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *eventStore) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetEvent fetches a single row; used by tooling and tests, the application
// reads single events from the cache.
func (r *eventStore) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
