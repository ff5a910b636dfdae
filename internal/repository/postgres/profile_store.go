package postgres

import (
	"context"
	"database/sql"
	"errors"

	"campuseventhub/internal/domain"
)

type profileStore struct {
	DB *sql.DB
}

// NewProfileStore returns a ProfileStore backed directly by Postgres.
func NewProfileStore(db *sql.DB) domain.ProfileStore {
	return &profileStore{DB: db}
}

func (r *profileStore) GetProfile(ctx context.Context, userID string) (*domain.ProfileRecord, error) {
	query := `
		SELECT id, first_name, last_name, role
		FROM profiles
		WHERE id = $1
	`
	rec := &domain.ProfileRecord{}
	var role string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&rec.ID, &rec.FirstName, &rec.LastName, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	rec.Role = domain.Role(role)
	return rec, nil
}
