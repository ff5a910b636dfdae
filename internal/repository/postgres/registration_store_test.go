package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"campuseventhub/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationStore_CreateRegistration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO event_registrations`).
		WithArgs(sqlmock.AnyArg(), "ev-1", "u1", createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewRegistrationStore(db)
	reg := domain.NewEventRegistration("ev-1", "u1", createdAt)
	require.NoError(t, store.CreateRegistration(context.Background(), reg))

	assert.NotEmpty(t, reg.ID, "store assigns the id")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRegistrationStore_GetRegistration(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	createdAt := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT id, event_id, user_id, created_at FROM event_registrations WHERE event_id = \$1 AND user_id = \$2`).
		WithArgs("ev-1", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at"}).
			AddRow("r1", "ev-1", "u1", createdAt))

	store := NewRegistrationStore(db)
	reg, err := store.GetRegistration(context.Background(), "ev-1", "u1")

	require.NoError(t, err)
	assert.Equal(t, "r1", reg.ID)
	assert.Equal(t, createdAt, reg.CreatedAt)
}

func TestRegistrationStore_GetRegistration_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, created_at FROM event_registrations`).
		WithArgs("ev-1", "ghost").
		WillReturnError(sql.ErrNoRows)

	store := NewRegistrationStore(db)
	_, err = store.GetRegistration(context.Background(), "ev-1", "ghost")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegistrationStore_ListRegistrationsByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, event_id, user_id, created_at FROM event_registrations WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "event_id", "user_id", "created_at"}).
			AddRow("r2", "ev-2", "u1", time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC)).
			AddRow("r1", "ev-1", "u1", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))

	store := NewRegistrationStore(db)
	regs, err := store.ListRegistrationsByUser(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "r2", regs[0].ID)
}
