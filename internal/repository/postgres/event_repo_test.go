package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"giftr/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventCols = []string{"id", "organizer_id", "title", "topic", "instructions", "budget", "currency", "scheduled_on", "scheduled_draw_at", "drawn_at", "created_at", "updated_at"}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				OrganizerID:  "user-uuid-1",
				Title:        "Office Secret Santa",
				Instructions: `{"blocks":[]}`,
				Budget:       25,
				Currency:     "EUR",
				ScheduledOn:  time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC),
				CreatedAt:    createdAt,
				UpdatedAt:    createdAt,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("user-uuid-1", "Office Secret Santa", sql.NullString{}, `{"blocks":[]}`, 25.0, "EUR",
						time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), sql.NullTime{}, createdAt, createdAt).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID:  "ev-uuid-1",
			wantErr: false,
		},
		{
			name: "db error",
			event: &domain.Event{
				OrganizerID: "user-1",
				Title:       "Xmas",
				Budget:      10,
				Currency:    "USD",
				ScheduledOn: time.Date(2025, 12, 20, 0, 0, 0, 0, time.UTC),
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WillReturnError(sql.ErrConnDone)
			},
			wantID:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	drawnAt := time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC)

	t.Run("success with optional fields", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "user-1", "Office Secret Santa", "Books", `{"blocks":[]}`, 25.0, "EUR",
				time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), nil, drawnAt, createdAt, createdAt,
			))

		repo := NewEventRepository(db)
		e, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.NotNil(t, e.Topic)
		require.Equal(t, "Books", *e.Topic)
		require.Nil(t, e.ScheduledDrawAt)
		require.NotNil(t, e.DrawnAt)
		require.True(t, e.IsDrawn())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_SetScheduledDrawAt(t *testing.T) {
	ctx := context.Background()
	createdAt := time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2025, 12, 1, 18, 0, 0, 0, time.UTC)

	t.Run("sets timestamp while undrawn", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET scheduled_draw_at`).
			WithArgs(sql.NullTime{Time: at, Valid: true}, "ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "user-1", "Office Secret Santa", nil, `{}`, 25.0, "EUR",
				time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), at, nil, createdAt, createdAt,
			))

		repo := NewEventRepository(db)
		e, err := repo.SetScheduledDrawAt(ctx, "ev-1", &at)
		require.NoError(t, err)
		require.NotNil(t, e.ScheduledDrawAt)
		require.True(t, e.ScheduledDrawAt.Equal(at))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already drawn", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET scheduled_draw_at`).
			WithArgs(sql.NullTime{Time: at, Valid: true}, "ev-1").
			WillReturnError(sql.ErrNoRows)
		drawn := time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventCols).AddRow(
				"ev-1", "user-1", "Office Secret Santa", nil, `{}`, 25.0, "EUR",
				time.Date(2025, 12, 24, 0, 0, 0, 0, time.UTC), nil, drawn, createdAt, createdAt,
			))

		repo := NewEventRepository(db)
		_, err = repo.SetScheduledDrawAt(ctx, "ev-1", &at)
		require.True(t, errors.Is(err, domain.ErrEventAlreadyDrawn))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("event missing", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`UPDATE events SET scheduled_draw_at`).
			WithArgs(sql.NullTime{}, "missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`SELECT (.+) FROM events`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.SetScheduledDrawAt(ctx, "missing", nil)
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewEventRepository(db)
		require.NoError(t, repo.Delete(ctx, "ev-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM events`).
			WithArgs("missing").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewEventRepository(db)
		err = repo.Delete(ctx, "missing")
		require.True(t, errors.Is(err, domain.ErrNotFound))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
