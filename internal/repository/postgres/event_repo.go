package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"giftr/internal/domain"
)

const eventColumns = `id, organizer_id, title, topic, instructions, budget, currency, scheduled_on, scheduled_draw_at, drawn_at, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (organizer_id, title, topic, instructions, budget, currency, scheduled_on, scheduled_draw_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	var topicNull sql.NullString
	if e.Topic != nil {
		topicNull = sql.NullString{String: *e.Topic, Valid: true}
	}
	var drawAtNull sql.NullTime
	if e.ScheduledDrawAt != nil {
		drawAtNull = sql.NullTime{Time: *e.ScheduledDrawAt, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query,
		e.OrganizerID, e.Title, topicNull, e.Instructions, e.Budget, e.Currency,
		e.ScheduledOn, drawAtNull, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, id))
}

func (r *eventRepository) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE organizer_id = $1
		ORDER BY created_at DESC
	`, eventColumns)
	rows, err := r.DB.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEventRow(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, eventID string, title, topic *string, budget *float64, currency *string) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *title)
		n++
	}
	if topic != nil {
		setClauses = append(setClauses, fmt.Sprintf("topic = $%d", n))
		// An empty topic clears the column.
		if *topic == "" {
			args = append(args, sql.NullString{})
		} else {
			args = append(args, sql.NullString{String: *topic, Valid: true})
		}
		n++
	}
	if budget != nil {
		setClauses = append(setClauses, fmt.Sprintf("budget = $%d", n))
		args = append(args, *budget)
		n++
	}
	if currency != nil {
		setClauses = append(setClauses, fmt.Sprintf("currency = $%d", n))
		args = append(args, *currency)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	return scanEvent(r.DB.QueryRowContext(ctx, query, args...))
}

// SetScheduledDrawAt writes the schedule timestamp only while the event is
// undrawn. Zero rows affected on an existing event means the draw already ran.
func (r *eventRepository) SetScheduledDrawAt(ctx context.Context, eventID string, at *time.Time) (*domain.Event, error) {
	var atNull sql.NullTime
	if at != nil {
		atNull = sql.NullTime{Time: *at, Valid: true}
	}
	query := fmt.Sprintf(`
		UPDATE events SET scheduled_draw_at = $1, updated_at = NOW()
		WHERE id = $2 AND drawn_at IS NULL
		RETURNING %s
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, atNull, eventID))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Distinguish a missing event from a drawn one.
			if _, getErr := r.GetByID(ctx, eventID); getErr != nil {
				return nil, getErr
			}
			return nil, domain.ErrEventAlreadyDrawn
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row *sql.Row) (*domain.Event, error) {
	e, err := scanEventRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func scanEventRow(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var topicNull sql.NullString
	var scheduledDrawNull, drawnNull sql.NullTime
	err := row.Scan(
		&e.ID, &e.OrganizerID, &e.Title, &topicNull, &e.Instructions,
		&e.Budget, &e.Currency, &e.ScheduledOn, &scheduledDrawNull, &drawnNull,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if topicNull.Valid {
		e.Topic = &topicNull.String
	}
	if scheduledDrawNull.Valid {
		e.ScheduledDrawAt = &scheduledDrawNull.Time
	}
	if drawnNull.Valid {
		e.DrawnAt = &drawnNull.Time
	}
	return e, nil
}
