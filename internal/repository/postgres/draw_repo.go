package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"giftr/internal/domain"
)

type drawRepository struct {
	DB *sql.DB
}

func NewDrawRepository(db *sql.DB) domain.DrawRepository {
	return &drawRepository{
		DB: db,
	}
}

// ApplyAssignments marks the event drawn and writes every recipient in one
// transaction. The conditional event update runs first: it takes the row
// lock that serializes concurrent draws, and zero rows affected means
// another invocation already drew this event. Any failed participant write
// rolls the whole draw back, so the event is never left drawn with partial
// recipients.
func (r *drawRepository) ApplyAssignments(ctx context.Context, eventID string, assignments []domain.Assignment, drawnAt time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin draw transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE events SET drawn_at = $1, updated_at = $1
		WHERE id = $2 AND drawn_at IS NULL
	`, drawnAt, eventID)
	if err != nil {
		return fmt.Errorf("mark event drawn: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark event drawn: %w", err)
	}
	if rows == 0 {
		return domain.ErrEventAlreadyDrawn
	}

	for _, a := range assignments {
		result, err := tx.ExecContext(ctx, `
			UPDATE participants SET recipient_id = $1, updated_at = $2
			WHERE id = $3 AND event_id = $4
		`, a.RecipientParticipantID, drawnAt, a.GiverParticipantID, eventID)
		if err != nil {
			return fmt.Errorf("assign recipient to participant %s: %w", a.GiverParticipantID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("assign recipient to participant %s: %w", a.GiverParticipantID, err)
		}
		if rows == 0 {
			// Participant vanished between the read and the write; the
			// assignment set is stale, abort the whole draw.
			return domain.ErrNotFound
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit draw transaction: %w", err)
	}
	return nil
}
