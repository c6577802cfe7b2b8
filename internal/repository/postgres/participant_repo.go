package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"giftr/internal/domain"
)

const participantColumns = `id, event_id, user_id, recipient_id, status, created_at, updated_at`

// uniqueViolation is the postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type participantRepository struct {
	DB *sql.DB
}

func NewParticipantRepository(db *sql.DB) domain.ParticipantRepository {
	return &participantRepository{
		DB: db,
	}
}

func (r *participantRepository) Create(ctx context.Context, p *domain.Participant) error {
	query := `
		INSERT INTO participants (event_id, user_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, p.EventID, p.UserID, p.Status, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrAlreadyParticipant
		}
		return err
	}
	return nil
}

func (r *participantRepository) GetByID(ctx context.Context, id string) (*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE id = $1
	`
	return scanParticipantRow(r.DB.QueryRowContext(ctx, query, id))
}

func (r *participantRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1 AND user_id = $2
	`
	return scanParticipantRow(r.DB.QueryRowContext(ctx, query, eventID, userID))
}

func (r *participantRepository) ListByEventID(ctx context.Context, eventID string) ([]*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID)
}

func (r *participantRepository) ListByEventAndStatus(ctx context.Context, eventID, status string) ([]*domain.Participant, error) {
	query := `
		SELECT ` + participantColumns + `
		FROM participants
		WHERE event_id = $1 AND status = $2
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, eventID, status)
}

func (r *participantRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE participants SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := r.DB.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *participantRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM participants WHERE id = $1`
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

func (r *participantRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	query := `DELETE FROM participants WHERE event_id = $1`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}

func (r *participantRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Participant, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	participants := make([]*domain.Participant, 0)
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func scanParticipantRow(row *sql.Row) (*domain.Participant, error) {
	p, err := scanParticipant(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanParticipant(row rowScanner) (*domain.Participant, error) {
	p := &domain.Participant{}
	var recipientNull sql.NullString
	err := row.Scan(&p.ID, &p.EventID, &p.UserID, &recipientNull, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if recipientNull.Valid {
		p.RecipientID = &recipientNull.String
	}
	return p, nil
}
