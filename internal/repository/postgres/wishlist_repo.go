package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"giftr/internal/domain"
)

const wishlistColumns = `id, participant_id, name, link, notes, created_at, updated_at`

type wishlistItemRepository struct {
	DB *sql.DB
}

func NewWishlistItemRepository(db *sql.DB) domain.WishlistItemRepository {
	return &wishlistItemRepository{
		DB: db,
	}
}

func (r *wishlistItemRepository) Create(ctx context.Context, item *domain.WishlistItem) error {
	query := `
		INSERT INTO wishlist_items (participant_id, name, link, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var notesNull sql.NullString
	if item.Notes != nil {
		notesNull = sql.NullString{String: *item.Notes, Valid: true}
	}
	return r.DB.QueryRowContext(ctx, query, item.ParticipantID, item.Name, item.Link, notesNull, item.CreatedAt, item.UpdatedAt).Scan(&item.ID)
}

func (r *wishlistItemRepository) GetByID(ctx context.Context, id string) (*domain.WishlistItem, error) {
	query := `SELECT ` + wishlistColumns + ` FROM wishlist_items WHERE id = $1`
	item, err := scanWishlistItem(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *wishlistItemRepository) ListByParticipantID(ctx context.Context, participantID string) ([]*domain.WishlistItem, error) {
	query := `
		SELECT ` + wishlistColumns + `
		FROM wishlist_items
		WHERE participant_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]*domain.WishlistItem, 0)
	for rows.Next() {
		item, err := scanWishlistItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *wishlistItemRepository) Update(ctx context.Context, itemID string, name, link, notes *string) (*domain.WishlistItem, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", n))
		args = append(args, *name)
		n++
	}
	if link != nil {
		setClauses = append(setClauses, fmt.Sprintf("link = $%d", n))
		args = append(args, *link)
		n++
	}
	if notes != nil {
		setClauses = append(setClauses, fmt.Sprintf("notes = $%d", n))
		if *notes == "" {
			args = append(args, sql.NullString{})
		} else {
			args = append(args, sql.NullString{String: *notes, Valid: true})
		}
		n++
	}
	if n == 1 {
		return r.GetByID(ctx, itemID)
	}
	args = append(args, itemID)
	query := fmt.Sprintf(`
		UPDATE wishlist_items SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, wishlistColumns)
	item, err := scanWishlistItem(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func (r *wishlistItemRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM wishlist_items WHERE id = $1`
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

func (r *wishlistItemRepository) DeleteByEventID(ctx context.Context, eventID string) error {
	query := `
		DELETE FROM wishlist_items
		WHERE participant_id IN (SELECT id FROM participants WHERE event_id = $1)
	`
	_, err := r.DB.ExecContext(ctx, query, eventID)
	return err
}

func scanWishlistItem(row rowScanner) (*domain.WishlistItem, error) {
	item := &domain.WishlistItem{}
	var notesNull sql.NullString
	err := row.Scan(&item.ID, &item.ParticipantID, &item.Name, &item.Link, &notesNull, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notesNull.Valid {
		item.Notes = &notesNull.String
	}
	return item, nil
}
