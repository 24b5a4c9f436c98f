package feedback

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new feedback record.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO feedback (
    id,
    user_id,
    document_id,
    payload,
    created_at
) VALUES ($1, $2, $3, $4, $5)`

	payload, err := json.Marshal(rec.Feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	var documentID sql.NullString
	if rec.DocumentID != "" {
		documentID = sql.NullString{String: rec.DocumentID, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, query, rec.ID, rec.UserID, documentID, payload, rec.CreatedAt)
	return err
}

// GetByID fetches a record by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userID, id string) (Record, error) {
	const query = `
SELECT id, user_id, document_id, payload, created_at
FROM feedback
WHERE user_id = $1 AND id = $2
LIMIT 1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, userID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// ListByUser lists records ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, document_id, payload, created_at
FROM feedback
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var documentID sql.NullString
	var payload []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &documentID, &payload, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if documentID.Valid {
		rec.DocumentID = documentID.String
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &rec.Feedback); err != nil {
			return Record{}, fmt.Errorf("decode feedback payload id=%s: %w", rec.ID, err)
		}
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
var _ Repo = (*MemoryRepo)(nil)
