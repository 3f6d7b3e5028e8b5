package requests

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const selectRequest = `
    SELECT r.id, r.user_id, u.username, r.type, r.start_date, r.end_date, r.reason,
           r.status, r.reviewed_by, r.review_comment, r.created_at, r.updated_at
    FROM time_off_requests r
    JOIN users u ON r.user_id = u.id
`

func (s *Store) Create(ctx context.Context, userID, requestType string, startDate, endDate time.Time, reason string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO time_off_requests (user_id, type, start_date, end_date, reason, status)
    VALUES ($1,$2,$3,$4,$5,$6)
    RETURNING id
  `, userID, requestType, startDate, endDate, reason, StatusPending).Scan(&id)
	return id, err
}

func (s *Store) ListPending(ctx context.Context) ([]TimeOffRequest, error) {
	return s.list(ctx, selectRequest+" WHERE r.status = $1 ORDER BY r.created_at DESC", StatusPending)
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]TimeOffRequest, error) {
	return s.list(ctx, selectRequest+" WHERE r.user_id = $1 ORDER BY r.created_at DESC", userID)
}

func (s *Store) ListDecided(ctx context.Context) ([]TimeOffRequest, error) {
	return s.list(ctx, selectRequest+" WHERE r.status <> $1 ORDER BY r.created_at DESC", StatusPending)
}

func (s *Store) ListDecidedByUser(ctx context.Context, userID string) ([]TimeOffRequest, error) {
	return s.list(ctx, selectRequest+" WHERE r.user_id = $1 AND r.status <> $2 ORDER BY r.created_at DESC", userID, StatusPending)
}

func (s *Store) PendingCountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM time_off_requests
    WHERE user_id = $1 AND status = $2
  `, userID, StatusPending).Scan(&count)
	return count, err
}

// Decide moves a request out of pending and records the reviewer. The update
// only matches rows still pending, so a request already decided by a
// concurrent reviewer is left untouched.
func (s *Store) Decide(ctx context.Context, requestID, reviewerID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE time_off_requests
    SET status = $1, reviewed_by = $2, updated_at = now()
    WHERE id = $3 AND status = $4
  `, status, reviewerID, requestID, StatusPending)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = s.DB.QueryRow(ctx, "SELECT status FROM time_off_requests WHERE id = $1", requestID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrAlreadyDecided
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]TimeOffRequest, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TimeOffRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (TimeOffRequest, error) {
	var req TimeOffRequest
	err := row.Scan(&req.ID, &req.UserID, &req.Username, &req.Type, &req.StartDate, &req.EndDate,
		&req.Reason, &req.Status, &req.ReviewedBy, &req.ReviewComment, &req.CreatedAt, &req.UpdatedAt)
	return req, err
}
