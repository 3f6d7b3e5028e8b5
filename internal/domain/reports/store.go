package reports

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"timeoff/internal/domain/requests"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// ApprovalsByUser reads every user's approved request counts in one pass,
// ordered by first name.
func (s *Store) ApprovalsByUser(ctx context.Context) ([]UserApprovals, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.first_name, u.last_name, u.username,
           COUNT(r.id) FILTER (WHERE r.type = $2),
           COUNT(r.id) FILTER (WHERE r.type IN ($3, $4))
    FROM users u
    LEFT JOIN time_off_requests r ON r.user_id = u.id AND r.status = $1
    GROUP BY u.id, u.first_name, u.last_name, u.username
    ORDER BY u.first_name
  `, requests.StatusApproved, requests.TypeVacation, requests.TypeSick, requests.TypePersonal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserApprovals
	for rows.Next() {
		var firstName, lastName, username string
		var entry UserApprovals
		if err := rows.Scan(&firstName, &lastName, &username, &entry.VacationRequests, &entry.LeaveRequests); err != nil {
			return nil, err
		}
		entry.Name = displayName(firstName, lastName, username)
		out = append(out, entry)
	}
	return out, rows.Err()
}

func displayName(firstName, lastName, username string) string {
	full := strings.TrimSpace(firstName + " " + lastName)
	if full == "" {
		return username
	}
	return full
}
