package holidays

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListByCountry(ctx context.Context, country, location string) ([]Holiday, error) {
	query := `
    SELECT id, country, location, name, date, created_at
    FROM holidays
    WHERE country = $1
  `
	args := []any{country}
	if location != LocationAll {
		query += " AND (location = $2 OR location = $3)"
		args = append(args, location, LocationAll)
	}
	query += " ORDER BY date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var h Holiday
		if err := rows.Scan(&h.ID, &h.Country, &h.Location, &h.Name, &h.Date, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) DistinctCountries(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, "SELECT DISTINCT country FROM holidays ORDER BY country")
}

func (s *Store) DistinctLocations(ctx context.Context, country string) ([]string, error) {
	return s.distinct(ctx, "SELECT DISTINCT location FROM holidays WHERE country = $1 ORDER BY location", country)
}

func (s *Store) Create(ctx context.Context, country, location, name string, date time.Time) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO holidays (country, location, name, date)
    VALUES ($1,$2,$3,$4)
    RETURNING id
  `, country, location, name, date).Scan(&id)
	return id, err
}

func (s *Store) distinct(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		out = append(out, value)
	}
	return out, rows.Err()
}
