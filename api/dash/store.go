package dash

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

type MemberSummary struct {
	ID        string  `json:"id"`
	Nome      *string `json:"nome"`
	Cognome   *string `json:"cognome"`
	Stato     *string `json:"stato"`
	CreatedAt *string `json:"created_at"`
}

type BarItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
	Count  int64   `json:"count"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) CountEntries(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM entries WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (s *Store) CountMembers(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tesserati WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (s *Store) CountTeachers(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM teachers WHERE user_id = $1`, userID).Scan(&n)
	return n, err
}

func (s *Store) CountMembersToday(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tesserati
		  WHERE user_id = $1 AND created_at >= CURRENT_DATE AND created_at < CURRENT_DATE + 1`,
		userID).Scan(&n)
	return n, err
}

// CountMembersIncomplete counts members whose stato is set but is neither
// "completo" nor "completato".
func (s *Store) CountMembersIncomplete(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tesserati
		  WHERE user_id = $1
		    AND COALESCE(stato, '') <> ''
		    AND LOWER(stato) NOT IN ('completo', 'completato')`,
		userID).Scan(&n)
	return n, err
}

func (s *Store) LatestMembers(ctx context.Context, userID string, limit int) ([]MemberSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, nome, cognome, stato, created_at::text FROM tesserati
		  WHERE user_id = $1
		  ORDER BY created_at DESC NULLS LAST
		  LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MemberSummary{}
	for rows.Next() {
		var m MemberSummary
		if err := rows.Scan(&m.ID, &m.Nome, &m.Cognome, &m.Stato, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DashboardStats calls the dashboard_stats function, which returns one
// json document.
func (s *Store) DashboardStats(ctx context.Context, userID string) (map[string]interface{}, error) {
	var raw []byte
	if err := s.pool.QueryRow(ctx,
		`SELECT dashboard_stats($1)`, userID).Scan(&raw); err != nil {
		return nil, err
	}
	stats := map[string]interface{}{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &stats); err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (s *Store) BarTopItems(ctx context.Context, userID string, from, to *string, codes []string, limit int) ([]BarItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT label, COALESCE(amount, 0), COALESCE(count, 0)
		   FROM bar_top_items($1, $2, $3, $4, $5)`, userID, from, to, codes, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []BarItem{}
	for rows.Next() {
		var it BarItem
		if err := rows.Scan(&it.Label, &it.Amount, &it.Count); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
