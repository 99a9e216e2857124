package admin

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

type AuditLog struct {
	ID           string                 `json:"id"`
	ActorUserID  *string                `json:"actor_user_id"`
	Action       string                 `json:"action"`
	TargetUserID *string                `json:"target_user_id"`
	Meta         map[string]interface{} `json:"meta"`
	IP           *string                `json:"ip"`
	UserAgent    *string                `json:"user_agent"`
	CreatedAt    string                 `json:"created_at"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, email, role, COALESCE(is_active, true) FROM users ORDER BY email ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Email, &u.Role, &u.IsActive); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (s *Store) CreateUser(ctx context.Context, email, passwordHash, role string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, email, role, COALESCE(is_active, true)`,
		email, passwordHash, role).Scan(&u.ID, &u.Email, &u.Role, &u.IsActive)
	return u, err
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET is_active = $2 WHERE id = $1
		 RETURNING id, email, role, COALESCE(is_active, true)`,
		id, active).Scan(&u.ID, &u.Email, &u.Role, &u.IsActive)
	return u, err
}

func (s *Store) SetPasswordHash(ctx context.Context, id, hash string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1
		 RETURNING id, email, role, COALESCE(is_active, true)`,
		id, hash).Scan(&u.ID, &u.Email, &u.Role, &u.IsActive)
	return u, err
}

func (s *Store) ListAuditLogs(ctx context.Context, limit int) ([]AuditLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, actor_user_id, action, target_user_id, meta, ip, user_agent, created_at::text
		   FROM audit_logs
		  ORDER BY created_at DESC
		  LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []AuditLog{}
	for rows.Next() {
		var l AuditLog
		if err := rows.Scan(&l.ID, &l.ActorUserID, &l.Action, &l.TargetUserID,
			&l.Meta, &l.IP, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
