// Package accounts manages the user's chart of accounts (codes like AS, B,
// C, F, I, SCU) that ledger entries are classified under.
package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Account struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) List(ctx context.Context, ownerID string) ([]Account, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, code, name, COALESCE(type, '') FROM accounts WHERE user_id = $1 ORDER BY code`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Account{}
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, ownerID string, a Account) (Account, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO accounts (user_id, code, name, type) VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		ownerID, a.Code, a.Name, a.Type,
	).Scan(&a.ID)
	return a, err
}

func (s *Store) Update(ctx context.Context, ownerID, id string, a Account) (Account, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE accounts SET code = $1, name = $2, type = $3
		 WHERE id = $4 AND user_id = $5
		 RETURNING id, code, name, COALESCE(type, '')`,
		a.Code, a.Name, a.Type, id, ownerID,
	)
	var out Account
	if err := row.Scan(&out.ID, &out.Code, &out.Name, &out.Type); err != nil {
		return Account{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM accounts WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type accountPayload struct {
	UserID string `json:"user_id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	Type   string `json:"type"`
}

// ListAccounts handles POST /conti/list
func ListAccounts(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		items, err := store.List(r.Context(), userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", items)
	}
}

// CreateAccount handles POST /conti/create
func CreateAccount(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req accountPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.Code == "" || req.Name == "" {
			api.RespondWithError(w, http.StatusBadRequest, "code and name are required")
			return
		}
		created, err := store.Create(r.Context(), userID, Account{Code: req.Code, Name: req.Name, Type: req.Type})
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "account_create", "", map[string]interface{}{"code": req.Code})
		api.RespondWithPayload(w, true, "", created)
	}
}

// UpdateAccount handles POST /conti/update/{id}
func UpdateAccount(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		var req accountPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		updated, err := store.Update(r.Context(), userID, id, Account{Code: req.Code, Name: req.Name, Type: req.Type})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "account_update", "", map[string]interface{}{"account_id": id})
		api.RespondWithPayload(w, true, "", updated)
	}
}

// DeleteAccount handles POST /conti/delete/{id}
func DeleteAccount(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if err := store.Delete(r.Context(), userID, id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "account_delete", "", map[string]interface{}{"account_id": id})
		api.RespondWithResult(w, true, "")
	}
}
