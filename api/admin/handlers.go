package admin

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 6

func genTempPassword() string {
	b := make([]byte, 9)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// ListUsers handles POST /admin/users/list
func ListUsers(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", users)
	}
}

// CreateUser handles POST /admin/users/create
func CreateUser(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := api.GetUserIDFromCtx(r.Context())

		var req struct {
			UserID   string `json:"user_id"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		email := strings.TrimSpace(strings.ToLower(req.Email))
		if email == "" || req.Password == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Email and password required")
			return
		}
		if len(req.Password) < minPasswordLen {
			api.RespondWithError(w, http.StatusBadRequest, "Password too short")
			return
		}
		role := "user"
		if req.Role == "admin" {
			role = "admin"
		}

		exists, err := store.EmailExists(r.Context(), email)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		if exists {
			api.RespondWithError(w, http.StatusConflict, "Email already registered")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Hashing failed")
			return
		}
		user, err := store.CreateUser(r.Context(), email, string(hash), role)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				api.RespondWithError(w, http.StatusConflict, "Email already registered")
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, actorID, "USER_CREATE", user.ID, map[string]interface{}{"email": user.Email, "role": user.Role})
		api.RespondWithPayload(w, true, "", user)
	}
}

// DeleteUser handles POST /admin/users/delete/{id}. Admins cannot delete
// their own account.
func DeleteUser(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if id == actorID {
			api.RespondWithError(w, http.StatusBadRequest, "Cannot delete your own account")
			return
		}
		if err := store.DeleteUser(r.Context(), id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, actorID, "USER_DELETE", id, nil)
		api.RespondWithResult(w, true, "")
	}
}

func setActiveHandler(store *Store, pool *pgxpool.Pool, active bool, action string, blockSelf bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if blockSelf && id == actorID {
			api.RespondWithError(w, http.StatusBadRequest, "Cannot disable your own account")
			return
		}
		user, err := store.SetActive(r.Context(), id, active)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, actorID, action, id, map[string]interface{}{"email": user.Email})
		api.RespondWithPayload(w, true, "", user)
	}
}

// DisableUser handles POST /admin/users/disable/{id}
func DisableUser(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return setActiveHandler(store, pool, false, "USER_DISABLE", true)
}

// EnableUser handles POST /admin/users/enable/{id}
func EnableUser(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return setActiveHandler(store, pool, true, "USER_ENABLE", false)
}

// ResetPassword handles POST /admin/users/reset-password/{id}. Without a
// password in the body a temporary one is generated and returned once.
func ResetPassword(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]

		var req struct {
			UserID   string `json:"user_id"`
			Password string `json:"password"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		generated := req.Password == ""
		password := req.Password
		if generated {
			password = genTempPassword()
		}
		if len(password) < minPasswordLen {
			api.RespondWithError(w, http.StatusBadRequest, "Password too short")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Hashing failed")
			return
		}
		user, err := store.SetPasswordHash(r.Context(), id, string(hash))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, actorID, "USER_RESET_PASSWORD", id,
			map[string]interface{}{"email": user.Email, "generated": generated})

		payload := map[string]interface{}{"user": user}
		if generated {
			payload["tempPassword"] = password
		}
		api.RespondWithPayload(w, true, "", payload)
	}
}

// ListAuditLogs handles POST /admin/audit/list
func ListAuditLogs(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"user_id"`
			Limit  int    `json:"limit"`
		}
		json.NewDecoder(r.Body).Decode(&req)
		limit := req.Limit
		if limit < 1 {
			limit = 100
		}
		if limit > 500 {
			limit = 500
		}
		logs, err := store.ListAuditLogs(r.Context(), limit)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", logs)
	}
}
