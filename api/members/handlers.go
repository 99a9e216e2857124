package members

import (
	"encoding/json"
	"errors"
	"net/http"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"
	"GestAsd/internal/importer"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// memberPayload is the create/update body; fields mirror importer.Record
// plus the caller's user_id consumed by the middleware.
type memberPayload struct {
	importer.Record
	UserID string `json:"user_id"`
}


// ListMembers handles POST /tesserati/list
func ListMembers(store *Store) http.HandlerFunc {
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

// CreateMember handles POST /tesserati/create
func CreateMember(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req memberPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if importer.IsEmpty(req.Record) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyRecordDiscarded)
			return
		}
		rec := importer.Normalize(req.Record)
		created, err := store.InsertReturning(r.Context(), userID, rec)
		if err != nil {
			if errors.Is(err, ErrDuplicate) {
				api.RespondWithError(w, http.StatusConflict, "Fiscal code already present")
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "member_create", "", map[string]interface{}{"member_id": created.ID})
		api.RespondWithPayload(w, true, "", created)
	}
}

// UpdateMember handles POST /tesserati/update/{id}
func UpdateMember(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		var req memberPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if importer.IsEmpty(req.Record) {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyRecordDiscarded)
			return
		}
		rec := importer.Normalize(req.Record)
		updated, err := store.UpdateByIDReturning(r.Context(), userID, id, rec)
		if err != nil {
			switch {
			case errors.Is(err, ErrDuplicate):
				api.RespondWithError(w, http.StatusConflict, "Fiscal code already present")
			case errors.Is(err, pgx.ErrNoRows):
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
			default:
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			}
			return
		}
		audit.FromRequest(r, pool, userID, "member_update", "", map[string]interface{}{"member_id": id})
		api.RespondWithPayload(w, true, "", updated)
	}
}

// DeleteMember handles POST /tesserati/delete/{id}
func DeleteMember(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
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
		audit.FromRequest(r, pool, userID, "member_delete", "", map[string]interface{}{"member_id": id})
		api.RespondWithResult(w, true, "")
	}
}
