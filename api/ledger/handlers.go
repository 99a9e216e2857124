package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"
	"GestAsd/internal/bulkmeta"
	"GestAsd/internal/config"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type listRequest struct {
	UserID         string   `json:"user_id"`
	Search         string   `json:"search"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	WithoutAccount bool     `json:"without_account"`
	AccountCode    string   `json:"account_code"`
	VATRate        *float64 `json:"vat_rate"`
	Page           int      `json:"page"`
	PageSize       int      `json:"pageSize"`
}

func (req *listRequest) filter() bulkmeta.Filter {
	return bulkmeta.Filter{
		Search:         req.Search,
		From:           req.From,
		To:             req.To,
		WithoutAccount: req.WithoutAccount,
		AccountCode:    req.AccountCode,
		VATRate:        req.VATRate,
	}
}

// ListEntries handles POST /movimenti/list
func ListEntries(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req listRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.Page < 1 {
			req.Page = 1
		}
		if req.PageSize < 1 {
			req.PageSize = config.DefaultPageSize
		}
		if req.PageSize > config.MaxPageSize {
			req.PageSize = config.MaxPageSize
		}
		page, err := store.List(r.Context(), userID, req.filter(), req.Page, req.PageSize)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", page)
	}
}

type createEntryRequest struct {
	UserID            string           `json:"user_id"`
	Date              string           `json:"date"`
	Datetime          string           `json:"datetime"`
	OperationDatetime string           `json:"operation_datetime"`
	Description       string           `json:"description"`
	AmountIn          decimal.Decimal  `json:"amountIn"`
	AmountOut         decimal.Decimal  `json:"amountOut"`
	AccountCode       string           `json:"accountCode"`
	Method            string           `json:"method"`
	Center            string           `json:"center"`
	Note              string           `json:"note"`
	Nature            string           `json:"nature"`
	VatRate           *float64         `json:"vatRate"`
	VatAmount         *decimal.Decimal `json:"vatAmount"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (req *createEntryRequest) entry(source string) Entry {
	opDatetime := req.Datetime
	if opDatetime == "" {
		opDatetime = req.OperationDatetime
	}
	if opDatetime == "" && req.Date != "" {
		opDatetime = req.Date + "T00:00:00"
	}
	return Entry{
		Date:              optional(req.Date),
		OperationDatetime: optional(opDatetime),
		Description:       req.Description,
		AmountIn:          req.AmountIn,
		AmountOut:         req.AmountOut,
		AccountCode:       optional(req.AccountCode),
		Method:            optional(req.Method),
		Center:            optional(req.Center),
		Note:              optional(req.Note),
		Nature:            optional(req.Nature),
		VatRate:           req.VatRate,
		VatAmount:         req.VatAmount,
		Source:            source,
	}
}

// CreateEntry handles POST /movimenti/create
func CreateEntry(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req createEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		id, err := store.Insert(r.Context(), userID, req.entry("Manuale"))
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "entry_create", "", map[string]interface{}{"entry_id": id})
		api.RespondWithPayload(w, true, "", map[string]string{"id": id})
	}
}

// DeleteEntry handles POST /movimenti/delete/{id}
func DeleteEntry(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
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
		audit.FromRequest(r, pool, userID, "entry_delete", "", map[string]interface{}{"entry_id": id})
		api.RespondWithResult(w, true, "")
	}
}

type metaRequest struct {
	AccountCode *string `json:"accountCode"`
	Nature      *string `json:"nature"`
	Description *string `json:"description"`
}

func (req *metaRequest) patch() bulkmeta.Patch {
	return bulkmeta.Patch{
		AccountCode: req.AccountCode,
		Nature:      req.Nature,
		Description: req.Description,
	}
}

// UpdateEntryMeta handles POST /movimenti/meta/{id}: single-row account,
// nature or description change.
func UpdateEntryMeta(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		var req metaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		patch := req.patch()
		if patch.IsZero() {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrEmptyPatch)
			return
		}
		if err := store.PatchMeta(r.Context(), userID, id, patch); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithResult(w, true, "")
	}
}
