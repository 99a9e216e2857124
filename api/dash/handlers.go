package dash

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"GestAsd/api"
	"GestAsd/api/constants"
	"GestAsd/internal/cache"
	"GestAsd/internal/logger"
)

var barAccountCodes = []string{"C"}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func isoDateOrNil(s string) *string {
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			d := t.Format("2006-01-02")
			return &d
		}
	}
	return nil
}

// AdminDashboard handles POST /dash/admin: money totals plus the ledger
// row count.
func AdminDashboard(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var totals struct {
			TotalEntrate float64
			TotalUscite  float64
			Saldo        float64
			TotalVat     float64
		}
		err := store.pool.QueryRow(r.Context(),
			`SELECT COALESCE(total_entrate, 0), COALESCE(total_uscite, 0),
			        COALESCE(saldo, 0), COALESCE(total_vat, 0)
			   FROM report_global_totals($1, NULL, NULL)`, userID).
			Scan(&totals.TotalEntrate, &totals.TotalUscite, &totals.Saldo, &totals.TotalVat)
		if err != nil {
			logger.Errorf("dash admin totals: %v", err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}

		count, err := store.CountEntries(r.Context(), userID)
		if err != nil {
			logger.Errorf("dash admin count entries: %v", err)
			count = 0
		}

		entrate := round2(totals.TotalEntrate)
		uscite := round2(totals.TotalUscite)
		saldo := round2(totals.Saldo)

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"totalEntrate":   entrate,
			"totalUscite":    uscite,
			"saldo":          saldo,
			"totalVat":       round2(totals.TotalVat),
			"totalMovements": count,
			"totalIn":        entrate,
			"totalOut":       uscite,
			"balance":        saldo,
		})
	}
}

// PublicDashboard handles POST /dash/public: headcounts only, no money.
func PublicDashboard(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		ctx := r.Context()

		totalMembers, err := store.CountMembers(ctx, userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		totalTeachers, err := store.CountTeachers(ctx, userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		todayCount, err := store.CountMembersToday(ctx, userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		incomplete, err := store.CountMembersIncomplete(ctx, userID)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		latest, err := store.LatestMembers(ctx, userID, 10)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}

		recent := make([]map[string]interface{}, 0, len(latest))
		for _, m := range latest {
			name := strings.TrimSpace(strVal(m.Nome) + " " + strVal(m.Cognome))
			date := ""
			if m.CreatedAt != nil {
				if t, err := time.Parse(time.RFC3339, *m.CreatedAt); err == nil {
					date = t.Format(constants.DateFormatIT)
				} else if len(*m.CreatedAt) >= 10 {
					if t, err := time.Parse(constants.DateFormat, (*m.CreatedAt)[:10]); err == nil {
						date = t.Format(constants.DateFormatIT)
					}
				}
			}
			recent = append(recent, map[string]interface{}{
				"id":    m.ID,
				"nome":  name,
				"data":  date,
				"stato": strVal(m.Stato),
			})
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"totalTesserati":           totalMembers,
			"totalInsegnanti":          totalTeachers,
			"tesseramentiOggi":         todayCount,
			"tesseramentiDaCompletare": incomplete,
			"ultimiTesserati":          recent,
		})
	}
}

// Stats handles POST /dash/stats: the dashboard_stats json document as-is.
func Stats(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		stats, err := store.DashboardStats(r.Context(), userID)
		if err != nil {
			logger.Errorf("dash stats: %v", err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", stats)
	}
}

type barRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Limit  int    `json:"limit"`
}

// BarStats handles POST /dash/bar: top bar items by amount, cached for a
// few minutes per user and filter.
func BarStats(store *Store, barCache *cache.TTL) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())

		var req barRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		from := isoDateOrNil(req.From)
		to := isoDateOrNil(req.To)
		limit := req.Limit
		if limit < 1 {
			limit = 10
		}
		if limit > 50 {
			limit = 50
		}

		key := fmt.Sprintf("bar|%s|%s|%s|%d|%s",
			userID, strVal(from), strVal(to), limit, strings.Join(barAccountCodes, ","))
		if v, ok := barCache.Get(key); ok {
			payload := v.(map[string]interface{})
			payload["cached"] = true
			api.RespondWithPayload(w, true, "", payload)
			return
		}

		items, err := store.BarTopItems(r.Context(), userID, from, to, barAccountCodes, limit)
		if err != nil {
			logger.Errorf("dash bar: %v", err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}

		var total float64
		for i := range items {
			items[i].Amount = round2(items[i].Amount)
			total += items[i].Amount
		}

		payload := map[string]interface{}{
			"items": items,
			"total": round2(total),
			"meta": map[string]interface{}{
				"from": from, "to": to, "limit": limit, "barAccountCodes": barAccountCodes,
			},
			"cached": false,
		}
		barCache.Set(key, payload)
		api.RespondWithPayload(w, true, "", payload)
	}
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
