package report

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"GestAsd/api"
	"GestAsd/api/constants"
	"GestAsd/internal/logger"

	"github.com/xuri/excelize/v2"
)

// VAT reporting covers the bar accounts only.
var ivaAccountCodes = []string{"C"}

type reportRequest struct {
	UserID string `json:"user_id"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// isoDateOrNil accepts "2006-01-02" or RFC 3339 and normalizes to a date.
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type recap struct {
	CassaIn    float64 `json:"cassaIn"`
	CassaOut   float64 `json:"cassaOut"`
	BancaIn    float64 `json:"bancaIn"`
	BancaOut   float64 `json:"bancaOut"`
	CassaSaldo float64 `json:"cassaSaldo"`
	BancaSaldo float64 `json:"bancaSaldo"`
}

func buildRecap(rows []FinancialRow) recap {
	var rc recap
	for _, r := range rows {
		rc.CassaIn += r.CassaIn
		rc.CassaOut += r.CassaOut
		rc.BancaIn += r.BancaIn
		rc.BancaOut += r.BancaOut
	}
	rc.CassaIn = round2(rc.CassaIn)
	rc.CassaOut = round2(rc.CassaOut)
	rc.BancaIn = round2(rc.BancaIn)
	rc.BancaOut = round2(rc.BancaOut)
	rc.CassaSaldo = round2(rc.CassaIn - rc.CassaOut)
	rc.BancaSaldo = round2(rc.BancaIn - rc.BancaOut)
	return rc
}

type ivaTotals struct {
	Imponibile float64 `json:"imponibile"`
	Iva        float64 `json:"iva"`
	Totale     float64 `json:"totale"`
	Count      int64   `json:"count"`
}

func buildIvaTotals(rows []IvaSummaryRow) ivaTotals {
	var t ivaTotals
	for _, r := range rows {
		t.Imponibile += r.Imponibile
		t.Iva += r.Iva
		t.Totale += r.Totale
		t.Count += r.Count
	}
	t.Imponibile = round2(t.Imponibile)
	t.Iva = round2(t.Iva)
	t.Totale = round2(t.Totale)
	return t
}

func decodeRange(r *http.Request) (from, to *string) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
		from = isoDateOrNil(req.From)
		to = isoDateOrNil(req.To)
	}
	return from, to
}

// FullReport handles POST /report/full: financial statement, operating
// result per account and global totals in one payload.
func FullReport(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		finRows, err := store.FinancialStatement(r.Context(), userID, from, to)
		if err != nil {
			logger.Errorf("report full: %v", err)
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		opRows, err := store.OperatingResult(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		totals, err := store.Totals(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}

		for i := range opRows {
			opRows[i].Entrate = round2(opRows[i].Entrate)
			opRows[i].Uscite = round2(opRows[i].Uscite)
		}
		totals.TotalEntrate = round2(totals.TotalEntrate)
		totals.TotalUscite = round2(totals.TotalUscite)
		totals.Saldo = round2(totals.Saldo)
		totals.TotalVat = round2(totals.TotalVat)

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"financialStatement": map[string]interface{}{"rows": finRows, "recap": buildRecap(finRows)},
			"operatingResult":    map[string]interface{}{"rows": opRows},
			"global":             totals,
		})
	}
}

// SummaryReport handles POST /report/summary: global totals only.
func SummaryReport(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		totals, err := store.Totals(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		totals.TotalEntrate = round2(totals.TotalEntrate)
		totals.TotalUscite = round2(totals.TotalUscite)
		totals.Saldo = round2(totals.Saldo)
		totals.TotalVat = round2(totals.TotalVat)

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"totalEntrate": totals.TotalEntrate,
			"totalUscite":  totals.TotalUscite,
			"saldo":        totals.Saldo,
			"totalVat":     totals.TotalVat,
			"meta":         map[string]interface{}{"from": from, "to": to},
		})
	}
}

// RendicontoGrouped handles POST /report/rendiconto: rows grouped by
// date and description.
func RendicontoGrouped(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		rows, err := store.RendicontoGrouped(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", rows)
	}
}

func rangeLabel(d *string) string {
	if d == nil {
		return "all"
	}
	return *d
}

func boldHeader(f *excelize.File, sheet string, lastCol string) {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return
	}
	f.SetCellStyle(sheet, "A1", lastCol+"1", style)
}

// ExportXLSX handles POST /report/export/xlsx: a three-sheet workbook
// matching the full report payload.
func ExportXLSX(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		finRows, err := store.FinancialStatement(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		opRows, err := store.OperatingResult(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		totals, err := store.Totals(r.Context(), userID, from, to)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		rc := buildRecap(finRows)

		f := excelize.NewFile()
		defer f.Close()

		sh1 := "Rendiconto finanziario"
		f.SetSheetName("Sheet1", sh1)
		f.SetColWidth(sh1, "A", "A", 12)
		f.SetColWidth(sh1, "B", "B", 45)
		f.SetColWidth(sh1, "C", "D", 18)
		f.SetColWidth(sh1, "E", "H", 12)
		f.SetSheetRow(sh1, "A1", &[]interface{}{
			"Data", "Descrizione", "Conto", "Natura", "Cassa IN", "Cassa OUT", "Banca IN", "Banca OUT",
		})
		boldHeader(f, sh1, "H")
		for i, row := range finRows {
			cell := fmt.Sprintf("A%d", i+2)
			f.SetSheetRow(sh1, cell, &[]interface{}{
				deref(row.Date), row.Description, deref(row.Conto), deref(row.Nature),
				row.CassaIn, row.CassaOut, row.BancaIn, row.BancaOut,
			})
		}
		totRow := len(finRows) + 3
		f.SetSheetRow(sh1, fmt.Sprintf("A%d", totRow), &[]interface{}{
			"", "Totali", "", "", rc.CassaIn, rc.CassaOut, rc.BancaIn, rc.BancaOut,
		})
		f.SetSheetRow(sh1, fmt.Sprintf("A%d", totRow+1), &[]interface{}{
			"", "Saldi", "", "", rc.CassaSaldo, "", rc.BancaSaldo, "",
		})

		sh2 := "Risultato operativo"
		f.NewSheet(sh2)
		f.SetColWidth(sh2, "A", "A", 14)
		f.SetColWidth(sh2, "B", "B", 30)
		f.SetColWidth(sh2, "C", "E", 16)
		f.SetSheetRow(sh2, "A1", &[]interface{}{"Codice conto", "Nome conto", "Natura", "Entrate", "Uscite"})
		boldHeader(f, sh2, "E")
		for i, row := range opRows {
			f.SetSheetRow(sh2, fmt.Sprintf("A%d", i+2), &[]interface{}{
				deref(row.AccountCode), deref(row.AccountName), deref(row.Nature),
				round2(row.Entrate), round2(row.Uscite),
			})
		}

		sh3 := "Totali"
		f.NewSheet(sh3)
		f.SetColWidth(sh3, "A", "A", 25)
		f.SetColWidth(sh3, "B", "B", 18)
		f.SetSheetRow(sh3, "A1", &[]interface{}{"Voce", "Valore"})
		boldHeader(f, sh3, "B")
		f.SetSheetRow(sh3, "A2", &[]interface{}{"Totale entrate", round2(totals.TotalEntrate)})
		f.SetSheetRow(sh3, "A3", &[]interface{}{"Totale uscite", round2(totals.TotalUscite)})
		f.SetSheetRow(sh3, "A4", &[]interface{}{"Saldo", round2(totals.Saldo)})
		f.SetSheetRow(sh3, "A5", &[]interface{}{"IVA (somma)", round2(totals.TotalVat)})

		w.Header().Set("Content-Type", constants.ContentTypeXLSX)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="report_%s_%s.xlsx"`, rangeLabel(from), rangeLabel(to)))
		if err := f.Write(w); err != nil {
			logger.Errorf("report export xlsx: %v", err)
		}
	}
}

// IvaMonthlyNature handles POST /report/iva/monthly-nature (admin): VAT
// grouped by month, nature and rate, plus the per-account breakdown.
func IvaMonthlyNature(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		summaryRows, err := store.IvaSummary(r.Context(), userID, from, to, ivaAccountCodes)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		detailRows, err := store.IvaDetail(r.Context(), userID, from, to, ivaAccountCodes)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"summaryRows": summaryRows,
			"detailRows":  detailRows,
			"totals":      buildIvaTotals(summaryRows),
			"meta": map[string]interface{}{
				"from": from, "to": to, "accountCodes": ivaAccountCodes,
			},
		})
	}
}

// IvaExportXLSX handles POST /report/iva/export/xlsx (admin).
func IvaExportXLSX(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		from, to := decodeRange(r)

		summaryRows, err := store.IvaSummary(r.Context(), userID, from, to, ivaAccountCodes)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		detailRows, err := store.IvaDetail(r.Context(), userID, from, to, ivaAccountCodes)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		totals := buildIvaTotals(summaryRows)

		f := excelize.NewFile()
		defer f.Close()

		sh1 := "IVA - Summary"
		f.SetSheetName("Sheet1", sh1)
		f.SetColWidth(sh1, "A", "A", 10)
		f.SetColWidth(sh1, "B", "B", 18)
		f.SetColWidth(sh1, "C", "G", 14)
		f.SetSheetRow(sh1, "A1", &[]interface{}{
			"Mese", "Natura", "Aliquota", "Imponibile", "IVA", "Totale", "N. righe",
		})
		boldHeader(f, sh1, "G")
		for i, row := range summaryRows {
			f.SetSheetRow(sh1, fmt.Sprintf("A%d", i+2), &[]interface{}{
				row.Month, deref(row.Nature), derefFloat(row.VatRate),
				row.Imponibile, row.Iva, row.Totale, row.Count,
			})
		}
		totRow := len(summaryRows) + 3
		f.SetSheetRow(sh1, fmt.Sprintf("A%d", totRow), &[]interface{}{
			"TOTALE", "", "", totals.Imponibile, totals.Iva, totals.Totale, totals.Count,
		})

		sh2 := "IVA - Dettaglio"
		f.NewSheet(sh2)
		f.SetColWidth(sh2, "A", "A", 10)
		f.SetColWidth(sh2, "B", "D", 24)
		f.SetColWidth(sh2, "E", "I", 14)
		f.SetSheetRow(sh2, "A1", &[]interface{}{
			"Mese", "Natura", "Conto", "Nome conto", "Aliquota", "Imponibile", "IVA", "Totale", "N. righe",
		})
		boldHeader(f, sh2, "I")
		for i, row := range detailRows {
			f.SetSheetRow(sh2, fmt.Sprintf("A%d", i+2), &[]interface{}{
				row.Month, deref(row.Nature), deref(row.AccountCode), deref(row.AccountName),
				derefFloat(row.VatRate), row.Imponibile, row.Iva, row.Totale, row.Count,
			})
		}

		w.Header().Set("Content-Type", constants.ContentTypeXLSX)
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="iva_%s_%s.xlsx"`, rangeLabel(from), rangeLabel(to)))
		if err := f.Write(w); err != nil {
			logger.Errorf("iva export xlsx: %v", err)
		}
	}
}

func deref(s *string) interface{} {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}
