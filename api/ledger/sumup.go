package ledger

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// italianMonths maps the short month names SumUp exports use ("5 dic 2025,
// 20:26").
var italianMonths = map[string]int{
	"gen": 1, "feb": 2, "mar": 3, "apr": 4, "mag": 5, "giu": 6,
	"lug": 7, "ago": 8, "set": 9, "ott": 10, "nov": 11, "dic": 12,
}

// parseItalianDateTime turns "5 dic 2025, 20:26" into a date and a full
// operation timestamp. Returns ok=false for anything unparseable.
func parseItalianDateTime(s string) (date, datetime string, ok bool) {
	parts := strings.SplitN(s, ",", 2)
	fields := strings.Fields(strings.TrimSpace(parts[0]))
	if len(fields) < 3 {
		return "", "", false
	}
	day, err := strconv.Atoi(fields[0])
	if err != nil || day < 1 {
		return "", "", false
	}
	monthKey := strings.ToLower(fields[1])
	if len(monthKey) > 3 {
		monthKey = monthKey[:3]
	}
	month, found := italianMonths[monthKey]
	if !found {
		return "", "", false
	}
	year, err := strconv.Atoi(fields[2])
	if err != nil || year == 0 {
		return "", "", false
	}

	hours, minutes := 0, 0
	if len(parts) == 2 {
		hm := strings.SplitN(strings.TrimSpace(parts[1]), ":", 2)
		if len(hm) == 2 {
			hours, _ = strconv.Atoi(hm[0])
			minutes, _ = strconv.Atoi(hm[1])
		}
	}

	date = fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	datetime = fmt.Sprintf("%sT%02d:%02d:00", date, hours, minutes)
	return date, datetime, true
}

// parseVatRate normalizes the tax-percentage cell: Excel fractions (0.22),
// Italian decimals ("0,22") and percent strings ("22,00%") all become 22.
func parseVatRate(raw string) *float64 {
	cleaned := strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(raw, "%", ""), ",", "."))
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if v > 0 && v <= 1 {
		v *= 100
	}
	return &v
}

func parseVatAmount(raw string) *decimal.Decimal {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if cleaned == "" {
		return nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return nil
	}
	return &d
}

func cellValue(row map[string]string, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// sheetToEntries converts one SumUp sheet. The sheet name is the cost
// center ("VENERDI COUNTRY", "SABATO LATINO", ...).
func sheetToEntries(sheetName string, rows [][]string) []Entry {
	if len(rows) < 2 {
		return nil
	}
	header := rows[0]
	var entries []Entry
	for _, cells := range rows[1:] {
		row := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(cells) {
				row[strings.TrimSpace(h)] = cells[i]
			}
		}

		tipo := strings.TrimSpace(row["Tipo"])
		descrizione := strings.TrimSpace(row["Descrizione"])
		lordo := strings.TrimSpace(strings.ReplaceAll(row["Prezzo (lordo)"], ",", "."))

		date, datetime, ok := parseItalianDateTime(row["Data"])
		if !ok {
			continue
		}
		// Empty, total or non-sale rows are dropped.
		if descrizione == "" || lordo == "" {
			continue
		}
		if tipo != "" && tipo != "Vendita" {
			continue
		}
		amountIn, err := decimal.NewFromString(lordo)
		if err != nil {
			continue
		}

		center := sheetName
		var note *string
		if idTrans := strings.TrimSpace(row["ID Transazione"]); idTrans != "" {
			n := "SumUp " + idTrans
			note = &n
		}

		entries = append(entries, Entry{
			Date:              &date,
			OperationDatetime: &datetime,
			Description:       descrizione,
			AmountIn:          amountIn,
			AmountOut:         decimal.Zero,
			Method:            optional(strings.TrimSpace(row["Metodo di pagamento"])),
			Center:            &center,
			Note:              note,
			VatRate:           parseVatRate(cellValue(row, "Percentuale imposta", "Aliquota IVA", "IVA %", "IVA (%)")),
			VatAmount:         parseVatAmount(cellValue(row, "IVA", "Imposta", "Importo IVA")),
			Source:            "SumUp",
		})
	}
	return entries
}

// ImportSumUp handles POST /movimenti/import/sumup: parses the SumUp xlsx
// export (one sheet per cost center) and inserts the sale rows.
func ImportSumUp(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		f, err := excelize.OpenReader(file)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileParseFailed)
			return
		}
		defer f.Close()

		var entries []Entry
		for _, sheetName := range f.GetSheetList() {
			rows, err := f.GetRows(sheetName)
			if err != nil {
				continue
			}
			entries = append(entries, sheetToEntries(sheetName, rows)...)
		}
		if len(entries) == 0 {
			api.RespondWithError(w, http.StatusBadRequest, "No valid rows found in the file")
			return
		}

		imported := 0
		for _, e := range entries {
			if _, err := store.Insert(r.Context(), userID, e); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
				return
			}
			imported++
		}

		audit.FromRequest(r, pool, userID, "entry_import_sumup", "", map[string]interface{}{"imported": imported})
		api.RespondWithPayload(w, true, "", map[string]int{"imported": imported})
	}
}
