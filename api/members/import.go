package members

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"
	"GestAsd/internal/importer"

	"github.com/extrame/xls"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
)

func getFileExt(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// parseUploadFile reads the first sheet (or the CSV) into rows of cells.
func parseUploadFile(file multipart.File, ext string) ([][]string, error) {
	switch ext {
	case ".csv":
		r := csv.NewReader(file)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	case ".xlsx":
		f, err := excelize.OpenReader(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheet := f.GetSheetName(0)
		return f.GetRows(sheet)
	case ".xls":
		wb, err := xls.OpenReader(file, "utf-8")
		if err != nil {
			return nil, err
		}
		sheet := wb.GetSheet(0)
		if sheet == nil {
			return nil, errors.New("workbook has no sheets")
		}
		var rows [][]string
		for i := 0; i <= int(sheet.MaxRow); i++ {
			row := sheet.Row(i)
			if row == nil {
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		return rows, nil
	}
	return nil, errors.New("unsupported file type")
}

// rowsToMaps converts raw cells into header->value maps using the first
// non-empty row as the header.
func rowsToMaps(rows [][]string) []map[string]string {
	headerIdx := -1
	for i, r := range rows {
		for _, c := range r {
			if strings.TrimSpace(c) != "" {
				headerIdx = i
				break
			}
		}
		if headerIdx >= 0 {
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}
	header := rows[headerIdx]
	out := make([]map[string]string, 0, len(rows)-headerIdx-1)
	for _, r := range rows[headerIdx+1:] {
		m := make(map[string]string, len(header))
		for c, h := range header {
			h = strings.TrimSpace(h)
			if h == "" {
				continue
			}
			if c < len(r) {
				m[h] = r[c]
			}
		}
		out = append(out, m)
	}
	return out
}

type uploadStats struct {
	Total            int `json:"total"`
	Valid            int `json:"valid"`
	Invalid          int `json:"invalid"`
	DuplicatesInFile int `json:"duplicatesInFile"`
}

// UploadImportFile handles POST /tesserati/import/upload: parses the
// spreadsheet, normalizes and deduplicates rows, and returns them for the
// preview step. Nothing is persisted here.
func UploadImportFile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "No file uploaded")
			return
		}
		defer file.Close()

		cells, err := parseUploadFile(file, getFileExt(hdr.Filename))
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrFileParseFailed)
			return
		}
		raws := rowsToMaps(cells)

		var (
			rows    []importer.Row
			invalid int
		)
		for _, raw := range raws {
			row, empty := importer.MapRow(raw, uuid.NewString())
			if empty {
				invalid++
				continue
			}
			rows = append(rows, row)
		}
		kept, dups := importer.Dedup(rows)

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"rows": kept,
			"stats": uploadStats{
				Total:            len(raws),
				Valid:            len(kept),
				Invalid:          invalid,
				DuplicatesInFile: len(dups),
			},
			"duplicates": dups,
		})
	}
}

// PreviewImport handles POST /tesserati/import/preview: re-normalizes the
// submitted rows, dedups them and detects conflicts against stored members.
func PreviewImport(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req struct {
			Rows []importer.Row `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if len(req.Rows) == 0 {
			api.RespondWithPayload(w, true, "", map[string]interface{}{
				"validRows": []importer.Row{}, "conflicts": []importer.Conflict{}, "duplicatesInFile": []importer.Duplicate{},
			})
			return
		}

		normalized := make([]importer.Row, 0, len(req.Rows))
		for _, row := range req.Rows {
			row.Record = importer.Normalize(row.Record)
			normalized = append(normalized, row)
		}
		kept, dups := importer.Dedup(normalized)

		conflicts, err := importer.DetectConflicts(r.Context(), store, userID, kept)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrImportPreviewFailed)
			return
		}
		if conflicts == nil {
			conflicts = []importer.Conflict{}
		}
		if dups == nil {
			dups = []importer.Duplicate{}
		}
		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"validRows":        kept,
			"conflicts":        conflicts,
			"duplicatesInFile": dups,
		})
	}
}

// CommitImport handles POST /tesserati/import/commit: builds the action plan
// from the reviewed rows and decisions, then executes it in chunks.
func CommitImport(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req struct {
			Rows      []importer.Row               `json:"rows"`
			Conflicts []importer.Conflict          `json:"conflicts"`
			Decisions map[string]importer.Decision `json:"decisions"`
			Actions   []importer.Action            `json:"actions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		actions := req.Actions
		if len(actions) == 0 {
			if len(req.Rows) == 0 {
				api.RespondWithPayload(w, true, "", importer.Result{Errors: []importer.RowError{}})
				return
			}
			var err error
			actions, err = importer.BuildPlan(req.Rows, req.Conflicts, req.Decisions)
			if err != nil {
				var mErr *importer.MissingAlternateCFError
				if errors.As(err, &mErr) {
					api.RespondWithError(w, http.StatusBadRequest, constants.ErrMissingAlternateCF)
					return
				}
				api.RespondWithError(w, http.StatusBadRequest, err.Error())
				return
			}
		}

		exec := &importer.Executor{Store: store}
		res, err := exec.Run(r.Context(), userID, actions)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrImportCommitFailed)
			return
		}

		audit.FromRequest(r, pool, userID, "member_import_commit", "", map[string]interface{}{
			"actions":  len(actions),
			"inserted": res.Inserted,
			"updated":  res.Updated,
			"skipped":  res.Skipped,
			"errors":   len(res.Errors),
		})
		api.LogInfo("import commit for user %s: %s", userID, summary(res))
		api.RespondWithPayload(w, true, "", res)
	}
}

func summary(res importer.Result) string {
	return fmt.Sprintf("inserted=%d updated=%d skipped=%d errors=%d",
		res.Inserted, res.Updated, res.Skipped, len(res.Errors))
}
