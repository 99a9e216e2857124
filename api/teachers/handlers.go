package teachers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"GestAsd/api"
	"GestAsd/api/audit"
	"GestAsd/api/constants"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	storage_go "github.com/supabase-community/storage-go"
)

// Bucket holding teacher photos, contracts and payslips. Files are private;
// the frontend reads them through short-lived signed URLs.
const storageBucket = "teachers"

const maxUploadBytes = 15 << 20

var monthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)

func extFromMime(mime string) string {
	switch {
	case strings.Contains(mime, "png"):
		return "png"
	case strings.Contains(mime, "webp"):
		return "webp"
	default:
		return "jpg"
	}
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

// ListTeachers handles POST /maestri/list
func ListTeachers(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := store.List(r.Context())
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", items)
	}
}

type teacherPayload struct {
	UserID   string   `json:"user_id"`
	FullName *string  `json:"full_name"`
	Courses  []string `json:"courses"`
}

// CreateTeacher handles POST /maestri/create (admin)
func CreateTeacher(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		var req teacherPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.FullName == nil || strings.TrimSpace(*req.FullName) == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing full_name")
			return
		}
		courses := req.Courses
		if courses == nil {
			courses = []string{}
		}
		created, err := store.Create(r.Context(), strings.TrimSpace(*req.FullName), courses)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_create", "", map[string]interface{}{"teacher_id": created.ID})
		api.RespondWithPayload(w, true, "", created)
	}
}

// UpdateTeacher handles POST /maestri/update/{id} (admin)
func UpdateTeacher(store *Store, pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		var req teacherPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}
		if req.FullName == nil && req.Courses == nil {
			api.RespondWithError(w, http.StatusBadRequest, "No fields to update")
			return
		}
		var fullName *string
		if req.FullName != nil {
			fullName = strptr(strings.TrimSpace(*req.FullName))
		}
		updated, err := store.Update(r.Context(), id, fullName, req.Courses)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				api.RespondWithError(w, http.StatusNotFound, constants.ErrNotFound)
				return
			}
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_update", "", map[string]interface{}{"teacher_id": id})
		api.RespondWithPayload(w, true, "", updated)
	}
}

// ListDocuments handles POST /maestri/documents/{id}
func ListDocuments(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := store.Documents(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		api.RespondWithPayload(w, true, "", docs)
	}
}

// UploadPhoto handles POST /maestri/photo/{id} (admin): stores the profile
// image in the bucket and records its path.
func UploadPhoto(store *Store, pool *pgxpool.Pool, storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		file, hdr, err := r.FormFile("file")
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Missing file")
			return
		}
		defer file.Close()

		mime := hdr.Header.Get("Content-Type")
		path := fmt.Sprintf("photos/%s/profile.%s", id, extFromMime(mime))
		_, err = storageClient.UploadFile(storageBucket, path, file, storage_go.FileOptions{
			ContentType: strptr(mime),
			Upsert:      boolptr(true),
		})
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Storage upload failed")
			return
		}
		if err := store.SetPhotoPath(r.Context(), id, &path); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_photo_upload", "", map[string]interface{}{"teacher_id": id})
		api.RespondWithPayload(w, true, "", map[string]string{"photo_path": path})
	}
}

// uploadDocument stores a pdf in the bucket and upserts its
// teacher_documents row.
func uploadDocument(store *Store, storageClient *storage_go.Client, w http.ResponseWriter, r *http.Request,
	teacherID, docType, path string, month *string) bool {

	file, hdr, err := r.FormFile("file")
	if err != nil {
		api.RespondWithError(w, http.StatusBadRequest, "Missing file")
		return false
	}
	defer file.Close()

	mime := hdr.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/pdf"
	}
	_, err = storageClient.UploadFile(storageBucket, path, file, storage_go.FileOptions{
		ContentType: strptr(mime),
		Upsert:      boolptr(true),
	})
	if err != nil {
		api.RespondWithError(w, http.StatusInternalServerError, "Storage upload failed")
		return false
	}
	if err := store.UpsertDocument(r.Context(), teacherID, docType, month, hdr.Filename, path); err != nil {
		api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
		return false
	}
	return true
}

// UploadContract handles POST /maestri/contract/{id} (admin)
func UploadContract(store *Store, pool *pgxpool.Pool, storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		path := fmt.Sprintf("contracts/%s/contratto.pdf", id)
		if !uploadDocument(store, storageClient, w, r, id, "contract", path, nil) {
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_contract_upload", "", map[string]interface{}{"teacher_id": id})
		api.RespondWithPayload(w, true, "", map[string]string{"file_path": path})
	}
}

// UploadPayslip handles POST /maestri/payslip/{id} (admin): one payslip per
// month, keyed YYYY-MM.
func UploadPayslip(store *Store, pool *pgxpool.Pool, storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, "Failed to parse multipart form")
			return
		}
		month := r.FormValue("month")
		if !monthRe.MatchString(month) {
			api.RespondWithError(w, http.StatusBadRequest, "Invalid month (YYYY-MM)")
			return
		}
		path := fmt.Sprintf("payslips/%s/%s-distinta.pdf", id, month)
		if !uploadDocument(store, storageClient, w, r, id, "payslip", path, &month) {
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_payslip_upload", "", map[string]interface{}{"teacher_id": id, "month": month})
		api.RespondWithPayload(w, true, "", map[string]string{"file_path": path})
	}
}

// DeleteDocument handles POST /maestri/documents/{id}/delete/{docId}
// (admin): removes the stored file, then the record.
func DeleteDocument(store *Store, pool *pgxpool.Pool, storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		vars := mux.Vars(r)
		teacherID, docID := vars["id"], vars["docId"]

		doc, err := store.Document(r.Context(), teacherID, docID)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		if doc.FilePath != "" {
			if _, err := storageClient.RemoveFile(storageBucket, []string{doc.FilePath}); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Storage delete failed")
				return
			}
		}
		if err := store.DeleteDocument(r.Context(), docID); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_document_delete", "", map[string]interface{}{"teacher_id": teacherID, "doc_id": docID})
		api.RespondWithResult(w, true, "")
	}
}

// DeletePhoto handles POST /maestri/photo/{id}/delete (admin)
func DeletePhoto(store *Store, pool *pgxpool.Pool, storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := api.GetUserIDFromCtx(r.Context())
		id := mux.Vars(r)["id"]

		path, err := store.PhotoPath(r.Context(), id)
		if err != nil {
			api.RespondWithError(w, http.StatusNotFound, "Teacher not found")
			return
		}
		if path != nil && *path != "" {
			if _, err := storageClient.RemoveFile(storageBucket, []string{*path}); err != nil {
				api.RespondWithError(w, http.StatusInternalServerError, "Storage delete failed")
				return
			}
		}
		if err := store.SetPhotoPath(r.Context(), id, nil); err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, constants.ErrDB)
			return
		}
		audit.FromRequest(r, pool, userID, "teacher_photo_delete", "", map[string]interface{}{"teacher_id": id})
		api.RespondWithResult(w, true, "")
	}
}

// SignedURL handles POST /maestri/signed-url: mints a short-lived read URL
// for a stored file.
func SignedURL(storageClient *storage_go.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID    string `json:"user_id"`
			Path      string `json:"path"`
			ExpiresIn int    `json:"expiresIn"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
			api.RespondWithError(w, http.StatusBadRequest, "Missing path")
			return
		}
		if req.ExpiresIn <= 0 {
			req.ExpiresIn = 600
		}
		resp, err := storageClient.CreateSignedUrl(storageBucket, req.Path, req.ExpiresIn)
		if err != nil {
			api.RespondWithError(w, http.StatusInternalServerError, "Signed URL failed")
			return
		}
		api.RespondWithPayload(w, true, "", map[string]string{"signedUrl": resp.SignedURL})
	}
}
