package constants

// Common error messages
const (
	ErrInvalidSession     = "invalid user_id or session"
	ErrInvalidJSON        = "invalid json or missing fields"
	ErrMissingUserID      = "Missing or invalid user_id in body"
	ErrUserIDRequired     = "user_id required"
	ErrDB                 = "DB error"
	ErrInvalidRequestBody = "Invalid request body"
	ErrPleaseLogin        = "Please login to continue."
	ErrMethodNotAllowed   = "Method Not Allowed"
	ErrAdminOnly          = "Admin privileges required"
	ErrNotFound           = "Record not found"
)

// Import errors
const (
	ErrNoRows               = "No rows to import"
	ErrNoActions            = "No actions to commit"
	ErrUnsupportedFile      = "Unsupported file type"
	ErrFileParseFailed      = "Failed to parse uploaded file"
	ErrMissingAlternateCF   = "Insert on conflict requires an alternate fiscal code"
	ErrImportPreviewFailed  = "Import preview failed"
	ErrImportCommitFailed   = "Import commit failed"
	ErrMissingTargetID      = "Missing target id for overwrite"
	ErrEmptyRecordDiscarded = "Fully empty record discarded"
)

// Ledger / bulk errors
const (
	ErrEmptyPatch       = "No metadata fields to update"
	ErrNoIDsSelected    = "No entry ids selected"
	ErrJobNotFound      = "Job not found"
	ErrJobNotCancelable = "Job already finished"
	ErrInvalidDateRange = "Invalid date range"
)

// Content types
const (
	ContentTypeHeader    = "Content-Type"
	ContentTypeJSON      = "application/json"
	ContentTypeMultipart = "multipart/form-data"
	ContentTypeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Request keys
const (
	KeyUserID = "user_id"
)

// Date formats
const (
	DateTimeFormat = "2006-01-02 15:04:05"
	DateFormat     = "2006-01-02"
	DateFormatIT   = "02/01/2006"
)
