package importer

import "context"

// Record is the normalized member payload handled by the import pipeline.
// CodFiscale empty means "no fiscal code"; it is stored as NULL.
type Record struct {
	Nome       string `json:"nome"`
	Cognome    string `json:"cognome"`
	CodFiscale string `json:"cod_fiscale"`
	Cellulare  string `json:"cellulare"`
	Indirizzo  string `json:"indirizzo"`
	Citta      string `json:"citta"`
	Email      string `json:"email"`
	Tipo       string `json:"tipo"`
	Anno       string `json:"anno"`
	Pagamento  string `json:"pagamento"`
	Note       string `json:"note"`
}

// Row is an incoming spreadsheet row after normalization. TmpID only exists
// to correlate a row in the preview UI, it is never persisted.
type Row struct {
	TmpID string `json:"_tmp_id"`
	Record
}

// Existing is a persisted member matched during conflict detection.
type Existing struct {
	ID string `json:"id"`
	Record
}

// Conflict pairs an incoming row with the persisted member that shares its
// fiscal code.
type Conflict struct {
	Incoming Row      `json:"incoming"`
	Existing Existing `json:"existing"`
}

// Duplicate records an in-file repetition of a fiscal code; the first
// occurrence is the one kept.
type Duplicate struct {
	Incoming        Row `json:"incoming"`
	FirstOccurrence Row `json:"first_occurrence"`
}

// Choice is the per-conflict resolution picked by the operator.
type Choice string

const (
	ChoiceOverwrite Choice = "overwrite"
	ChoiceInsert    Choice = "insert"
	ChoiceSkip      Choice = "skip"
)

// Decision resolves one conflict, keyed by the existing member id.
// NewCodFiscale is required when Choice is insert.
type Decision struct {
	Choice        Choice `json:"choice"`
	NewCodFiscale string `json:"new_cod_fiscale"`
}

type ActionKind string

const (
	ActionInsert    ActionKind = "insert"
	ActionOverwrite ActionKind = "overwrite"
	ActionSkip      ActionKind = "skip"
)

// Action is one unit of work for the executor.
type Action struct {
	Kind     ActionKind `json:"action"`
	Incoming Record     `json:"incoming"`
	TargetID string     `json:"target_id,omitempty"`
}

// RowError is a non-fatal failure for a single action; the batch keeps going.
type RowError struct {
	Action   ActionKind `json:"action"`
	Incoming Record     `json:"incoming"`
	Error    string     `json:"error"`
}

// Result sums up a commit run. Inserted+Updated+Skipped+len(Errors) equals
// the number of actions processed.
type Result struct {
	Inserted int        `json:"inserted"`
	Updated  int        `json:"updated"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors"`
}

// MemberStore is the persistence surface the pipeline needs. All operations
// are scoped to the owning user.
type MemberStore interface {
	// FindByFiscalCodes returns the members whose fiscal code is in codes.
	FindByFiscalCodes(ctx context.Context, ownerID string, codes []string) ([]Existing, error)
	// UpdateByID overwrites the member row identified by id.
	UpdateByID(ctx context.Context, ownerID, id string, rec Record) error
	// UpdateByFiscalCode overwrites the member carrying cf and reports how
	// many rows matched.
	UpdateByFiscalCode(ctx context.Context, ownerID, cf string, rec Record) (int64, error)
	// Insert creates a new member row.
	Insert(ctx context.Context, ownerID string, rec Record) error
}
