// Package bulkmeta applies account/nature/description changes to many ledger
// entries at once, either to an explicit id list or to every entry matching
// the active filters.
package bulkmeta

import (
	"context"

	"GestAsd/internal/config"
)

// Patch carries the metadata fields to change. A nil pointer leaves the
// field alone; a pointer to "" clears it to NULL.
type Patch struct {
	AccountCode *string `json:"account_code"`
	Nature      *string `json:"nature"`
	Description *string `json:"description"`
}

// IsZero reports whether the patch would change nothing.
func (p Patch) IsZero() bool {
	return p.AccountCode == nil && p.Nature == nil && p.Description == nil
}

// Filter mirrors the ledger listing filters used to scope an all-matching
// run.
type Filter struct {
	Search         string   `json:"search"`
	From           string   `json:"from"`
	To             string   `json:"to"`
	WithoutAccount bool     `json:"without_account"`
	AccountCode    string   `json:"account_code"`
	VATRate        *float64 `json:"vat_rate"`
}

// LedgerStore is the persistence surface the mutator needs, scoped to the
// owning user.
type LedgerStore interface {
	// PageIDs returns the entry ids for one page of the filtered listing
	// plus the total page count for the filter.
	PageIDs(ctx context.Context, ownerID string, f Filter, page, pageSize int) (ids []string, totalPages int, err error)
	// PatchMeta applies the patch to a single entry.
	PatchMeta(ctx context.Context, ownerID, id string, p Patch) error
}

// ProgressFunc receives overall percent plus phase detail.
type ProgressFunc func(percent, done, total int, phase string)

// Mutator runs bulk metadata updates one entry at a time. The first failing
// entry aborts the run; entries already patched stay patched, there is no
// rollback. Cancellation is cooperative via ctx, checked before each unit
// of work.
type Mutator struct {
	Store      LedgerStore
	PageSize   int
	OnProgress ProgressFunc
}

func (m *Mutator) pageSize() int {
	if m.PageSize > 0 {
		return m.PageSize
	}
	return config.BulkPageSize
}

func (m *Mutator) progress(percent, done, total int, phase string) {
	if m.OnProgress == nil {
		return
	}
	if percent > 100 {
		percent = 100
	}
	m.OnProgress(percent, done, total, phase)
}

// ApplySelected patches an explicit id list. Returns the number of entries
// patched before stopping.
func (m *Mutator) ApplySelected(ctx context.Context, ownerID string, ids []string, p Patch) (int, error) {
	return m.applyIDs(ctx, ownerID, ids, p, 0, 100)
}

// ApplyAll collects every entry id matching the filter, page by page, then
// patches them. Collection fills the first quarter of the progress bar, the
// apply phase the rest.
func (m *Mutator) ApplyAll(ctx context.Context, ownerID string, f Filter, p Patch) (int, error) {
	pageSize := m.pageSize()
	var allIDs []string
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		ids, totalPages, err := m.Store.PageIDs(ctx, ownerID, f, page, pageSize)
		if err != nil {
			return 0, err
		}
		if len(ids) == 0 {
			break
		}
		allIDs = append(allIDs, ids...)
		if totalPages < 1 {
			totalPages = 1
		}
		pct := page * 25 / totalPages
		if pct > 25 {
			pct = 25
		}
		m.progress(pct, 0, 0, "collect")
		if page >= totalPages {
			break
		}
		page++
	}
	if len(allIDs) == 0 {
		m.progress(100, 0, 0, "done")
		return 0, nil
	}
	m.progress(25, 0, len(allIDs), "apply")
	return m.applyIDs(ctx, ownerID, allIDs, p, 25, 75)
}

func (m *Mutator) applyIDs(ctx context.Context, ownerID string, ids []string, p Patch, base, span int) (int, error) {
	total := len(ids)
	done := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := m.Store.PatchMeta(ctx, ownerID, id, p); err != nil {
			return done, err
		}
		done++
		m.progress(base+done*span/total, done, total, "apply")
	}
	return done, nil
}
