package importer

import (
	"context"

	"GestAsd/internal/config"
)

// DetectConflicts looks up the deduplicated rows' fiscal codes against the
// user's existing members and pairs each matching row with the persisted
// record. Lookups run in chunks so a large file never produces an oversized
// IN clause. Each existing member appears in at most one conflict.
func DetectConflicts(ctx context.Context, store MemberStore, ownerID string, rows []Row) ([]Conflict, error) {
	codes := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if r.CodFiscale == "" {
			continue
		}
		if _, ok := seen[r.CodFiscale]; ok {
			continue
		}
		seen[r.CodFiscale] = struct{}{}
		codes = append(codes, r.CodFiscale)
	}
	if len(codes) == 0 {
		return nil, nil
	}

	existingByCF := make(map[string]Existing)
	for i := 0; i < len(codes); i += config.ImportKeyChunk {
		end := i + config.ImportKeyChunk
		if end > len(codes) {
			end = len(codes)
		}
		found, err := store.FindByFiscalCodes(ctx, ownerID, codes[i:end])
		if err != nil {
			return nil, err
		}
		for _, ex := range found {
			if ex.CodFiscale == "" {
				continue
			}
			existingByCF[ex.CodFiscale] = ex
		}
	}

	var conflicts []Conflict
	matched := make(map[string]struct{}, len(existingByCF))
	for _, r := range rows {
		if r.CodFiscale == "" {
			continue
		}
		ex, ok := existingByCF[r.CodFiscale]
		if !ok {
			continue
		}
		if _, done := matched[ex.ID]; done {
			continue
		}
		matched[ex.ID] = struct{}{}
		conflicts = append(conflicts, Conflict{Incoming: r, Existing: ex})
	}
	return conflicts, nil
}
