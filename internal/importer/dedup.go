package importer

// Dedup drops rows repeating a fiscal code already seen in the same file,
// keeping the first occurrence. Rows without a fiscal code always pass.
func Dedup(rows []Row) (kept []Row, duplicates []Duplicate) {
	seen := make(map[string]Row)
	kept = make([]Row, 0, len(rows))
	for _, r := range rows {
		cf := r.CodFiscale
		if cf == "" {
			kept = append(kept, r)
			continue
		}
		if first, ok := seen[cf]; ok {
			duplicates = append(duplicates, Duplicate{Incoming: r, FirstOccurrence: first})
			continue
		}
		seen[cf] = r
		kept = append(kept, r)
	}
	return kept, duplicates
}
