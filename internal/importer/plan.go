package importer

import "fmt"

// MissingAlternateCFError means an operator chose "insert" on a conflict
// without supplying a replacement fiscal code. Inserting the incoming row
// as-is would just collide again.
type MissingAlternateCFError struct {
	ExistingID string
	CodFiscale string
}

func (e *MissingAlternateCFError) Error() string {
	return fmt.Sprintf("conflict on %s: insert requires an alternate fiscal code", e.CodFiscale)
}

// BuildPlan turns reviewed rows into executable actions. Rows without a
// fiscal code, and rows whose code matches nothing, become inserts. Rows
// matching a conflict follow the operator's decision; an unresolved
// conflict defaults to overwrite.
func BuildPlan(rows []Row, conflicts []Conflict, decisions map[string]Decision) ([]Action, error) {
	conflictByCF := make(map[string]Conflict, len(conflicts))
	for _, c := range conflicts {
		if cf := c.Existing.CodFiscale; cf != "" {
			conflictByCF[cf] = c
		}
	}

	actions := make([]Action, 0, len(rows))
	for _, r := range rows {
		cf := r.CodFiscale
		if cf == "" {
			actions = append(actions, Action{Kind: ActionInsert, Incoming: r.Record})
			continue
		}
		c, ok := conflictByCF[cf]
		if !ok {
			actions = append(actions, Action{Kind: ActionInsert, Incoming: r.Record})
			continue
		}

		d := decisions[c.Existing.ID]
		choice := d.Choice
		if choice == "" {
			choice = ChoiceOverwrite
		}
		switch choice {
		case ChoiceSkip:
			actions = append(actions, Action{Kind: ActionSkip, Incoming: r.Record})
		case ChoiceInsert:
			newCF := NormalizeFiscalCode(d.NewCodFiscale)
			if newCF == "" {
				return nil, &MissingAlternateCFError{ExistingID: c.Existing.ID, CodFiscale: cf}
			}
			rec := r.Record
			rec.CodFiscale = newCF
			actions = append(actions, Action{Kind: ActionInsert, Incoming: rec})
		default:
			actions = append(actions, Action{Kind: ActionOverwrite, Incoming: r.Record, TargetID: c.Existing.ID})
		}
	}
	return actions, nil
}
