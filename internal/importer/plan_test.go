package importer

import (
	"errors"
	"testing"
)

func TestBuildPlanDefaultsToOverwrite(t *testing.T) {
	rows := []Row{row("1", "AAA", "Mario")}
	conflicts := []Conflict{{Incoming: rows[0], Existing: Existing{ID: "e1", Record: Record{CodFiscale: "AAA"}}}}

	actions, err := BuildPlan(rows, conflicts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(actions) != 1 || actions[0].Kind != ActionOverwrite || actions[0].TargetID != "e1" {
		t.Fatalf("got %+v, want overwrite targeting e1", actions)
	}
}

func TestBuildPlanChoices(t *testing.T) {
	ex := Existing{ID: "e1", Record: Record{CodFiscale: "AAA"}}
	rows := []Row{row("1", "AAA", "Mario")}
	conflicts := []Conflict{{Incoming: rows[0], Existing: ex}}

	cases := []struct {
		name     string
		decision Decision
		wantKind ActionKind
		wantCF   string
	}{
		{"skip", Decision{Choice: ChoiceSkip}, ActionSkip, "AAA"},
		{"overwrite", Decision{Choice: ChoiceOverwrite}, ActionOverwrite, "AAA"},
		{"insert with new cf", Decision{Choice: ChoiceInsert, NewCodFiscale: " bbb "}, ActionInsert, "BBB"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actions, err := BuildPlan(rows, conflicts, map[string]Decision{"e1": c.decision})
			if err != nil {
				t.Fatal(err)
			}
			if actions[0].Kind != c.wantKind {
				t.Errorf("kind = %s, want %s", actions[0].Kind, c.wantKind)
			}
			if actions[0].Incoming.CodFiscale != c.wantCF {
				t.Errorf("cf = %s, want %s", actions[0].Incoming.CodFiscale, c.wantCF)
			}
		})
	}
}

func TestBuildPlanInsertRequiresAlternateCF(t *testing.T) {
	rows := []Row{row("1", "AAA", "Mario")}
	conflicts := []Conflict{{Incoming: rows[0], Existing: Existing{ID: "e1", Record: Record{CodFiscale: "AAA"}}}}

	_, err := BuildPlan(rows, conflicts, map[string]Decision{"e1": {Choice: ChoiceInsert, NewCodFiscale: "   "}})
	var mErr *MissingAlternateCFError
	if !errors.As(err, &mErr) {
		t.Fatalf("got %v, want MissingAlternateCFError", err)
	}
	if mErr.CodFiscale != "AAA" {
		t.Errorf("error carries cf %q, want AAA", mErr.CodFiscale)
	}
}

func TestBuildPlanNonConflictingRowsInsert(t *testing.T) {
	rows := []Row{
		row("1", "", "Senza CF"),
		row("2", "ZZZ", "Nuovo"),
	}
	actions, err := BuildPlan(rows, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, a := range actions {
		if a.Kind != ActionInsert {
			t.Errorf("action %d = %s, want insert", i, a.Kind)
		}
	}
}
