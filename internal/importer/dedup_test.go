package importer

import "testing"

func row(tmpID, cf, nome string) Row {
	return Row{TmpID: tmpID, Record: Record{Nome: nome, CodFiscale: cf}}
}

func TestDedupKeepsFirstOccurrence(t *testing.T) {
	rows := []Row{
		row("1", "AAA", "Mario"),
		row("2", "BBB", "Luigi"),
		row("3", "AAA", "Maria"),
		row("4", "AAA", "Marco"),
	}
	kept, dups := Dedup(rows)
	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2", len(kept))
	}
	if kept[0].Nome != "Mario" || kept[1].Nome != "Luigi" {
		t.Errorf("wrong rows kept: %+v", kept)
	}
	if len(dups) != 2 {
		t.Fatalf("got %d duplicates, want 2", len(dups))
	}
	for _, d := range dups {
		if d.FirstOccurrence.Nome != "Mario" {
			t.Errorf("duplicate should point at the first occurrence, got %+v", d)
		}
	}
}

func TestDedupIgnoresMissingCF(t *testing.T) {
	rows := []Row{
		row("1", "", "Mario"),
		row("2", "", "Luigi"),
		row("3", "CCC", "Anna"),
	}
	kept, dups := Dedup(rows)
	if len(kept) != 3 || len(dups) != 0 {
		t.Fatalf("rows without fiscal code must never collide: kept %d dups %d", len(kept), len(dups))
	}
}
