package importer

import (
	"context"
	"fmt"
	"testing"
)

func TestDetectConflictsPairsExisting(t *testing.T) {
	store := newMockStore(
		Existing{ID: "e1", Record: Record{Nome: "Mario", CodFiscale: "AAA"}},
		Existing{ID: "e2", Record: Record{Nome: "Luigi", CodFiscale: "BBB"}},
	)
	rows := []Row{
		row("1", "AAA", "Mario Jr"),
		row("2", "CCC", "Anna"),
		row("3", "", "Senza CF"),
	}
	conflicts, err := DetectConflicts(context.Background(), store, "u1", rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Existing.ID != "e1" || c.Incoming.Nome != "Mario Jr" {
		t.Errorf("wrong pairing: %+v", c)
	}
}

func TestDetectConflictsChunksLookups(t *testing.T) {
	store := newMockStore()
	rows := make([]Row, 0, 450)
	for i := 0; i < 450; i++ {
		rows = append(rows, row(fmt.Sprint(i), fmt.Sprintf("CF%03d", i), "x"))
	}
	if _, err := DetectConflicts(context.Background(), store, "u1", rows); err != nil {
		t.Fatal(err)
	}
	if len(store.lookupBatches) != 3 {
		t.Fatalf("got %d lookup batches, want 3", len(store.lookupBatches))
	}
	sizes := []int{len(store.lookupBatches[0]), len(store.lookupBatches[1]), len(store.lookupBatches[2])}
	if sizes[0] != 200 || sizes[1] != 200 || sizes[2] != 50 {
		t.Errorf("batch sizes %v, want [200 200 50]", sizes)
	}
}

func TestDetectConflictsSkipsWithoutCF(t *testing.T) {
	store := newMockStore()
	rows := []Row{row("1", "", "a"), row("2", "", "b")}
	conflicts, err := DetectConflicts(context.Background(), store, "u1", rows)
	if err != nil {
		t.Fatal(err)
	}
	if conflicts != nil {
		t.Fatalf("got %v, want none", conflicts)
	}
	if len(store.lookupBatches) != 0 {
		t.Fatal("no lookup should run when no row carries a fiscal code")
	}
}

func TestDetectConflictsOnePerExisting(t *testing.T) {
	// Dedup keeps one row per code, but defend against callers passing
	// undeduplicated input: each existing member conflicts at most once.
	store := newMockStore(Existing{ID: "e1", Record: Record{CodFiscale: "AAA"}})
	rows := []Row{row("1", "AAA", "a"), row("2", "AAA", "b")}
	conflicts, err := DetectConflicts(context.Background(), store, "u1", rows)
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicts) != 1 || conflicts[0].Incoming.Nome != "a" {
		t.Fatalf("got %+v, want single conflict with first row", conflicts)
	}
}
