package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestExecutorCounters(t *testing.T) {
	store := newMockStore(
		Existing{ID: "e1", Record: Record{Nome: "Old", CodFiscale: "AAA"}},
	)
	actions := []Action{
		{Kind: ActionOverwrite, Incoming: Record{Nome: "Mario", CodFiscale: "AAA"}, TargetID: "e1"},
		{Kind: ActionInsert, Incoming: Record{Nome: "Anna", CodFiscale: "BBB"}},
		{Kind: ActionInsert, Incoming: Record{Nome: "Senza"}},
		{Kind: ActionSkip, Incoming: Record{Nome: "Saltato"}},
	}
	ex := &Executor{Store: store}
	res, err := ex.Run(context.Background(), "u1", actions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Inserted != 2 || res.Updated != 1 || res.Skipped != 1 || len(res.Errors) != 0 {
		t.Fatalf("got %+v", res)
	}
	if got := res.Inserted + res.Updated + res.Skipped + len(res.Errors); got != len(actions) {
		t.Fatalf("counters sum to %d, want %d", got, len(actions))
	}
}

func TestExecutorInsertUpdatesExistingFiscalCode(t *testing.T) {
	// A re-import of a code already present turns the insert into an update.
	store := newMockStore(Existing{ID: "e1", Record: Record{CodFiscale: "AAA"}})
	actions := []Action{{Kind: ActionInsert, Incoming: Record{Nome: "Mario", CodFiscale: "AAA"}}}

	res, err := (&Executor{Store: store}).Run(context.Background(), "u1", actions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Updated != 1 || res.Inserted != 0 {
		t.Fatalf("got %+v, want one update", res)
	}
	if len(store.inserts) != 0 {
		t.Fatal("no insert should run when the update matched")
	}
}

func TestExecutorRowErrorsNonFatal(t *testing.T) {
	store := newMockStore()
	store.failInsertCF["BAD"] = errors.New("duplicate key value violates unique constraint")
	actions := []Action{
		{Kind: ActionInsert, Incoming: Record{Nome: "a", CodFiscale: "BAD"}},
		{Kind: ActionInsert, Incoming: Record{Nome: "b", CodFiscale: "OK1"}},
		{Kind: ActionOverwrite, Incoming: Record{Nome: "c"}}, // no target id
	}
	res, err := (&Executor{Store: store}).Run(context.Background(), "u1", actions)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 2 || res.Inserted != 1 {
		t.Fatalf("got %+v", res)
	}
	if got := res.Inserted + res.Updated + res.Skipped + len(res.Errors); got != len(actions) {
		t.Fatalf("counters sum to %d, want %d", got, len(actions))
	}
}

func TestExecutorTransportErrorAborts(t *testing.T) {
	store := newMockStore()
	store.transportDown = true
	actions := []Action{{Kind: ActionInsert, Incoming: Record{Nome: "a"}}}

	res, err := (&Executor{Store: store}).Run(context.Background(), "u1", actions)
	if !IsTransport(err) {
		t.Fatalf("got %v, want transport error", err)
	}
	if res.Inserted != 0 {
		t.Fatalf("got %+v, want nothing applied", res)
	}
}

func TestExecutorSkipsEmptyRecords(t *testing.T) {
	store := newMockStore()
	actions := []Action{{Kind: ActionInsert, Incoming: Record{}}}
	res, err := (&Executor{Store: store}).Run(context.Background(), "u1", actions)
	if err != nil {
		t.Fatal(err)
	}
	if res.Skipped != 1 || len(store.inserts) != 0 {
		t.Fatalf("got %+v, want empty record skipped", res)
	}
}

func TestExecutorCancellationBetweenChunks(t *testing.T) {
	store := newMockStore()
	ctx, cancel := context.WithCancel(context.Background())

	actions := make([]Action, 0, 10)
	for i := 0; i < 10; i++ {
		actions = append(actions, Action{Kind: ActionInsert, Incoming: Record{Nome: fmt.Sprintf("n%d", i), CodFiscale: fmt.Sprintf("CF%d", i)}})
	}
	ex := &Executor{
		Store:     store,
		ChunkSize: 5,
		OnProgress: func(processed, total int) {
			if processed == 5 {
				cancel()
			}
		},
	}
	res, err := ex.Run(ctx, "u1", actions)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if res.Inserted != 5 {
		t.Fatalf("inserted %d, want the first chunk applied and kept", res.Inserted)
	}
}

func TestExecutorProgressReporting(t *testing.T) {
	store := newMockStore()
	actions := make([]Action, 0, 7)
	for i := 0; i < 7; i++ {
		actions = append(actions, Action{Kind: ActionSkip})
	}
	var calls [][2]int
	ex := &Executor{
		Store:     store,
		ChunkSize: 3,
		OnProgress: func(processed, total int) {
			calls = append(calls, [2]int{processed, total})
		},
	}
	if _, err := ex.Run(context.Background(), "u1", actions); err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{3, 7}, {6, 7}, {7, 7}}
	if len(calls) != len(want) {
		t.Fatalf("got %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("got %v, want %v", calls, want)
		}
	}
}
