package bulkmeta

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func strPtr(s string) *string { return &s }

type fakeLedger struct {
	pages   [][]string // what PageIDs serves, page 1 first
	patched []string
	failOn  string // id that errors out
	calls   int
}

func (f *fakeLedger) PageIDs(_ context.Context, _ string, _ Filter, page, _ int) ([]string, int, error) {
	f.calls++
	if page > len(f.pages) {
		return nil, len(f.pages), nil
	}
	return f.pages[page-1], len(f.pages), nil
}

func (f *fakeLedger) PatchMeta(_ context.Context, _ string, id string, _ Patch) error {
	if id == f.failOn {
		return errors.New("update failed")
	}
	f.patched = append(f.patched, id)
	return nil
}

func TestApplySelected(t *testing.T) {
	store := &fakeLedger{}
	m := &Mutator{Store: store}
	done, err := m.ApplySelected(context.Background(), "u1", []string{"a", "b", "c"}, Patch{AccountCode: strPtr("C")})
	if err != nil {
		t.Fatal(err)
	}
	if done != 3 || len(store.patched) != 3 {
		t.Fatalf("done=%d patched=%v", done, store.patched)
	}
}

func TestApplySelectedFirstErrorStops(t *testing.T) {
	store := &fakeLedger{failOn: "b"}
	m := &Mutator{Store: store}
	done, err := m.ApplySelected(context.Background(), "u1", []string{"a", "b", "c"}, Patch{Nature: strPtr("commerciale")})
	if err == nil {
		t.Fatal("want error from failing entry")
	}
	if done != 1 {
		t.Fatalf("done=%d, want 1 entry applied before the failure", done)
	}
	if len(store.patched) != 1 || store.patched[0] != "a" {
		t.Fatalf("patched=%v, entries after the failure must not run", store.patched)
	}
}

func TestApplySelectedCancelKeepsApplied(t *testing.T) {
	store := &fakeLedger{}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Mutator{
		Store: store,
		OnProgress: func(_, done, _ int, _ string) {
			if done == 2 {
				cancel()
			}
		},
	}
	done, err := m.ApplySelected(ctx, "u1", []string{"a", "b", "c", "d"}, Patch{Description: strPtr("x")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v, want context.Canceled", err)
	}
	if done != 2 || len(store.patched) != 2 {
		t.Fatalf("done=%d patched=%v, applied work must remain", done, store.patched)
	}
}

func TestApplyAllCollectsEveryPage(t *testing.T) {
	store := &fakeLedger{pages: [][]string{{"a", "b"}, {"c", "d"}, {"e"}}}
	m := &Mutator{Store: store}
	done, err := m.ApplyAll(context.Background(), "u1", Filter{WithoutAccount: true}, Patch{AccountCode: strPtr("C")})
	if err != nil {
		t.Fatal(err)
	}
	if done != 5 || len(store.patched) != 5 {
		t.Fatalf("done=%d patched=%v", done, store.patched)
	}
}

func TestApplyAllEmptyResult(t *testing.T) {
	store := &fakeLedger{pages: [][]string{{}}}
	m := &Mutator{Store: store}
	done, err := m.ApplyAll(context.Background(), "u1", Filter{}, Patch{Nature: strPtr("istituzionale")})
	if err != nil || done != 0 {
		t.Fatalf("done=%d err=%v, want clean no-op", done, err)
	}
}

func TestApplyAllProgressPhases(t *testing.T) {
	pages := make([][]string, 4)
	for p := range pages {
		for i := 0; i < 3; i++ {
			pages[p] = append(pages[p], fmt.Sprintf("id%d_%d", p, i))
		}
	}
	store := &fakeLedger{pages: pages}

	var collectMax, applyMin, last int
	applyMin = 101
	m := &Mutator{
		Store: store,
		OnProgress: func(percent, _, _ int, phase string) {
			switch phase {
			case "collect":
				if percent > collectMax {
					collectMax = percent
				}
			case "apply":
				if percent < applyMin {
					applyMin = percent
				}
			}
			last = percent
		},
	}
	if _, err := m.ApplyAll(context.Background(), "u1", Filter{}, Patch{AccountCode: strPtr("C")}); err != nil {
		t.Fatal(err)
	}
	if collectMax > 25 {
		t.Errorf("collect phase reached %d%%, must cap at 25", collectMax)
	}
	if applyMin < 25 {
		t.Errorf("apply phase started at %d%%, must start from 25", applyMin)
	}
	if last != 100 {
		t.Errorf("final percent %d, want 100", last)
	}
}

func TestPatchIsZero(t *testing.T) {
	if !(Patch{}).IsZero() {
		t.Fatal("empty patch must be zero")
	}
	if (Patch{AccountCode: strPtr("")}).IsZero() {
		t.Fatal("a clear-to-null patch is not zero")
	}
}
