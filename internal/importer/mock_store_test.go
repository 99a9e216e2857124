package importer

import (
	"context"
	"errors"
	"fmt"
)

// mockStore implements MemberStore in memory for pipeline tests.
type mockStore struct {
	existing []Existing

	lookupBatches [][]string
	updatesByID   map[string]Record
	updatesByCF   map[string]Record
	inserts       []Record

	failUpdateID  map[string]error
	failInsertCF  map[string]error
	transportDown bool
}

func newMockStore(existing ...Existing) *mockStore {
	return &mockStore{
		existing:     existing,
		updatesByID:  make(map[string]Record),
		updatesByCF:  make(map[string]Record),
		failUpdateID: make(map[string]error),
		failInsertCF: make(map[string]error),
	}
}

func (m *mockStore) FindByFiscalCodes(_ context.Context, _ string, codes []string) ([]Existing, error) {
	if m.transportDown {
		return nil, &TransportError{Err: errors.New("connection refused")}
	}
	batch := make([]string, len(codes))
	copy(batch, codes)
	m.lookupBatches = append(m.lookupBatches, batch)

	want := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		want[c] = struct{}{}
	}
	var out []Existing
	for _, ex := range m.existing {
		if _, ok := want[ex.CodFiscale]; ok {
			out = append(out, ex)
		}
	}
	return out, nil
}

func (m *mockStore) UpdateByID(_ context.Context, _ string, id string, rec Record) error {
	if m.transportDown {
		return &TransportError{Err: errors.New("connection refused")}
	}
	if err := m.failUpdateID[id]; err != nil {
		return err
	}
	for _, ex := range m.existing {
		if ex.ID == id {
			m.updatesByID[id] = rec
			return nil
		}
	}
	return fmt.Errorf("no member with id %s", id)
}

func (m *mockStore) UpdateByFiscalCode(_ context.Context, _ string, cf string, rec Record) (int64, error) {
	if m.transportDown {
		return 0, &TransportError{Err: errors.New("connection refused")}
	}
	for _, ex := range m.existing {
		if ex.CodFiscale == cf {
			m.updatesByCF[cf] = rec
			return 1, nil
		}
	}
	return 0, nil
}

func (m *mockStore) Insert(_ context.Context, _ string, rec Record) error {
	if m.transportDown {
		return &TransportError{Err: errors.New("connection refused")}
	}
	if err := m.failInsertCF[rec.CodFiscale]; err != nil {
		return err
	}
	m.inserts = append(m.inserts, rec)
	return nil
}
