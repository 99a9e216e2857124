package report

import "testing"

func TestIsoDateOrNil(t *testing.T) {
	if got := isoDateOrNil(""); got != nil {
		t.Errorf("empty input should be nil, got %v", *got)
	}
	if got := isoDateOrNil("not-a-date"); got != nil {
		t.Errorf("garbage input should be nil, got %v", *got)
	}
	if got := isoDateOrNil("2026-01-15"); got == nil || *got != "2026-01-15" {
		t.Errorf("plain date not accepted: %v", got)
	}
	if got := isoDateOrNil("2026-01-15T10:30:00Z"); got == nil || *got != "2026-01-15" {
		t.Errorf("RFC3339 should truncate to date: %v", got)
	}
}

func TestBuildRecap(t *testing.T) {
	rows := []FinancialRow{
		{CassaIn: 100.555, CassaOut: 20, BancaIn: 50, BancaOut: 10},
		{CassaIn: 9.005, BancaOut: 40},
	}
	rc := buildRecap(rows)
	if rc.CassaIn != 109.56 {
		t.Errorf("CassaIn = %v, want 109.56", rc.CassaIn)
	}
	if rc.CassaSaldo != 89.56 {
		t.Errorf("CassaSaldo = %v, want 89.56", rc.CassaSaldo)
	}
	if rc.BancaSaldo != 0.0 {
		t.Errorf("BancaSaldo = %v, want 0", rc.BancaSaldo)
	}
}

func TestBuildRecapEmpty(t *testing.T) {
	rc := buildRecap(nil)
	if rc.CassaIn != 0 || rc.BancaSaldo != 0 {
		t.Errorf("empty recap should be all zero: %+v", rc)
	}
}

func TestBuildIvaTotals(t *testing.T) {
	rows := []IvaSummaryRow{
		{Imponibile: 100, Iva: 22, Totale: 122, Count: 3},
		{Imponibile: 50.004, Iva: 11, Totale: 61.004, Count: 2},
	}
	tot := buildIvaTotals(rows)
	if tot.Imponibile != 150.0 {
		t.Errorf("Imponibile = %v, want 150", tot.Imponibile)
	}
	if tot.Iva != 33 {
		t.Errorf("Iva = %v, want 33", tot.Iva)
	}
	if tot.Count != 5 {
		t.Errorf("Count = %v, want 5", tot.Count)
	}
}
