package ledger

import "testing"

func TestParseItalianDateTime(t *testing.T) {
	cases := []struct {
		in, wantDate, wantDT string
		ok                   bool
	}{
		{"5 dic 2025, 20:26", "2025-12-05", "2025-12-05T20:26:00", true},
		{"28 feb 2026", "2026-02-28", "2026-02-28T00:00:00", true},
		{"1 gennaio 2026, 09:05", "2026-01-01", "2026-01-01T09:05:00", true},
		{"Totale", "", "", false},
		{"", "", "", false},
		{"5 xyz 2025", "", "", false},
	}
	for _, c := range cases {
		date, dt, ok := parseItalianDateTime(c.in)
		if ok != c.ok || date != c.wantDate || dt != c.wantDT {
			t.Errorf("parseItalianDateTime(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.in, date, dt, ok, c.wantDate, c.wantDT, c.ok)
		}
	}
}

func TestParseVatRate(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		nil_ bool
	}{
		{"0.22", 22, false},
		{"0,22", 22, false},
		{"22%", 22, false},
		{"22,00%", 22, false},
		{"10", 10, false},
		{"", 0, true},
		{"n/a", 0, true},
	}
	for _, c := range cases {
		got := parseVatRate(c.in)
		if c.nil_ {
			if got != nil {
				t.Errorf("parseVatRate(%q) = %v, want nil", c.in, *got)
			}
			continue
		}
		if got == nil || *got != c.want {
			t.Errorf("parseVatRate(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSheetToEntries(t *testing.T) {
	rows := [][]string{
		{"Data", "Tipo", "Descrizione", "Prezzo (lordo)", "Metodo di pagamento", "ID Transazione", "IVA", "Percentuale imposta"},
		{"5 dic 2025, 20:26", "Vendita", "Ingresso serata", "10,00", "Carta", "TX123", "1,80", "0.22"},
		{"5 dic 2025, 20:30", "Rimborso", "Storno", "5,00", "Carta", "TX124", "", ""},
		{"", "", "", "", "", "", "", ""},
		{"6 dic 2025, 21:00", "Vendita", "Consumazione", "4,50", "Contanti", "", "", ""},
	}
	entries := sheetToEntries("SABATO LATINO", rows)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2 (refund and blank rows dropped)", len(entries))
	}

	e := entries[0]
	if e.Description != "Ingresso serata" || e.AmountIn.String() != "10" {
		t.Errorf("first entry = %+v", e)
	}
	if e.Center == nil || *e.Center != "SABATO LATINO" {
		t.Error("sheet name must become the cost center")
	}
	if e.Source != "SumUp" {
		t.Errorf("source = %q", e.Source)
	}
	if e.Note == nil || *e.Note != "SumUp TX123" {
		t.Errorf("note = %v", e.Note)
	}
	if e.VatRate == nil || *e.VatRate != 22 {
		t.Errorf("vat rate = %v", e.VatRate)
	}
	if e.OperationDatetime == nil || *e.OperationDatetime != "2025-12-05T20:26:00" {
		t.Errorf("operation datetime = %v", e.OperationDatetime)
	}

	if entries[1].Note != nil {
		t.Error("entry without transaction id must have nil note")
	}
}
