package importer

import "testing"

func TestNormalizeFiscalCode(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"rssmra80a01h501u", "RSSMRA80A01H501U"},
		{"  RSS MRA 80A01 H501U  ", "RSSMRA80A01H501U"},
		{"\tRSSMRA80A01H501U\n", "RSSMRA80A01H501U"},
		{"   ", ""},
		{"", ""},
	}
	for _, c := range cases {
		if got := NormalizeFiscalCode(c.in); got != c.want {
			t.Errorf("NormalizeFiscalCode(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeDefaults(t *testing.T) {
	rec := Normalize(Record{Nome: " Mario ", Email: " Mario@Example.COM "})
	if rec.Nome != "Mario" {
		t.Errorf("Nome = %q", rec.Nome)
	}
	if rec.Email != "mario@example.com" {
		t.Errorf("Email = %q", rec.Email)
	}
	if rec.Tipo != "Tesserato" {
		t.Errorf("Tipo default = %q", rec.Tipo)
	}
	if rec.Anno != "25/26" {
		t.Errorf("Anno default = %q", rec.Anno)
	}
}

func TestNormalizeKeepsExplicitTipoAnno(t *testing.T) {
	rec := Normalize(Record{Tipo: "Istruttore", Anno: "24/25"})
	if rec.Tipo != "Istruttore" || rec.Anno != "24/25" {
		t.Errorf("got %q %q, defaults must not override explicit values", rec.Tipo, rec.Anno)
	}
}

func TestMapRowAliases(t *testing.T) {
	cases := []struct {
		name string
		raw  map[string]string
		get  func(Row) string
		want string
	}{
		{"cf alias CF", map[string]string{"CF": "rssmra80a01h501u", "Nome": "a"}, func(r Row) string { return r.CodFiscale }, "RSSMRA80A01H501U"},
		{"cf alias Codice Fiscale", map[string]string{"Codice Fiscale": "x y", "Nome": "a"}, func(r Row) string { return r.CodFiscale }, "XY"},
		{"phone alias Telefono", map[string]string{"Telefono": "333 1234567", "Nome": "a"}, func(r Row) string { return r.Cellulare }, "333 1234567"},
		{"address alias Residente in via", map[string]string{"Residente in via": "Via Roma 1", "Nome": "a"}, func(r Row) string { return r.Indirizzo }, "Via Roma 1"},
		{"city alias accented", map[string]string{"Città": "Milano", "Nome": "a"}, func(r Row) string { return r.Citta }, "Milano"},
		{"year alias Anno 25/26", map[string]string{"Anno 25/26": "25/26", "Nome": "a"}, func(r Row) string { return r.Anno }, "25/26"},
		{"email lowered", map[string]string{"E-mail": "A@B.IT", "Nome": "a"}, func(r Row) string { return r.Email }, "a@b.it"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			row, empty := MapRow(c.raw, "t1")
			if empty {
				t.Fatal("row unexpectedly empty")
			}
			if got := c.get(row); got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestMapRowEmpty(t *testing.T) {
	_, empty := MapRow(map[string]string{"Nome": "  ", "Note": ""}, "t1")
	if !empty {
		t.Fatal("blank row must be reported empty")
	}
	row, empty := MapRow(map[string]string{"Note": "promemoria"}, "t2")
	if empty {
		t.Fatal("a single filled cell keeps the row")
	}
	if row.Note != "promemoria" || row.TmpID != "t2" {
		t.Errorf("got %+v", row)
	}
}
