package members

import "testing"

func TestRowsToMapsSkipsLeadingBlankRows(t *testing.T) {
	rows := [][]string{
		{"", ""},
		{"Nome", "Cognome", "Cod. fiscale"},
		{"Mario", "Rossi", "RSSMRA80A01H501U"},
		{"Luisa", "Bianchi"},
	}
	maps := rowsToMaps(rows)
	if len(maps) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(maps))
	}
	if maps[0]["Nome"] != "Mario" || maps[0]["Cod. fiscale"] != "RSSMRA80A01H501U" {
		t.Errorf("unexpected first row: %v", maps[0])
	}
	// short rows only fill the columns they have
	if _, ok := maps[1]["Cod. fiscale"]; ok {
		t.Errorf("short row should not carry missing columns: %v", maps[1])
	}
}

func TestRowsToMapsEmptyInput(t *testing.T) {
	if got := rowsToMaps(nil); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
	if got := rowsToMaps([][]string{{"", ""}, {"  "}}); got != nil {
		t.Errorf("expected nil for all-blank input, got %v", got)
	}
}

func TestGetFileExt(t *testing.T) {
	cases := map[string]string{
		"Tesserati.XLSX": ".xlsx",
		"elenco.csv":     ".csv",
		"vecchio.xls":    ".xls",
		"noext":          "",
	}
	for in, want := range cases {
		if got := getFileExt(in); got != want {
			t.Errorf("getFileExt(%q) = %q, want %q", in, got, want)
		}
	}
}
