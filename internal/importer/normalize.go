package importer

import (
	"strings"
	"unicode"

	"GestAsd/internal/config"
)

func clean(v string) string {
	return strings.TrimSpace(v)
}

// NormalizeFiscalCode uppercases and strips every whitespace character.
// Returns "" when nothing is left.
func NormalizeFiscalCode(v string) string {
	s := strings.ToUpper(clean(v))
	var b strings.Builder
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func normalizeEmail(v string) string {
	return strings.ToLower(clean(v))
}

// Normalize applies the canonical cleanup to every field and fills the
// member type and year defaults.
func Normalize(rec Record) Record {
	out := Record{
		Nome:       clean(rec.Nome),
		Cognome:    clean(rec.Cognome),
		CodFiscale: NormalizeFiscalCode(rec.CodFiscale),
		Cellulare:  clean(rec.Cellulare),
		Indirizzo:  clean(rec.Indirizzo),
		Citta:      clean(rec.Citta),
		Email:      normalizeEmail(rec.Email),
		Tipo:       clean(rec.Tipo),
		Anno:       clean(rec.Anno),
		Pagamento:  clean(rec.Pagamento),
		Note:       clean(rec.Note),
	}
	if out.Tipo == "" {
		out.Tipo = config.DefaultMemberType
	}
	if out.Anno == "" {
		out.Anno = config.DefaultMemberYear
	}
	return out
}

// IsEmpty reports whether every field of the record is blank. Tipo and Anno
// are checked against their raw values by the caller before defaults apply;
// here a record that only carries the defaults still counts as filled, so
// emptiness is decided on the pre-normalization row (see MapRow).
func IsEmpty(rec Record) bool {
	return rec.Nome == "" &&
		rec.Cognome == "" &&
		rec.CodFiscale == "" &&
		rec.Cellulare == "" &&
		rec.Indirizzo == "" &&
		rec.Citta == "" &&
		rec.Email == "" &&
		rec.Tipo == "" &&
		rec.Anno == "" &&
		rec.Pagamento == "" &&
		rec.Note == ""
}

// headerAliases maps the canonical column to the headers spreadsheets from
// different seasons have used for it. First match wins.
var headerAliases = map[string][]string{
	"nome":        {"Nome", "NOME"},
	"cognome":     {"Cognome", "COGNOME"},
	"cod_fiscale": {"Cod. fiscale", "Codice Fiscale", "COD. FISCALE", "Codice fiscale", "CF"},
	"cellulare":   {"Cellulare", "Telefono", "CELLULARE"},
	"indirizzo":   {"Residente in via", "Indirizzo", "VIA"},
	"citta":       {"Città", "Citta", "CITTA"},
	"email":       {"Email", "E-mail", "EMAIL"},
	"tipo":        {"Tipo", "TIPO"},
	"anno":        {"Anno 25/26", "Anno", "ANNO"},
	"pagamento":   {"Pagamento", "PAGAMENTO"},
	"note":        {"Note", "NOTE"},
}

func pick(raw map[string]string, field string) string {
	for _, h := range headerAliases[field] {
		if v := clean(raw[h]); v != "" {
			return v
		}
	}
	return ""
}

// MapRow converts a raw spreadsheet row (header -> cell text) into a
// normalized Row and reports whether the source row was fully empty. Empty
// rows are discarded by the caller, never counted as errors.
func MapRow(raw map[string]string, tmpID string) (Row, bool) {
	rec := Record{
		Nome:       pick(raw, "nome"),
		Cognome:    pick(raw, "cognome"),
		CodFiscale: pick(raw, "cod_fiscale"),
		Cellulare:  pick(raw, "cellulare"),
		Indirizzo:  pick(raw, "indirizzo"),
		Citta:      pick(raw, "citta"),
		Email:      pick(raw, "email"),
		Tipo:       pick(raw, "tipo"),
		Anno:       pick(raw, "anno"),
		Pagamento:  pick(raw, "pagamento"),
		Note:       pick(raw, "note"),
	}
	if IsEmpty(rec) {
		return Row{}, true
	}
	return Row{TmpID: tmpID, Record: Normalize(rec)}, false
}
