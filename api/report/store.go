package report

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Report queries live in Postgres stored functions so the same numbers feed
// the JSON endpoints and the exports.

type FinancialRow struct {
	Date        *string `json:"date"`
	Description string  `json:"description"`
	Conto       *string `json:"conto"`
	Nature      *string `json:"nature"`
	CassaIn     float64 `json:"cassaIn"`
	CassaOut    float64 `json:"cassaOut"`
	BancaIn     float64 `json:"bancaIn"`
	BancaOut    float64 `json:"bancaOut"`
}

type OperatingRow struct {
	AccountCode *string `json:"accountCode"`
	AccountName *string `json:"accountName"`
	Nature      *string `json:"nature"`
	Entrate     float64 `json:"entrate"`
	Uscite      float64 `json:"uscite"`
}

type GlobalTotals struct {
	TotalEntrate float64 `json:"totalEntrate"`
	TotalUscite  float64 `json:"totalUscite"`
	Saldo        float64 `json:"saldo"`
	TotalVat     float64 `json:"totalVat"`
}

type GroupedRow struct {
	Date        *string `json:"date"`
	Description string  `json:"description"`
	Entrate     float64 `json:"entrate"`
	Uscite      float64 `json:"uscite"`
}

type IvaSummaryRow struct {
	Month      string   `json:"month"`
	Nature     *string  `json:"nature"`
	VatRate    *float64 `json:"vatRate"`
	Imponibile float64  `json:"imponibile"`
	Iva        float64  `json:"iva"`
	Totale     float64  `json:"totale"`
	Count      int64    `json:"count"`
}

type IvaDetailRow struct {
	Month       string   `json:"month"`
	Nature      *string  `json:"nature"`
	AccountCode *string  `json:"accountCode"`
	AccountName *string  `json:"accountName"`
	VatRate     *float64 `json:"vatRate"`
	Imponibile  float64  `json:"imponibile"`
	Iva         float64  `json:"iva"`
	Totale      float64  `json:"totale"`
	Count       int64    `json:"count"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) FinancialStatement(ctx context.Context, userID string, from, to *string) ([]FinancialRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, description, conto, nature,
		        COALESCE(cassa_in, 0), COALESCE(cassa_out, 0),
		        COALESCE(banca_in, 0), COALESCE(banca_out, 0)
		   FROM report_financial_statement($1, $2, $3)`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FinancialRow{}
	for rows.Next() {
		var r FinancialRow
		if err := rows.Scan(&r.Date, &r.Description, &r.Conto, &r.Nature,
			&r.CassaIn, &r.CassaOut, &r.BancaIn, &r.BancaOut); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) OperatingResult(ctx context.Context, userID string, from, to *string) ([]OperatingRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT account_code, account_name, nature,
		        COALESCE(entrate, 0), COALESCE(uscite, 0)
		   FROM report_operating_result($1, $2, $3)`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []OperatingRow{}
	for rows.Next() {
		var r OperatingRow
		if err := rows.Scan(&r.AccountCode, &r.AccountName, &r.Nature, &r.Entrate, &r.Uscite); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Totals(ctx context.Context, userID string, from, to *string) (GlobalTotals, error) {
	var t GlobalTotals
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(total_entrate, 0), COALESCE(total_uscite, 0),
		        COALESCE(saldo, 0), COALESCE(total_vat, 0)
		   FROM report_global_totals($1, $2, $3)`, userID, from, to).
		Scan(&t.TotalEntrate, &t.TotalUscite, &t.Saldo, &t.TotalVat)
	if err != nil {
		return GlobalTotals{}, err
	}
	return t, nil
}

func (s *Store) RendicontoGrouped(ctx context.Context, userID string, from, to *string) ([]GroupedRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT date, description, COALESCE(entrate, 0), COALESCE(uscite, 0)
		   FROM report_rendiconto_grouped($1, $2, $3)`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GroupedRow{}
	for rows.Next() {
		var r GroupedRow
		if err := rows.Scan(&r.Date, &r.Description, &r.Entrate, &r.Uscite); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) IvaSummary(ctx context.Context, userID string, from, to *string, codes []string) ([]IvaSummaryRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT month, nature, vat_rate,
		        COALESCE(imponibile, 0), COALESCE(iva, 0), COALESCE(totale, 0), COALESCE(count, 0)
		   FROM iva_monthly_nature($1, $2, $3, $4)`, userID, from, to, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []IvaSummaryRow{}
	for rows.Next() {
		var r IvaSummaryRow
		if err := rows.Scan(&r.Month, &r.Nature, &r.VatRate, &r.Imponibile, &r.Iva, &r.Totale, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) IvaDetail(ctx context.Context, userID string, from, to *string, codes []string) ([]IvaDetailRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT month, nature, account_code, account_name, vat_rate,
		        COALESCE(imponibile, 0), COALESCE(iva, 0), COALESCE(totale, 0), COALESCE(count, 0)
		   FROM iva_monthly_nature_detail($1, $2, $3, $4)`, userID, from, to, codes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []IvaDetailRow{}
	for rows.Next() {
		var r IvaDetailRow
		if err := rows.Scan(&r.Month, &r.Nature, &r.AccountCode, &r.AccountName, &r.VatRate,
			&r.Imponibile, &r.Iva, &r.Totale, &r.Count); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
