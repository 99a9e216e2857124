package ledger

import (
	"context"
	"fmt"
	"strings"

	"GestAsd/internal/bulkmeta"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Entry is one prima nota row. Monetary fields use decimals so imported
// amounts never pick up float drift.
type Entry struct {
	ID                string           `json:"id"`
	Date              *string          `json:"date"`
	OperationDatetime *string          `json:"operation_datetime"`
	Description       string           `json:"description"`
	AmountIn          decimal.Decimal  `json:"amount_in"`
	AmountOut         decimal.Decimal  `json:"amount_out"`
	AccountCode       *string          `json:"account_code"`
	Method            *string          `json:"method"`
	Center            *string          `json:"center"`
	Note              *string          `json:"note"`
	Nature            *string          `json:"nature"`
	VatRate           *float64         `json:"vat_rate"`
	VatAmount         *decimal.Decimal `json:"vat_amount"`
	Source            string           `json:"source"`
}

// Page is one page of the filtered listing.
type Page struct {
	Items      []Entry `json:"items"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
	TotalPages int     `json:"totalPages"`
}

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ bulkmeta.LedgerStore = (*Store)(nil)

const entryColumns = `id, date, operation_datetime, description, amount_in, amount_out,
	account_code, method, center, note, nature, vat_rate, vat_amount, source`

// buildFilter appends WHERE clauses for the listing filters. $1 is always
// the owner id; the returned args start there.
func buildFilter(ownerID string, f bulkmeta.Filter) (string, []interface{}) {
	clauses := []string{"user_id = $1"}
	args := []interface{}{ownerID}

	add := func(clause string, v interface{}) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.Search != "" {
		add("description ILIKE $%d", "%"+f.Search+"%")
	}
	if f.From != "" {
		add("operation_datetime >= $%d", f.From)
	}
	if f.To != "" {
		add("operation_datetime <= $%d", f.To)
	}
	if f.WithoutAccount {
		clauses = append(clauses, "(account_code IS NULL OR account_code = '')")
	} else if f.AccountCode != "" {
		add("account_code = $%d", f.AccountCode)
	}
	if f.VATRate != nil {
		add("vat_rate = $%d", *f.VATRate)
	}
	return strings.Join(clauses, " AND "), args
}

func scanEntry(rows pgx.Rows) (Entry, error) {
	var e Entry
	err := rows.Scan(&e.ID, &e.Date, &e.OperationDatetime, &e.Description,
		&e.AmountIn, &e.AmountOut, &e.AccountCode, &e.Method, &e.Center,
		&e.Note, &e.Nature, &e.VatRate, &e.VatAmount, &e.Source)
	return e, err
}

// List returns one page of entries, newest operation first, plus totals for
// the pagination widget.
func (s *Store) List(ctx context.Context, ownerID string, f bulkmeta.Filter, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	where, args := buildFilter(ownerID, f)

	var total int
	err := s.pool.QueryRow(ctx, "SELECT count(*) FROM entries WHERE "+where, args...).Scan(&total)
	if err != nil {
		return Page{}, err
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(
		"SELECT "+entryColumns+" FROM entries WHERE %s ORDER BY operation_datetime DESC NULLS LAST LIMIT %d OFFSET %d",
		where, pageSize, offset,
	)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()

	items := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Page{}, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return Page{}, err
	}

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return Page{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}, nil
}

// PageIDs serves the bulk mutator's collect phase.
func (s *Store) PageIDs(ctx context.Context, ownerID string, f bulkmeta.Filter, page, pageSize int) ([]string, int, error) {
	if page < 1 {
		page = 1
	}
	where, args := buildFilter(ownerID, f)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM entries WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	totalPages := (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	offset := (page - 1) * pageSize
	query := fmt.Sprintf(
		"SELECT id FROM entries WHERE %s ORDER BY operation_datetime DESC NULLS LAST LIMIT %d OFFSET %d",
		where, pageSize, offset,
	)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, 0, err
		}
		ids = append(ids, id)
	}
	return ids, totalPages, rows.Err()
}

// PatchMeta applies a metadata patch to one entry.
func (s *Store) PatchMeta(ctx context.Context, ownerID, id string, p bulkmeta.Patch) error {
	sets := []string{}
	args := []interface{}{}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		if *v == "" && col != "description" {
			args = append(args, nil)
		} else {
			args = append(args, *v)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("account_code", p.AccountCode)
	add("nature", p.Nature)
	add("description", p.Description)
	if len(sets) == 0 {
		return fmt.Errorf("empty patch")
	}

	args = append(args, id)
	idIdx := len(args)
	args = append(args, ownerID)
	query := fmt.Sprintf("UPDATE entries SET %s WHERE id = $%d AND user_id = $%d",
		strings.Join(sets, ", "), idIdx, idIdx+1)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Insert creates one entry and returns its id.
func (s *Store) Insert(ctx context.Context, ownerID string, e Entry) (string, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO entries (user_id, date, operation_datetime, description, amount_in, amount_out,
		        account_code, method, center, note, nature, vat_rate, vat_amount, source)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 RETURNING id`,
		ownerID, e.Date, e.OperationDatetime, e.Description, e.AmountIn, e.AmountOut,
		e.AccountCode, e.Method, e.Center, e.Note, e.Nature, e.VatRate, e.VatAmount, e.Source,
	).Scan(&id)
	return id, err
}

func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM entries WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
