package members

import (
	"context"
	"errors"
	"net"

	"GestAsd/internal/importer"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate marks a unique-constraint violation (fiscal code already
// present for this user).
var ErrDuplicate = errors.New("duplicate fiscal code")

// Store persists tesserati rows, scoped to the owning user. All writes go
// through here; it also implements importer.MemberStore.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

var _ importer.MemberStore = (*Store)(nil)

const memberColumns = `id, nome, cognome, cod_fiscale, cellulare, indirizzo, citta, email, tipo, anno, pagamento, note`

// classify wraps connectivity failures so the import executor can tell a
// dead database from a rejected row.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &importer.TransportError{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &importer.TransportError{Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func scanMember(row pgx.Row) (importer.Existing, error) {
	var (
		ex importer.Existing
		cf *string
	)
	err := row.Scan(&ex.ID, &ex.Nome, &ex.Cognome, &cf, &ex.Cellulare, &ex.Indirizzo,
		&ex.Citta, &ex.Email, &ex.Tipo, &ex.Anno, &ex.Pagamento, &ex.Note)
	if err != nil {
		return importer.Existing{}, err
	}
	if cf != nil {
		ex.CodFiscale = *cf
	}
	return ex, nil
}

// List returns every member for the user ordered by surname then name.
func (s *Store) List(ctx context.Context, ownerID string) ([]importer.Existing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM tesserati WHERE user_id = $1 ORDER BY cognome, nome`,
		ownerID,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []importer.Existing{}
	for rows.Next() {
		ex, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *Store) FindByFiscalCodes(ctx context.Context, ownerID string, codes []string) ([]importer.Existing, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+memberColumns+` FROM tesserati WHERE user_id = $1 AND cod_fiscale = ANY($2)`,
		ownerID, codes,
	)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []importer.Existing
	for rows.Next() {
		ex, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	return out, rows.Err()
}

func (s *Store) Insert(ctx context.Context, ownerID string, rec importer.Record) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO tesserati (user_id, nome, cognome, cod_fiscale, cellulare, indirizzo, citta, email, tipo, anno, pagamento, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		ownerID, rec.Nome, rec.Cognome, nullable(rec.CodFiscale), rec.Cellulare,
		rec.Indirizzo, rec.Citta, rec.Email, rec.Tipo, rec.Anno, rec.Pagamento, rec.Note,
	)
	return classify(err)
}

// InsertReturning creates a member and returns the stored row.
func (s *Store) InsertReturning(ctx context.Context, ownerID string, rec importer.Record) (importer.Existing, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tesserati (user_id, nome, cognome, cod_fiscale, cellulare, indirizzo, citta, email, tipo, anno, pagamento, note)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+memberColumns,
		ownerID, rec.Nome, rec.Cognome, nullable(rec.CodFiscale), rec.Cellulare,
		rec.Indirizzo, rec.Citta, rec.Email, rec.Tipo, rec.Anno, rec.Pagamento, rec.Note,
	)
	ex, err := scanMember(row)
	if err != nil {
		return importer.Existing{}, classify(err)
	}
	return ex, nil
}

func (s *Store) UpdateByID(ctx context.Context, ownerID, id string, rec importer.Record) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tesserati SET nome=$1, cognome=$2, cod_fiscale=$3, cellulare=$4, indirizzo=$5,
		        citta=$6, email=$7, tipo=$8, anno=$9, pagamento=$10, note=$11
		 WHERE id=$12 AND user_id=$13`,
		rec.Nome, rec.Cognome, nullable(rec.CodFiscale), rec.Cellulare, rec.Indirizzo,
		rec.Citta, rec.Email, rec.Tipo, rec.Anno, rec.Pagamento, rec.Note, id, ownerID,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// UpdateByIDReturning updates a member and returns the stored row.
func (s *Store) UpdateByIDReturning(ctx context.Context, ownerID, id string, rec importer.Record) (importer.Existing, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tesserati SET nome=$1, cognome=$2, cod_fiscale=$3, cellulare=$4, indirizzo=$5,
		        citta=$6, email=$7, tipo=$8, anno=$9, pagamento=$10, note=$11
		 WHERE id=$12 AND user_id=$13
		 RETURNING `+memberColumns,
		rec.Nome, rec.Cognome, nullable(rec.CodFiscale), rec.Cellulare, rec.Indirizzo,
		rec.Citta, rec.Email, rec.Tipo, rec.Anno, rec.Pagamento, rec.Note, id, ownerID,
	)
	ex, err := scanMember(row)
	if err != nil {
		return importer.Existing{}, classify(err)
	}
	return ex, nil
}

func (s *Store) UpdateByFiscalCode(ctx context.Context, ownerID, cf string, rec importer.Record) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tesserati SET nome=$1, cognome=$2, cellulare=$3, indirizzo=$4, citta=$5,
		        email=$6, tipo=$7, anno=$8, pagamento=$9, note=$10
		 WHERE user_id=$11 AND cod_fiscale=$12`,
		rec.Nome, rec.Cognome, rec.Cellulare, rec.Indirizzo, rec.Citta,
		rec.Email, rec.Tipo, rec.Anno, rec.Pagamento, rec.Note, ownerID, cf,
	)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Delete(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tesserati WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
