package importer

import (
	"context"
	"errors"
	"fmt"

	"GestAsd/internal/config"
)

// TransportError marks a store failure that is about reaching the database
// rather than about one row. The executor aborts the whole run on these;
// anything else becomes a per-row error and the batch continues.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "store unreachable: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// ProgressFunc receives the number of actions processed so far.
type ProgressFunc func(processed, total int)

// Executor applies a plan in fixed-size chunks. Cancellation is cooperative:
// ctx is checked at chunk boundaries, already-applied work stays applied.
type Executor struct {
	Store      MemberStore
	ChunkSize  int
	OnProgress ProgressFunc
}

// Run processes every action and returns per-row counters. The returned
// error is non-nil only when the run was aborted (cancellation or transport
// failure); the partial Result is still meaningful in that case.
func (e *Executor) Run(ctx context.Context, ownerID string, actions []Action) (Result, error) {
	chunk := e.ChunkSize
	if chunk <= 0 {
		chunk = config.ImportChunkSize
	}
	res := Result{Errors: []RowError{}}
	total := len(actions)

	for i := 0; i < total; i += chunk {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		end := i + chunk
		if end > total {
			end = total
		}
		for _, a := range actions[i:end] {
			if err := e.apply(ctx, ownerID, a, &res); err != nil {
				return res, err
			}
		}
		if e.OnProgress != nil {
			e.OnProgress(end, total)
		}
	}
	return res, nil
}

func (e *Executor) apply(ctx context.Context, ownerID string, a Action, res *Result) error {
	if a.Kind == ActionSkip {
		res.Skipped++
		return nil
	}

	incoming := Normalize(a.Incoming)
	if IsEmpty(a.Incoming) {
		res.Skipped++
		return nil
	}

	switch a.Kind {
	case ActionOverwrite:
		if a.TargetID == "" {
			res.Errors = append(res.Errors, RowError{Action: a.Kind, Incoming: incoming, Error: "missing target id for overwrite"})
			return nil
		}
		if err := e.Store.UpdateByID(ctx, ownerID, a.TargetID, incoming); err != nil {
			return e.rowOrAbort(a.Kind, incoming, res, err)
		}
		res.Updated++
		return nil

	case ActionInsert:
		if incoming.CodFiscale != "" {
			// Update-first keeps re-imports idempotent; a row inserted by a
			// concurrent commit between the two statements surfaces as a
			// duplicate-key row error, backed by the unique index on
			// (user_id, cod_fiscale).
			n, err := e.Store.UpdateByFiscalCode(ctx, ownerID, incoming.CodFiscale, incoming)
			if err != nil {
				return e.rowOrAbort(a.Kind, incoming, res, err)
			}
			if n > 0 {
				res.Updated++
				return nil
			}
		}
		if err := e.Store.Insert(ctx, ownerID, incoming); err != nil {
			return e.rowOrAbort(a.Kind, incoming, res, err)
		}
		res.Inserted++
		return nil

	default:
		res.Errors = append(res.Errors, RowError{Action: a.Kind, Incoming: incoming, Error: fmt.Sprintf("unknown action %q", a.Kind)})
		return nil
	}
}

func (e *Executor) rowOrAbort(kind ActionKind, rec Record, res *Result, err error) error {
	if IsTransport(err) {
		return err
	}
	res.Errors = append(res.Errors, RowError{Action: kind, Incoming: rec, Error: err.Error()})
	return nil
}
