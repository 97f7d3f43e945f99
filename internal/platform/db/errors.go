package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("unique constraint violated")
	ErrReferenced = errors.New("row is still referenced")
	ErrInvalidRef = errors.New("referenced row does not exist")
	ErrRestricted = errors.New("operation rejected by the database")
)

// Postgres SQLSTATE codes we translate.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeRaiseException      = "P0001"
)

// ConstraintError carries the sentinel plus the constraint that fired.
type ConstraintError struct {
	Kind       error
	Constraint string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return e.Kind.Error() + " (" + e.Constraint + ")"
	}
	return e.Kind.Error()
}

func (e *ConstraintError) Unwrap() []error { return []error{e.Kind, e.Err} }

// Translate maps driver errors to the package sentinels. Unknown errors are
// returned unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case codeUniqueViolation:
		return &ConstraintError{Kind: ErrConflict, Constraint: pgErr.ConstraintName, Detail: pgErr.Detail, Err: err}
	case codeForeignKeyViolation:
		// On DELETE/UPDATE of the parent the message names the referencing
		// table; on INSERT the child points at a missing parent.
		kind := ErrInvalidRef
		if isStillReferenced(pgErr.Detail) {
			kind = ErrReferenced
		}
		return &ConstraintError{Kind: kind, Constraint: pgErr.ConstraintName, Detail: pgErr.Detail, Err: err}
	case codeRaiseException:
		return &ConstraintError{Kind: ErrRestricted, Detail: pgErr.Message, Err: err}
	}
	return err
}

func isStillReferenced(detail string) bool {
	return strings.Contains(detail, "is still referenced")
}

// Querier is the subset of pgx shared by pools, connections and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// From returns the innermost executor for ctx: the active transaction, then
// the request connection, then the pool.
func From(ctx context.Context, pool *pgxpool.Pool) Querier {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := ConnFromContext(ctx); c != nil {
		return c
	}
	return pool
}
