package store

import (
	"context"
	"database/sql"
)

// The stores take the narrowest querier they need rather than *sqlx.DB, so
// writes can run on the caller's transaction while reads hit the pool.
// Both *sqlx.DB and *sqlx.Tx satisfy every interface here.

// Execer runs a statement; every earnings, period, snapshot and audit write
// takes one so the handler or service decides the transaction boundary.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Getter scans a single row, e.g. a user lookup or the admin-exists count.
type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

// Selecter scans a result set, e.g. a week's earnings or the audit page.
type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is what store constructors hold: the full pool surface.
type DB interface {
	Execer
	Getter
	Selecter
}

// Tx is the in-transaction surface, enough for read-check-write sequences
// like the registration bootstrap.
type Tx interface {
	Execer
	Getter
}
