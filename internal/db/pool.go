// Package db provides shared postgres helpers used by the store layer.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it,
// which keeps the postgres store unit-testable without a database.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// InsertIgnore builds and executes a multi-row INSERT ... ON CONFLICT DO
// NOTHING and returns the number of rows actually inserted. Used for the
// content-addressed review tables where re-acquisition must not touch
// existing rows.
func InsertIgnore(ctx context.Context, pool Pool, table string, columns, conflictColumns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, eris.Errorf("db: row %d has %d values, want %d", i, len(row), len(columns))
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", len(args)+1)
			args = append(args, row[j])
		}
		b.WriteString(")")
	}
	fmt.Fprintf(&b, " ON CONFLICT (%s) DO NOTHING", strings.Join(conflictColumns, ", "))

	tag, err := pool.Exec(ctx, b.String(), args...)
	if err != nil {
		return 0, eris.Wrapf(err, "db: insert into %s", table)
	}
	return tag.RowsAffected(), nil
}
