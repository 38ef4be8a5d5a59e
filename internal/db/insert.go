package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// InsertSQL builds a single-row INSERT with positional placeholders.
func InsertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sanitizeTable(table),
		quoteAndJoin(columns),
		strings.Join(placeholders, ", "),
	)
}

// InsertRow writes one row in its own transaction. The transaction holds a
// single connection that is returned to the pool on commit or rollback,
// whatever the outcome.
func InsertRow(ctx context.Context, pool Pool, table string, columns []string, row []any) error {
	if len(columns) == 0 {
		return eris.New("db: insert: no columns specified")
	}
	if len(columns) != len(row) {
		return eris.Errorf("db: insert: %d columns but %d values", len(columns), len(row))
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "db: insert: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, InsertSQL(table, columns), row...)
	if err != nil {
		return eris.Wrapf(err, "db: insert into %s", table)
	}
	if tag.RowsAffected() != 1 {
		return eris.Errorf("db: insert into %s: expected 1 row, got %d", table, tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "db: insert: commit tx")
	}
	return nil
}

// sanitizeTable handles schema-qualified table names like "intake.submissions".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
