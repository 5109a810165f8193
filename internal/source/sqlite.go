package source

import (
	"context"
	"database/sql"
	"strings"

	"github.com/olekukonko/errors"
	_ "modernc.org/sqlite"

	"github.com/bekirdag/gridview/internal/grid"
)

// LoadSQLite runs query against the database at path. With no query the
// first user table is read in full.
func LoadSQLite(ctx context.Context, path, query string) (*Result, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Newf("open sqlite %s", path).Wrap(err)
	}
	defer db.Close()

	if strings.TrimSpace(query) == "" {
		var table string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name LIMIT 1`,
		).Scan(&table)
		if err != nil {
			return nil, errors.Newf("find table in %s", path).Wrap(err)
		}
		query = `SELECT * FROM "` + strings.ReplaceAll(table, `"`, `""`) + `"`
	}
	return QueryRows(ctx, db, query)
}

// QueryRows reads every row of query. BLOB and TEXT columns come back as
// strings.
func QueryRows(ctx context.Context, db *sql.DB, query string, args ...any) (*Result, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Newf("query %q", query).Wrap(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.Newf("read columns").Wrap(err)
	}
	res := &Result{Columns: columns}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Newf("scan row").Wrap(err)
		}
		row := make(grid.Row, len(columns))
		for i, name := range columns {
			if b, ok := values[i].([]byte); ok {
				row[name] = string(b)
				continue
			}
			row[name] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Newf("iterate rows").Wrap(err)
	}
	return res, nil
}
