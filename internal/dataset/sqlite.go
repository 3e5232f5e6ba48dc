package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	benchErrors "github.com/parbench/parbench/internal/errors"
)

// sqliteCells streams one column of a SQLite table.
func sqliteCells(ctx context.Context, path, table, column string) cellSource {
	return func(visit func(cell any)) error {
		db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
		if err != nil {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetNotFound, fmt.Sprintf("open %s", path), err)
		}
		defer db.Close()

		query := fmt.Sprintf("SELECT %s FROM %s", quoteIdent(column), quoteIdent(table))
		rows, err := db.QueryContext(ctx, query)
		if err != nil {
			if strings.Contains(err.Error(), "no such column") || strings.Contains(err.Error(), "no such table") {
				return benchErrors.NewDatasetError(benchErrors.CodeDatasetEmptyColumn,
					fmt.Sprintf("%s.%s not found in %s", table, column, path), err).
					WithDetails(map[string]interface{}{"table": table, "column": column})
			}
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetParse, fmt.Sprintf("query %s", path), err)
		}
		defer rows.Close()

		for rows.Next() {
			var cell any
			if err := rows.Scan(&cell); err != nil {
				return benchErrors.NewDatasetError(benchErrors.CodeDatasetParse, fmt.Sprintf("scan %s", path), err)
			}
			visit(cell)
		}
		if err := rows.Err(); err != nil {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetParse, fmt.Sprintf("read %s", path), err)
		}
		return nil
	}
}

// quoteIdent quotes a SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
