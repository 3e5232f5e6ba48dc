package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	benchErrors "github.com/parbench/parbench/internal/errors"
)

// csvCells streams one column of a CSV file with a header row.
func csvCells(path, column string) cellSource {
	return func(visit func(cell any)) error {
		f, err := os.Open(path)
		if err != nil {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetNotFound, fmt.Sprintf("open %s", path), err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		r.ReuseRecord = true

		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetEmptyColumn,
				fmt.Sprintf("%s has no header row", path), nil)
		}
		if err != nil {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetParse, fmt.Sprintf("read header of %s", path), err)
		}

		idx := -1
		for i, name := range header {
			if strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) == column {
				idx = i
				break
			}
		}
		if idx < 0 {
			return benchErrors.NewDatasetError(benchErrors.CodeDatasetEmptyColumn,
				fmt.Sprintf("column %q not found in %s", column, path), nil).
				WithDetails(map[string]interface{}{"column": column})
		}

		for {
			record, err := r.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return benchErrors.NewDatasetError(benchErrors.CodeDatasetParse,
					fmt.Sprintf("read %s", path), err)
			}
			if idx >= len(record) {
				visit(nil)
				continue
			}
			visit(record[idx])
		}
	}
}
