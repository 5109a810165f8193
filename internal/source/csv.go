package source

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/errors"

	"github.com/bekirdag/gridview/internal/grid"
)

func LoadCSVFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Newf("open csv %s", path).Wrap(err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads a header line followed by records. Short records leave the
// missing cells out of the row; blank header cells are named column_N.
func ReadCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Result{}, nil
	}
	if err != nil {
		return nil, errors.Newf("read csv header").Wrap(err)
	}
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if name == "" {
			name = "column_" + strconv.Itoa(i+1)
		}
		if n := seen[name]; n > 0 {
			seen[name] = n + 1
			name = name + "_" + strconv.Itoa(n+1)
		} else {
			seen[name] = 1
		}
		columns[i] = name
	}

	res := &Result{Columns: columns}
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Newf("read csv record %d", line).Wrap(err)
		}
		row := make(grid.Row, len(columns))
		for i, v := range record {
			if i < len(columns) {
				row[columns[i]] = v
			}
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}
