package source

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/olekukonko/errors"
	"github.com/tidwall/gjson"

	"github.com/bekirdag/gridview/internal/grid"
)

func LoadJSONFile(path, jsonPath string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Newf("read json %s", path).Wrap(err)
	}
	if strings.EqualFold(filepath.Ext(path), ".ndjson") {
		return ReadJSONLines(data)
	}
	return ReadJSON(data, jsonPath)
}

// ReadJSON extracts an array of objects at jsonPath (a gjson path; empty
// means the document root). A single object is treated as one row.
// Columns are collected in first-seen order.
func ReadJSON(data []byte, jsonPath string) (*Result, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid json document")
	}
	var value gjson.Result
	if strings.TrimSpace(jsonPath) == "" {
		value = gjson.ParseBytes(data)
	} else {
		value = gjson.GetBytes(data, jsonPath)
		if !value.Exists() {
			return nil, errors.Newf("json path %q matched nothing", jsonPath)
		}
	}

	var items []gjson.Result
	switch {
	case value.IsArray():
		items = value.Array()
	case value.IsObject():
		items = []gjson.Result{value}
	default:
		return nil, errors.Newf("json path %q is not an array of objects", jsonPath)
	}

	res := &Result{}
	seen := map[string]bool{}
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		res.Rows = append(res.Rows, objectRow(item, res, seen))
	}
	return res, nil
}

// ReadJSONLines reads one object per line, skipping blank lines.
func ReadJSONLines(data []byte) (*Result, error) {
	res := &Result{}
	seen := map[string]bool{}
	for n, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if !gjson.ValidBytes(line) {
			return nil, errors.Newf("invalid json on line %d", n+1)
		}
		item := gjson.ParseBytes(line)
		if !item.IsObject() {
			continue
		}
		res.Rows = append(res.Rows, objectRow(item, res, seen))
	}
	return res, nil
}

func objectRow(item gjson.Result, res *Result, seen map[string]bool) grid.Row {
	row := grid.Row{}
	item.ForEach(func(key, val gjson.Result) bool {
		name := key.String()
		if !seen[name] {
			seen[name] = true
			res.Columns = append(res.Columns, name)
		}
		row[name] = val.Value()
		return true
	})
	return row
}
