// Package source loads grid rows from files, databases and commands.
package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/olekukonko/errors"

	"github.com/bekirdag/gridview/internal/grid"
)

type Kind string

const (
	KindCSV    Kind = "csv"
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
	KindExec   Kind = "exec"
)

// Spec selects a loader and its arguments.
type Spec struct {
	Kind     Kind
	Path     string
	Query    string // sqlite
	JSONPath string // json, exec with json output
	Command  string // exec
	Format   Kind   // output format of exec: csv (default) or json
}

// Result is a loaded table. Columns keeps the source order.
type Result struct {
	Columns []string
	Rows    []grid.Row
}

// DetectKind guesses the loader from a file extension.
func DetectKind(path string) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".ndjson":
		return KindJSON
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	default:
		return KindCSV
	}
}

// Load dispatches spec to its loader.
func Load(ctx context.Context, spec Spec) (*Result, error) {
	kind := spec.Kind
	if kind == "" {
		if spec.Command != "" {
			kind = KindExec
		} else {
			kind = DetectKind(spec.Path)
		}
	}
	switch kind {
	case KindCSV:
		return LoadCSVFile(spec.Path)
	case KindJSON:
		return LoadJSONFile(spec.Path, spec.JSONPath)
	case KindSQLite:
		return LoadSQLite(ctx, spec.Path, spec.Query)
	case KindExec:
		return LoadCommand(ctx, spec.Command, spec.Format, spec.JSONPath)
	}
	return nil, errors.Newf("unknown source kind %q", kind)
}

// GridColumns builds plain column definitions for the header.
func (r *Result) GridColumns() []grid.Column {
	if r == nil {
		return nil
	}
	out := make([]grid.Column, 0, len(r.Columns))
	for _, name := range r.Columns {
		out = append(out, grid.Column{Name: name})
	}
	return out
}
