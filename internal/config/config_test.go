package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/bekirdag/gridview/internal/grid"
)

const yamlConfig = `
title: Orders
pageSize: 25
columnWidth: 12
export: all
exportPrefix: orders
features:
  cellEdit: true
  columnDrag: false
aiSearch:
  enabled: true
  minRowCount: 50
  script: search.lua
source:
  path: orders.csv
  watch: true
columns:
  - name: id
    fixed: true
  - name: total
    alias: Total
    sortOrder: desc
    formatting:
      type: currency
      format: EUR
  - name: customer
    editable: true
    concat:
      columns: [first, last]
      separator: " "
`

const tomlConfig = `
title = "Orders"
pageSize = 25
columnWidth = 12
export = "all"
exportPrefix = "orders"

[features]
cellEdit = true
columnDrag = false

[aiSearch]
enabled = true
minRowCount = 50
script = "search.lua"

[source]
path = "orders.csv"
watch = true

[[columns]]
name = "id"
fixed = true

[[columns]]
name = "total"
alias = "Total"
sortOrder = "desc"
formatting = { type = "currency", format = "EUR" }

[[columns]]
name = "customer"
editable = true
concat = { columns = ["first", "last"], separator = " " }
`

func TestParseFormatsAgree(t *testing.T) {
	fromYAML, err := Parse([]byte(yamlConfig), ".yaml")
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	fromTOML, err := Parse([]byte(tomlConfig), ".toml")
	if err != nil {
		t.Fatalf("toml: %v", err)
	}
	if !reflect.DeepEqual(fromYAML.GridConfig(), fromTOML.GridConfig()) {
		t.Fatalf("grid configs differ:\n%+v\n%+v", fromYAML.GridConfig(), fromTOML.GridConfig())
	}
	if !reflect.DeepEqual(fromYAML.GridColumns(), fromTOML.GridColumns()) {
		t.Fatalf("columns differ:\n%+v\n%+v", fromYAML.GridColumns(), fromTOML.GridColumns())
	}
	if fromYAML.Source != fromTOML.Source || fromYAML.AISearch != fromTOML.AISearch {
		t.Fatalf("source/ai differ: %+v %+v", fromYAML.Source, fromTOML.Source)
	}
}

func TestGridConfig(t *testing.T) {
	f, err := Parse([]byte(yamlConfig), ".yml")
	if err != nil {
		t.Fatal(err)
	}
	cfg := f.GridConfig()
	if cfg.PageSize != 25 || cfg.DefaultColumnWidth != 12 || cfg.Export != grid.ExportAll || cfg.ExportPrefix != "orders" {
		t.Fatalf("config = %+v", cfg)
	}
	if !cfg.CellEdit || cfg.ColumnDrag || !cfg.ColumnResize || !cfg.Sorting {
		t.Fatalf("feature switches = %+v", cfg)
	}
	if cfg.AISearch != (grid.AIOptions{Enabled: true, MinRowCount: 50}) {
		t.Fatalf("ai = %+v", cfg.AISearch)
	}

	cols := grid.ProcessColumns(f.GridColumns(), nil)
	if len(cols) != 3 || cols[0].Name != "id" || cols[1].SortOrder != grid.SortDesc {
		t.Fatalf("columns = %+v", cols)
	}
	if cols[1].Formatting == nil || cols[1].Formatting.Type != grid.CellCurrency {
		t.Fatalf("formatting = %+v", cols[1].Formatting)
	}
	if cols[2].Concat == nil || len(cols[2].Concat.Columns) != 2 {
		t.Fatalf("concat = %+v", cols[2].Concat)
	}
}

func TestDefaults(t *testing.T) {
	var nilFile *File
	if !reflect.DeepEqual(nilFile.GridConfig(), grid.DefaultConfig()) {
		t.Fatal("nil file should give defaults")
	}
	if nilFile.GridColumns() != nil {
		t.Fatal("nil file columns")
	}
	f, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(f.GridConfig(), grid.DefaultConfig()) {
		t.Fatal("missing file should give defaults")
	}
}

func TestExportModeParsing(t *testing.T) {
	tests := map[string]grid.ExportMode{
		"":        grid.ExportVisible,
		"visible": grid.ExportVisible,
		"ALL":     grid.ExportAll,
		"off":     grid.ExportNone,
	}
	for in, want := range tests {
		f := &File{Export: in}
		if got := f.GridConfig().Export; got != want {
			t.Errorf("export %q = %q, want %q", in, got, want)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "grid.yaml")
	order := 2
	in := &File{Title: "t", PageSize: 5, Columns: []Column{{Name: "a", Order: &order}}}
	if err := Save(in, path); err != nil {
		t.Fatal(err)
	}
	out, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip:\n%+v\n%+v", in, out)
	}

	bad := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(bad, []byte("pageSize = ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatal("expected parse error")
	}
}
