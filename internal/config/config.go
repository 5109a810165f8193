// Package config loads grid settings from a YAML or TOML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bekirdag/gridview/internal/grid"
)

type Features struct {
	ColumnSearch *bool `yaml:"columnSearch,omitempty" toml:"columnSearch,omitempty"`
	ColumnResize *bool `yaml:"columnResize,omitempty" toml:"columnResize,omitempty"`
	ColumnDrag   *bool `yaml:"columnDrag,omitempty" toml:"columnDrag,omitempty"`
	GlobalSearch *bool `yaml:"globalSearch,omitempty" toml:"globalSearch,omitempty"`
	CellEdit     *bool `yaml:"cellEdit,omitempty" toml:"cellEdit,omitempty"`
	Sorting      *bool `yaml:"sorting,omitempty" toml:"sorting,omitempty"`
	RowSelection *bool `yaml:"rowSelection,omitempty" toml:"rowSelection,omitempty"`
	Toolbar      *bool `yaml:"toolbar,omitempty" toml:"toolbar,omitempty"`
	Footer       *bool `yaml:"footer,omitempty" toml:"footer,omitempty"`
}

type AISearch struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	MinRowCount int    `yaml:"minRowCount,omitempty" toml:"minRowCount,omitempty"`
	Script      string `yaml:"script,omitempty" toml:"script,omitempty"`
}

type Concat struct {
	Columns   []string `yaml:"columns" toml:"columns"`
	Separator string   `yaml:"separator,omitempty" toml:"separator,omitempty"`
}

type Format struct {
	Type   string `yaml:"type" toml:"type"`
	Format string `yaml:"format,omitempty" toml:"format,omitempty"`
}

// Column mirrors grid.Column in file form.
type Column struct {
	Name      string   `yaml:"name" toml:"name"`
	Alias     string   `yaml:"alias,omitempty" toml:"alias,omitempty"`
	Width     int      `yaml:"width,omitempty" toml:"width,omitempty"`
	Order     *int     `yaml:"order,omitempty" toml:"order,omitempty"`
	Fixed     bool     `yaml:"fixed,omitempty" toml:"fixed,omitempty"`
	Hidden    bool     `yaml:"hidden,omitempty" toml:"hidden,omitempty"`
	Hideable  bool     `yaml:"hideable,omitempty" toml:"hideable,omitempty"`
	Editable  bool     `yaml:"editable,omitempty" toml:"editable,omitempty"`
	Resizable *bool    `yaml:"resizable,omitempty" toml:"resizable,omitempty"`
	Sortable  *bool    `yaml:"sortable,omitempty" toml:"sortable,omitempty"`
	Draggable *bool    `yaml:"draggable,omitempty" toml:"draggable,omitempty"`
	SortOrder string   `yaml:"sortOrder,omitempty" toml:"sortOrder,omitempty"`
	Concat    *Concat  `yaml:"concat,omitempty" toml:"concat,omitempty"`
	Format    *Format  `yaml:"formatting,omitempty" toml:"formatting,omitempty"`
	Values    []string `yaml:"values,omitempty" toml:"values,omitempty"`
}

// Source describes where rows come from. Kind is csv, json, sqlite or exec;
// empty means guess from the path extension.
type Source struct {
	Kind     string `yaml:"kind,omitempty" toml:"kind,omitempty"`
	Path     string `yaml:"path,omitempty" toml:"path,omitempty"`
	Query    string `yaml:"query,omitempty" toml:"query,omitempty"`
	JSONPath string `yaml:"jsonPath,omitempty" toml:"jsonPath,omitempty"`
	Command  string `yaml:"command,omitempty" toml:"command,omitempty"`
	Watch    bool   `yaml:"watch,omitempty" toml:"watch,omitempty"`
}

// File is the on-disk grid configuration.
type File struct {
	Title        string   `yaml:"title,omitempty" toml:"title,omitempty"`
	PageSize     int      `yaml:"pageSize,omitempty" toml:"pageSize,omitempty"`
	ColumnWidth  int      `yaml:"columnWidth,omitempty" toml:"columnWidth,omitempty"`
	Export       string   `yaml:"export,omitempty" toml:"export,omitempty"`
	ExportPrefix string   `yaml:"exportPrefix,omitempty" toml:"exportPrefix,omitempty"`
	Debug        bool     `yaml:"debug,omitempty" toml:"debug,omitempty"`
	Features     Features `yaml:"features,omitempty" toml:"features,omitempty"`
	AISearch     AISearch `yaml:"aiSearch,omitempty" toml:"aiSearch,omitempty"`
	Source       Source   `yaml:"source,omitempty" toml:"source,omitempty"`
	Columns      []Column `yaml:"columns,omitempty" toml:"columns,omitempty"`
}

func Default() *File {
	return &File{}
}

// Load reads path, picking the decoder from the extension (.toml, otherwise
// YAML). A missing file yields the defaults.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(data, filepath.Ext(path))
}

// Parse decodes data as TOML when ext is ".toml" and as YAML otherwise.
func Parse(data []byte, ext string) (*File, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func Save(cfg *File, path string) error {
	if cfg == nil {
		cfg = Default()
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func pick(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// GridConfig merges the file onto grid.DefaultConfig.
func (f *File) GridConfig() grid.Config {
	cfg := grid.DefaultConfig()
	if f == nil {
		return cfg
	}
	cfg.PageSize = f.PageSize
	if f.ColumnWidth > 0 {
		cfg.DefaultColumnWidth = f.ColumnWidth
	}
	switch strings.ToLower(strings.TrimSpace(f.Export)) {
	case "":
	case "all":
		cfg.Export = grid.ExportAll
	case "visible":
		cfg.Export = grid.ExportVisible
	default:
		cfg.Export = grid.ExportNone
	}
	if f.ExportPrefix != "" {
		cfg.ExportPrefix = f.ExportPrefix
	}
	cfg.Debug = f.Debug

	ft := f.Features
	cfg.ColumnSearch = pick(ft.ColumnSearch, cfg.ColumnSearch)
	cfg.ColumnResize = pick(ft.ColumnResize, cfg.ColumnResize)
	cfg.ColumnDrag = pick(ft.ColumnDrag, cfg.ColumnDrag)
	cfg.GlobalSearch = pick(ft.GlobalSearch, cfg.GlobalSearch)
	cfg.CellEdit = pick(ft.CellEdit, cfg.CellEdit)
	cfg.Sorting = pick(ft.Sorting, cfg.Sorting)
	cfg.RowSelection = pick(ft.RowSelection, cfg.RowSelection)
	cfg.ShowToolbar = pick(ft.Toolbar, cfg.ShowToolbar)
	cfg.ShowFooter = pick(ft.Footer, cfg.ShowFooter)

	cfg.AISearch = grid.AIOptions{Enabled: f.AISearch.Enabled, MinRowCount: f.AISearch.MinRowCount}
	return cfg
}

// GridColumns converts the configured columns. Nil means the columns should
// come from the data source.
func (f *File) GridColumns() []grid.Column {
	if f == nil || len(f.Columns) == 0 {
		return nil
	}
	out := make([]grid.Column, 0, len(f.Columns))
	for _, c := range f.Columns {
		col := grid.Column{
			Name:      c.Name,
			Alias:     c.Alias,
			Width:     c.Width,
			Order:     c.Order,
			Fixed:     c.Fixed,
			Hidden:    c.Hidden,
			Hideable:  c.Hideable,
			Editable:  c.Editable,
			Resizable: c.Resizable,
			Sortable:  c.Sortable,
			Draggable: c.Draggable,
			SortOrder: grid.ParseSortOrder(c.SortOrder),
			Values:    c.Values,
		}
		if c.Concat != nil && len(c.Concat.Columns) > 0 {
			col.Concat = &grid.ConcatColumns{Columns: c.Concat.Columns, Separator: c.Concat.Separator}
		}
		if c.Format != nil {
			col.Formatting = &grid.Formatting{Type: grid.ParseCellType(c.Format.Type), Format: c.Format.Format}
		}
		out = append(out, col)
	}
	return out
}
