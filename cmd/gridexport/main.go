package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/bekirdag/gridview/internal/config"
	"github.com/bekirdag/gridview/internal/grid"
	"github.com/bekirdag/gridview/internal/luasearch"
	"github.com/bekirdag/gridview/internal/source"
)

type filterFlags []string

func (f *filterFlags) String() string { return strings.Join(*f, ",") }

func (f *filterFlags) Set(v string) error {
	*f = append(*f, v)
	return nil
}

type options struct {
	configPath string
	path       string
	kind       string
	jsonPath   string
	query      string
	command    string
	search     string
	filters    filterFlags
	sort       string
	page       int
	pageSize   int
	format     string
	outPath    string
	script     string
	timeout    time.Duration
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "grid config file (.yaml or .toml)")
	flag.StringVar(&o.kind, "kind", "", "source kind: csv, json, sqlite or exec")
	flag.StringVar(&o.jsonPath, "json-path", "", "gjson path selecting the rows of a JSON document")
	flag.StringVar(&o.query, "query", "", "SQL query for sqlite sources")
	flag.StringVar(&o.command, "exec", "", "shell command whose output is loaded")
	flag.StringVar(&o.search, "search", "", "global search query")
	flag.Var(&o.filters, "filter", "column filter as name=query (repeatable)")
	flag.StringVar(&o.sort, "sort", "", "sort as name or name:desc")
	flag.IntVar(&o.page, "page", 0, "page to print (0 prints every filtered row)")
	flag.IntVar(&o.pageSize, "page-size", 0, "rows per page")
	flag.StringVar(&o.format, "format", "table", "output format: table or csv")
	flag.StringVar(&o.outPath, "out", "", "output path (optional, defaults to stdout)")
	flag.StringVar(&o.script, "lua", "", "Lua search script used for the global search")
	flag.DurationVar(&o.timeout, "timeout", 2*time.Minute, "load and search timeout")
	flag.Parse()
	o.path = flag.Arg(0)

	out := io.Writer(os.Stdout)
	if o.outPath != "" {
		f, err := os.Create(o.outPath)
		if err != nil {
			exit(fmt.Errorf("create output: %w", err))
		}
		defer f.Close()
		out = f
	}
	if err := run(o, out); err != nil {
		exit(err)
	}
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "gridexport: %v\n", err)
	os.Exit(1)
}

func run(o options, out io.Writer) error {
	file, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	spec := sourceSpec(file.Source, o)
	if spec.Path == "" && spec.Command == "" {
		return errors.New("missing source: pass a file, --exec or a config with a source section")
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	res, err := source.Load(ctx, spec)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	var opts []grid.Option
	if o.script != "" {
		provider, err := luasearch.Load(o.script)
		if err != nil {
			return err
		}
		defer provider.Close()
		file.AISearch.Enabled = true
		opts = append(opts, grid.WithAISearch(provider.Search))
	}
	g, err := buildGrid(ctx, file, res, o, opts...)
	if err != nil {
		return err
	}

	st := g.State()
	rows := g.API().FilteredRows()
	if o.page > 0 {
		rows = g.PageRows()
	}
	switch strings.ToLower(o.format) {
	case "csv":
		return grid.WriteCSV(out, st.Columns, rows)
	case "table", "":
		return writeTable(out, st, rows)
	}
	return fmt.Errorf("unknown format %q", o.format)
}

// buildGrid feeds res through a grid and applies the search, filter, sort and
// page flags in that order.
func buildGrid(ctx context.Context, file *config.File, res *source.Result, o options, opts ...grid.Option) (*grid.Grid, error) {
	cfg := file.GridConfig()
	g := grid.New(cfg, opts...)
	cols := file.GridColumns()
	if len(cols) == 0 {
		cols = res.GridColumns()
	}
	g.SetColumns(cols)
	hint := ""
	if o.pageSize > 0 {
		hint = fmt.Sprint(o.pageSize)
	}
	g.SetData(ctx, res.Rows, hint)

	ev := grid.Event{Kind: "cli"}
	if q := strings.TrimSpace(o.search); q != "" {
		g.GlobalSearch(ctx, ev, q)
	}
	for _, f := range o.filters {
		name, q, ok := strings.Cut(f, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("bad --filter %q, want name=query", f)
		}
		if _, found := g.State().Column(name); !found {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		g.Search(ctx, ev, name, q)
	}
	if o.sort != "" {
		name, dir, _ := strings.Cut(o.sort, ":")
		order := grid.SortAsc
		if dir != "" {
			order = grid.ParseSortOrder(dir)
			if order == grid.SortNone {
				return nil, fmt.Errorf("bad sort direction %q", dir)
			}
		}
		if !g.SortBy(ctx, ev, name, order) {
			return nil, fmt.Errorf("column %q cannot be sorted", name)
		}
	}
	if o.page > 0 && !g.SetPage(ev, o.page) && g.CurrentPage() != o.page {
		return nil, fmt.Errorf("page %d is out of range", o.page)
	}
	return g, nil
}

func writeTable(w io.Writer, st grid.State, rows []grid.Row) error {
	var cols []grid.Column
	for _, c := range st.VisibleColumns() {
		if !c.Action {
			cols = append(cols, c)
		}
	}
	if len(cols) == 0 {
		return errors.New("no columns to print")
	}
	table := tablewriter.NewWriter(w)
	header := make([]any, len(cols))
	for i, c := range cols {
		header[i] = c.Label()
	}
	table.Header(header...)
	for _, r := range rows {
		record := make([]string, len(cols))
		for i, c := range cols {
			record[i] = grid.DisplayText(r, c)
		}
		if err := table.Append(record); err != nil {
			return fmt.Errorf("append row: %w", err)
		}
	}
	return table.Render()
}

func sourceSpec(src config.Source, o options) source.Spec {
	spec := source.Spec{
		Kind:     source.Kind(strings.ToLower(src.Kind)),
		Path:     src.Path,
		Query:    src.Query,
		JSONPath: src.JSONPath,
		Command:  src.Command,
	}
	if o.path != "" {
		spec.Path, spec.Command = o.path, ""
		if spec.Kind == source.KindExec {
			spec.Kind = ""
		}
	}
	if o.command != "" {
		spec.Command = o.command
		spec.Kind = source.KindExec
	}
	if o.kind != "" {
		k := source.Kind(strings.ToLower(o.kind))
		if spec.Command != "" && k != source.KindExec {
			spec.Format = k
		} else {
			spec.Kind = k
		}
	}
	if o.jsonPath != "" {
		spec.JSONPath = o.jsonPath
	}
	if o.query != "" {
		spec.Query = o.query
	}
	return spec
}
