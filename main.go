package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"

	"github.com/bekirdag/gridview/internal/config"
	"github.com/bekirdag/gridview/internal/luasearch"
	"github.com/bekirdag/gridview/internal/source"
)

func main() {
	configPath := flag.String("config", "", "Grid config file (.yaml or .toml)")
	theme := flag.String("theme", "", "Help rendering theme: auto, light, or dark")
	debug := flag.Bool("debug", false, "Write a debug log to gridview-debug.log")
	kind := flag.String("kind", "", "Source kind: csv, json, sqlite or exec (default: from extension)")
	jsonPath := flag.String("json-path", "", "gjson path selecting the rows of a JSON document")
	query := flag.String("query", "", "SQL query for sqlite sources")
	command := flag.String("exec", "", "Shell command whose output is loaded")
	watch := flag.Bool("watch", false, "Reload when the source file changes")
	pageSize := flag.String("page-size", "", "Rows per page")
	script := flag.String("lua", "", "Lua search script used for the global search")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: gridview [flags] [file]\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(runOptions{
		configPath: *configPath,
		theme:      *theme,
		debug:      *debug,
		kind:       *kind,
		jsonPath:   *jsonPath,
		query:      *query,
		command:    *command,
		watch:      *watch,
		pageSize:   *pageSize,
		script:     *script,
		path:       flag.Arg(0),
	}); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath, theme                    string
	debug, watch                         bool
	kind, jsonPath, query, command, path string
	pageSize, script                     string
}

func run(o runOptions) error {
	file, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	logger := ll.New("gridview").Handler(lh.NewTextHandler(io.Discard))
	logger.Disable()
	if o.debug || file.Debug {
		f, err := tea.LogToFile("gridview-debug.log", "gridview")
		if err != nil {
			return err
		}
		defer f.Close()
		logger = ll.New("gridview").Handler(lh.NewTextHandler(f))
		logger.Enable()
	}

	spec := sourceSpec(file.Source, o)
	dataset := spec.Path
	if spec.Command != "" {
		dataset = spec.Command
	}

	var provider *luasearch.Provider
	scriptPath := o.script
	if scriptPath == "" && file.AISearch.Enabled {
		scriptPath = file.AISearch.Script
	}
	if scriptPath != "" {
		provider, err = luasearch.Load(scriptPath)
		if err != nil {
			return err
		}
		defer provider.Close()
		file.AISearch.Enabled = true
	}

	dir := resolveConfigDir()
	layouts, err := openLayoutStore(dir)
	if err != nil {
		logger.Warnf("layout store unavailable: %v", err)
	}
	defer layouts.Close()
	events := newEventLogger(filepath.Join(dir, "events.ndjson"), newEventSessionID(), resolveEventUserID())

	m := initialModel(modelOptions{
		file:     file,
		spec:     spec,
		dataset:  dataset,
		pageSize: strings.TrimSpace(o.pageSize),
		theme:    o.theme,
		watch:    o.watch || file.Source.Watch,
		provider: provider,
		logger:   logger,
		layouts:  layouts,
		events:   events,
	})
	_, err = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	return err
}

// sourceSpec merges the command line over the config file's source section.
func sourceSpec(src config.Source, o runOptions) source.Spec {
	spec := source.Spec{
		Kind:     source.Kind(strings.ToLower(src.Kind)),
		Path:     src.Path,
		Query:    src.Query,
		JSONPath: src.JSONPath,
		Command:  src.Command,
	}
	if o.path != "" {
		spec.Path = o.path
		spec.Command = ""
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
	if spec.Command != "" && spec.Format == "" && spec.JSONPath != "" {
		spec.Format = source.KindJSON
	}
	return spec
}
