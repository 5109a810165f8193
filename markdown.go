package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"

	"github.com/bekirdag/gridview/internal/grid"
)

type markdownTheme string

const (
	markdownThemeAuto  markdownTheme = "auto"
	markdownThemeDark  markdownTheme = "dark"
	markdownThemeLight markdownTheme = "light"
)

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownErr      error
	markdownStyle    = markdownThemeAuto
	markdownWordWrap = 80
)

// renderMarkdown returns Glamour output for content, or content unchanged
// when no renderer can be built.
func renderMarkdown(content string) string {
	renderer := ensureMarkdownRenderer()
	if renderer == nil {
		return content
	}
	out, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return out
}

func ensureMarkdownRenderer() *glamour.TermRenderer {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if markdownRenderer != nil && markdownErr == nil {
		return markdownRenderer
	}
	options := []glamour.TermRendererOption{glamour.WithWordWrap(markdownWordWrap)}
	switch markdownStyle {
	case markdownThemeLight:
		options = append(options, glamour.WithStandardStyle("light"))
	case markdownThemeDark:
		options = append(options, glamour.WithStandardStyle("dark"))
	default:
		options = append(options, glamour.WithAutoStyle())
	}
	markdownRenderer, markdownErr = glamour.NewTermRenderer(options...)
	if markdownErr != nil {
		return nil
	}
	return markdownRenderer
}

func setMarkdownWordWrap(width int) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if width < 0 {
		width = 0
	}
	if markdownWordWrap != width {
		markdownWordWrap = width
		markdownRenderer = nil
		markdownErr = nil
	}
}

func setMarkdownTheme(theme markdownTheme) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if theme == "" {
		theme = markdownThemeAuto
	}
	if markdownStyle != theme {
		markdownStyle = theme
		markdownRenderer = nil
		markdownErr = nil
	}
}

func markdownThemeFromString(value string) markdownTheme {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dark":
		return markdownThemeDark
	case "light":
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

func nextMarkdownTheme(theme markdownTheme) markdownTheme {
	switch theme {
	case markdownThemeAuto:
		return markdownThemeDark
	case markdownThemeDark:
		return markdownThemeLight
	default:
		return markdownThemeAuto
	}
}

// helpMarkdown documents the key bindings, leaving out features the grid
// config switched off.
func helpMarkdown(k keyMap, cfg grid.Config) string {
	var b strings.Builder
	b.WriteString("# gridview\n\n")
	section := func(title string, bindings ...key.Binding) {
		var lines []string
		for _, binding := range bindings {
			if !binding.Enabled() {
				continue
			}
			h := binding.Help()
			lines = append(lines, fmt.Sprintf("| `%s` | %s |", h.Key, h.Desc))
		}
		if len(lines) == 0 {
			return
		}
		b.WriteString("## " + title + "\n\n| Key | Action |\n| --- | --- |\n")
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteString("\n\n")
	}
	section("Navigation", k.up, k.down, k.left, k.right, k.nextPage, k.prevPage, k.firstPage, k.lastPage, k.pageSize)
	if cfg.GlobalSearch || cfg.ColumnSearch {
		section("Search", k.globalSearch, k.columnSearch, k.clearSearch)
	}
	if cfg.Sorting {
		section("Sort", k.sort)
	}
	section("Columns", k.jumpColumn, k.hideColumn, k.widen, k.narrow, k.moveLeft, k.moveRight)
	if cfg.RowSelection {
		section("Selection", k.toggleRow, k.selectPage, k.copyRows)
	}
	if cfg.CellEdit {
		section("Editing", k.edit)
	}
	section("Grid", k.detail, k.export, k.reset, k.reload, k.theme, k.toggleHelp, k.quit)
	b.WriteString("Drag a header sideways to move a column. Drag the `│` after a header to resize it.\n")
	return b.String()
}
