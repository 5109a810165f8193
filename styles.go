package main

import "github.com/charmbracelet/lipgloss"

var palette = struct {
	text, textMuted, border, accent lipgloss.AdaptiveColor
	selection, marked, warning      lipgloss.AdaptiveColor
}{
	text:      lipgloss.AdaptiveColor{Light: "#1f2328", Dark: "#e6edf3"},
	textMuted: lipgloss.AdaptiveColor{Light: "#656d76", Dark: "#7d8590"},
	border:    lipgloss.AdaptiveColor{Light: "#d0d7de", Dark: "#30363d"},
	accent:    lipgloss.AdaptiveColor{Light: "#0969da", Dark: "#58a6ff"},
	selection: lipgloss.AdaptiveColor{Light: "#ddf4ff", Dark: "#1f3a5f"},
	marked:    lipgloss.AdaptiveColor{Light: "#fff8c5", Dark: "#3b2e00"},
	warning:   lipgloss.AdaptiveColor{Light: "#9a6700", Dark: "#d29922"},
}

type styles struct {
	app, topBar, topStatus           lipgloss.Style
	toolbar, toolbarLabel            lipgloss.Style
	header, headerActive, headerDrag lipgloss.Style
	cell, cellCursor, cellEditing    lipgloss.Style
	rowMarked, rowHover              lipgloss.Style
	pageLink, pageActive, pageOff    lipgloss.Style
	statusBar, statusSeg, statusHint lipgloss.Style
	warning                          lipgloss.Style
	cmdOverlay, cmdPrompt, cmdHint   lipgloss.Style
	match                            lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()

	return styles{
		app:          base,
		topBar:       base.Bold(true).Padding(0, 1),
		topStatus:    base.Foreground(palette.textMuted),
		toolbar:      base.Padding(0, 1),
		toolbarLabel: base.Foreground(palette.textMuted),
		header: base.Bold(true).
			Foreground(palette.textMuted).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(palette.border),
		headerActive: base.Bold(true).
			Foreground(palette.accent).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(palette.accent),
		headerDrag: base.Bold(true).
			Reverse(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(palette.accent),
		cell:        base.Foreground(palette.text),
		cellCursor:  base.Foreground(palette.text).Background(palette.selection),
		cellEditing: base.Underline(true).Foreground(palette.accent),
		rowMarked:   base.Background(palette.marked),
		rowHover:    base.Faint(true),
		pageLink:    base.Padding(0, 1),
		pageActive:  base.Padding(0, 1).Bold(true).Reverse(true),
		pageOff:     base.Padding(0, 1).Faint(true),
		statusBar:   base.Padding(0, 1),
		statusSeg:   base.Padding(0, 1).MarginRight(1),
		statusHint:  base.Foreground(palette.textMuted),
		warning:     base.Foreground(palette.warning),
		cmdOverlay:  base.Border(lipgloss.RoundedBorder()).BorderForeground(palette.border).Padding(1, 2),
		cmdPrompt:   base.Bold(true),
		cmdHint:     base.Faint(true),
		match:       base.Foreground(palette.accent).Bold(true),
	}
}
