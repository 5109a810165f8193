package main

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/bekirdag/gridview/internal/grid"
)

type keyMap struct {
	up, down, left, right                   key.Binding
	nextPage, prevPage, firstPage, lastPage key.Binding
	pageSize                                key.Binding
	globalSearch, columnSearch, clearSearch key.Binding
	sort                                    key.Binding
	jumpColumn, hideColumn                  key.Binding
	widen, narrow, moveLeft, moveRight      key.Binding
	toggleRow, selectPage, copyRows         key.Binding
	edit                                    key.Binding
	detail                                  key.Binding
	export, reset, reload, theme            key.Binding
	toggleHelp, quit                        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "row up"),
		),
		down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "row down"),
		),
		left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "column left"),
		),
		right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "column right"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("pgdown", "n"),
			key.WithHelp("pgdn/n", "next page"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("pgup", "p"),
			key.WithHelp("pgup/p", "previous page"),
		),
		firstPage: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("home/g", "first page"),
		),
		lastPage: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("end/G", "last page"),
		),
		pageSize: key.NewBinding(
			key.WithKeys("#"),
			key.WithHelp("#", "set page size"),
		),
		globalSearch: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search all columns"),
		),
		columnSearch: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter column"),
		),
		clearSearch: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "clear column filter"),
		),
		sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		jumpColumn: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "jump to column"),
		),
		hideColumn: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "show/hide column"),
		),
		widen: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "widen column"),
		),
		narrow: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "narrow column"),
		),
		moveLeft: key.NewBinding(
			key.WithKeys("<", ","),
			key.WithHelp("<", "move column left"),
		),
		moveRight: key.NewBinding(
			key.WithKeys(">", "."),
			key.WithHelp(">", "move column right"),
		),
		toggleRow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select row"),
		),
		selectPage: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select page"),
		),
		copyRows: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy selected rows"),
		),
		edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit cell"),
		),
		detail: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "row details"),
		),
		export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export csv"),
		),
		reset: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "reset grid"),
		),
		reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload source"),
		),
		theme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "cycle help theme"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// applyConfig disables bindings for features the grid has switched off.
func (k *keyMap) applyConfig(cfg grid.Config) {
	k.globalSearch.SetEnabled(cfg.GlobalSearch)
	k.columnSearch.SetEnabled(cfg.ColumnSearch)
	k.clearSearch.SetEnabled(cfg.ColumnSearch)
	k.sort.SetEnabled(cfg.Sorting)
	k.widen.SetEnabled(cfg.ColumnResize)
	k.narrow.SetEnabled(cfg.ColumnResize)
	k.moveLeft.SetEnabled(cfg.ColumnDrag)
	k.moveRight.SetEnabled(cfg.ColumnDrag)
	k.toggleRow.SetEnabled(cfg.RowSelection)
	k.selectPage.SetEnabled(cfg.RowSelection)
	k.copyRows.SetEnabled(cfg.RowSelection)
	k.edit.SetEnabled(cfg.CellEdit)
	k.export.SetEnabled(cfg.Export != grid.ExportNone)
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.globalSearch,
		k.sort,
		k.nextPage,
		k.prevPage,
		k.edit,
		k.toggleHelp,
		k.quit,
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.left, k.right},
		{k.nextPage, k.prevPage, k.firstPage, k.lastPage, k.pageSize},
		{k.globalSearch, k.columnSearch, k.clearSearch, k.sort},
		{k.jumpColumn, k.hideColumn, k.widen, k.narrow, k.moveLeft, k.moveRight},
		{k.toggleRow, k.selectPage, k.copyRows, k.edit, k.detail},
		{k.export, k.reset, k.reload, k.theme, k.toggleHelp, k.quit},
	}
}
