package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/ll"
	"github.com/sahilm/fuzzy"

	"github.com/bekirdag/gridview/internal/config"
	"github.com/bekirdag/gridview/internal/grid"
	"github.com/bekirdag/gridview/internal/luasearch"
	"github.com/bekirdag/gridview/internal/source"
)

const (
	searchDebounce = 250 * time.Millisecond
	searchTimeout  = 30 * time.Second
	loadTimeout    = 2 * time.Minute
	resizeStep     = 2
	maxJumpMatches = 6
	minGridHeight  = 3
)

type inputMode int

const (
	inputNone inputMode = iota
	inputGlobalSearch
	inputColumnSearch
	inputJumpColumn
	inputEdit
	inputPageSize
)

// modelOptions is everything main resolved before the program starts.
type modelOptions struct {
	file     *config.File
	spec     source.Spec
	dataset  string
	pageSize string
	theme    string
	watch    bool
	provider *luasearch.Provider
	logger   *ll.Logger
	layouts  *layoutStore
	events   *eventLogger
}

type searchTickMsg struct {
	token  int
	column string
	query  string
}

type searchDoneMsg struct {
	token int
	took  time.Duration
}

type sortDoneMsg struct {
	column string
	ok     bool
	took   time.Duration
}

type fileChangedMsg struct{}

type watchErrMsg struct {
	err error
}

type exportDoneMsg struct {
	path string
	rows int
	err  error
}

type clipboardDoneMsg struct {
	rows int
	err  error
}

type model struct {
	width  int
	height int

	styles   styles
	keys     keyMap
	help     help.Model
	helpView viewport.Model
	showHelp bool
	spinner  spinner.Model

	// showDetail puts the cursor row in helpView instead of the key help.
	showDetail bool

	markdownTheme markdownTheme

	opts  modelOptions
	log   *ll.Logger
	grid  *grid.Grid
	view  gridView
	loads *loadManager

	loading  bool
	loadedAt time.Time
	loadTook time.Duration

	searching   bool
	searchToken int

	inputActive  bool
	inputMode    inputMode
	inputField   textinput.Model
	inputPrompt  string
	inputColumn  string
	jumpMatches  []jumpCandidate
	jumpIndex    int
	editOriginal any

	gate          grid.DragGate
	pressOnHeader bool
	pressRegion   headerRegion
	dragOver      int
	hoverIndex    int

	events  chan gridEventMsg
	watcher *source.Watcher

	uiConfig     *uiConfig
	uiConfigPath string

	toastMessage string
	toastExpires time.Time
	lastEvent    string
}

type jumpCandidate struct {
	name    string
	label   string
	hidden  bool
	matched []int
}

func initialModel(opts modelOptions) *model {
	if opts.file == nil {
		opts.file = config.Default()
	}
	cfg := opts.file.GridConfig()

	m := &model{
		opts:       opts,
		log:        opts.logger,
		styles:     newStyles(),
		keys:       newKeyMap(),
		hoverIndex: -1,
		events:     make(chan gridEventMsg, 64),
		loads:      newLoadManager(),
	}
	if m.log == nil {
		m.log = ll.New("gridview")
		m.log.Disable()
	}
	m.keys.applyConfig(cfg)

	m.help = help.New()
	m.help.ShortSeparator = " │ "
	m.help.Styles.ShortKey = m.styles.statusHint.Bold(true)
	m.help.Styles.ShortDesc = m.styles.statusHint
	m.help.Styles.ShortSeparator = m.styles.statusHint
	m.help.Styles.FullKey = m.styles.statusHint.Bold(true)
	m.help.Styles.FullDesc = m.styles.statusHint

	m.helpView = viewport.New(80, 20)
	m.inputField = textinput.New()
	m.inputField.Prompt = "> "
	m.inputField.CharLimit = 256
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.spinner.Style = m.styles.statusHint.Bold(true)
	m.gate = grid.DragGate{Threshold: 2}

	m.uiConfig, m.uiConfigPath = loadUIConfig()
	theme := strings.TrimSpace(opts.theme)
	if theme == "" && m.uiConfig != nil {
		theme = m.uiConfig.Theme
	}
	m.markdownTheme = markdownThemeFromString(theme)
	setMarkdownTheme(m.markdownTheme)
	if m.opts.pageSize == "" && m.uiConfig != nil && m.uiConfig.PageSize > 0 {
		m.opts.pageSize = strconv.Itoa(m.uiConfig.PageSize)
	}

	gridOpts := []grid.Option{
		grid.WithHooks(gridHooks(opts.events, m.events)),
		grid.WithLogger(m.log),
	}
	if opts.provider != nil {
		gridOpts = append(gridOpts, grid.WithAISearch(opts.provider.Search))
	}
	m.grid = grid.New(cfg, gridOpts...)
	m.view.gutter = cfg.RowSelection
	if cols := opts.file.GridColumns(); len(cols) > 0 {
		m.grid.SetColumns(m.withSavedLayout(cols))
	}
	opts.events.SetDataset(opts.dataset)
	return m
}

func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, waitForGridEvent(m.events)}
	if cmd := m.loadCmd("load"); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if cmd := m.startWatch(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if tick, ok := msg.(spinner.TickMsg); ok {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutView()
		setMarkdownWordWrap(max(20, msg.Width-6))
		m.refreshHelp()
	case loadMsg:
		switch msg := msg.(type) {
		case loadStartedMsg:
			m.loading = true
			m.log.Debugf("loading %s", msg.Title)
		case loadFinishedMsg:
			m.applyLoad(msg)
		}
		if cmd := m.loads.Handle(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
		m.loading = m.loads.Running()
	case gridEventMsg:
		m.handleGridEvent(msg)
		cmds = append(cmds, waitForGridEvent(m.events))
	case searchTickMsg:
		if msg.token == m.searchToken {
			cmds = append(cmds, m.runSearch(msg))
		}
	case searchDoneMsg:
		if msg.token == m.searchToken {
			m.searching = false
			m.log.Debugf("search finished in %s", msg.took)
		}
		m.clampCursor()
	case sortDoneMsg:
		if !msg.ok {
			m.setToast("Column is not sortable", 0)
		} else {
			m.log.Debugf("sort by %s finished in %s", msg.column, msg.took)
		}
		m.clampCursor()
	case fileChangedMsg:
		m.setToast("Source changed, reloading", 0)
		if cmd := m.loadCmd("reload"); cmd != nil {
			cmds = append(cmds, cmd)
		}
		cmds = append(cmds, m.waitForChange())
	case watchErrMsg:
		m.setToast(fmt.Sprintf("Watch error: %v", msg.err), 0)
		cmds = append(cmds, m.waitForChange())
	case exportDoneMsg:
		if msg.err != nil {
			m.setToast(fmt.Sprintf("Export failed: %v", msg.err), 0)
		} else {
			m.setToast(fmt.Sprintf("Exported %s rows to %s", humanize.Comma(int64(msg.rows)), msg.path), 0)
		}
	case clipboardDoneMsg:
		if msg.err != nil {
			m.setToast(fmt.Sprintf("Copy failed: %v", msg.err), 0)
		} else {
			m.setToast(fmt.Sprintf("Copied %d rows", msg.rows), 0)
		}
	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.inputActive {
			cmd = m.updateInput(msg)
		} else {
			cmd = m.handleKey(msg)
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if m.inputActive {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var cmd tea.Cmd
			m.inputField, cmd = m.inputField.Update(msg)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.toggleHelp), key.Matches(msg, m.keys.detail), msg.String() == "esc":
			m.showHelp = false
			m.showDetail = false
			return nil
		case key.Matches(msg, m.keys.quit):
			return m.quit()
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return cmd
	}

	ev := grid.Event{Kind: "key", Source: msg.String()}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m.quit()
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
		m.refreshHelp()
	case key.Matches(msg, m.keys.detail):
		if _, ok := m.cursorRow(); ok {
			m.showHelp = true
			m.showDetail = true
			m.refreshHelp()
			m.helpView.GotoTop()
		}
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.left):
		m.view.cursorCol--
		m.clampCursor()
	case key.Matches(msg, m.keys.right):
		m.view.cursorCol++
		m.clampCursor()
	case key.Matches(msg, m.keys.nextPage):
		m.changePage(m.grid.NextPage(ev))
	case key.Matches(msg, m.keys.prevPage):
		m.changePage(m.grid.PrevPage(ev))
	case key.Matches(msg, m.keys.firstPage):
		m.changePage(m.grid.SetPage(ev, 1))
	case key.Matches(msg, m.keys.lastPage):
		m.changePage(m.grid.SetPage(ev, m.grid.State().NoOfPages))
	case key.Matches(msg, m.keys.pageSize):
		current := ""
		if n := m.grid.Config().PageSize; n > 0 {
			current = strconv.Itoa(n)
		}
		return m.openInput(inputPageSize, "Rows per page (0 shows all)", current, "")
	case key.Matches(msg, m.keys.globalSearch):
		return m.openInput(inputGlobalSearch, "Search all columns", m.grid.State().GlobalQuery, "")
	case key.Matches(msg, m.keys.columnSearch):
		col, ok := m.cursorColumn()
		if !ok {
			return nil
		}
		return m.openInput(inputColumnSearch, "Filter "+col.Label(), m.grid.State().ColumnQueries[col.Name], col.Name)
	case key.Matches(msg, m.keys.clearSearch):
		col, ok := m.cursorColumn()
		if !ok {
			return nil
		}
		m.searchToken++
		return m.runSearch(searchTickMsg{token: m.searchToken, column: col.Name})
	case key.Matches(msg, m.keys.sort):
		col, ok := m.cursorColumn()
		if !ok {
			return nil
		}
		return m.sortColumn(ev, col.Name)
	case key.Matches(msg, m.keys.jumpColumn):
		return m.openInput(inputJumpColumn, "Jump to column", "", "")
	case key.Matches(msg, m.keys.hideColumn):
		if col, ok := m.cursorColumn(); ok {
			if !m.grid.ToggleHidden(col.Name) {
				m.setToast(col.Label()+" cannot be hidden", 0)
				return nil
			}
			m.setToast("Hid "+col.Label(), 0)
			m.saveLayout()
			m.clampCursor()
		}
	case key.Matches(msg, m.keys.widen):
		m.resizeBy(ev, resizeStep)
	case key.Matches(msg, m.keys.narrow):
		m.resizeBy(ev, -resizeStep)
	case key.Matches(msg, m.keys.moveLeft):
		m.moveColumn(-1)
	case key.Matches(msg, m.keys.moveRight):
		m.moveColumn(1)
	case key.Matches(msg, m.keys.toggleRow):
		if row, ok := m.cursorRow(); ok {
			if idx, ok := grid.RowIndex(row); ok {
				m.grid.ToggleRow(ev, idx)
			}
		}
	case key.Matches(msg, m.keys.selectPage):
		m.grid.SelectAll(ev, !m.grid.PageSelected())
	case key.Matches(msg, m.keys.copyRows):
		return m.copySelected()
	case key.Matches(msg, m.keys.edit):
		return m.beginEdit()
	case key.Matches(msg, m.keys.export):
		return m.exportCmd()
	case key.Matches(msg, m.keys.reset):
		m.grid.API().ResetGrid()
		m.searching = false
		m.searchToken++
		m.view.cursorRow, m.view.vScroll = 0, 0
		m.clampCursor()
		m.setToast("Grid reset", 0)
	case key.Matches(msg, m.keys.reload):
		return m.loadCmd("reload")
	case key.Matches(msg, m.keys.theme):
		m.markdownTheme = nextMarkdownTheme(m.markdownTheme)
		setMarkdownTheme(m.markdownTheme)
		if m.uiConfig != nil {
			m.uiConfig.Theme = string(m.markdownTheme)
			m.persistUIConfig()
		}
		m.refreshHelp()
		m.setToast("Help theme: "+string(m.markdownTheme), 0)
	}
	return nil
}

func (m *model) quit() tea.Cmd {
	m.blurEdit()
	m.loads.Cancel()
	if m.watcher != nil {
		_ = m.watcher.Close()
	}
	if m.uiConfig != nil {
		m.uiConfig.rememberSource(m.opts.dataset)
		m.persistUIConfig()
	}
	return tea.Quit
}

func (m *model) persistUIConfig() {
	if err := saveUIConfig(m.uiConfig, m.uiConfigPath); err != nil {
		m.log.Warnf("save ui config: %v", err)
	}
}

// loadCmd queues a load of the configured source.
func (m *model) loadCmd(title string) tea.Cmd {
	if strings.TrimSpace(m.opts.spec.Path) == "" && strings.TrimSpace(m.opts.spec.Command) == "" {
		m.setToast("No data source; pass a file or --exec", time.Hour)
		return nil
	}
	m.loading = true
	return m.loads.Enqueue(loadRequest{
		title:   title,
		spec:    m.opts.spec,
		timeout: loadTimeout,
	})
}

// applyLoad hands a finished load to the grid. Configured columns win over
// the source header; saved layouts are overlaid either way.
func (m *model) applyLoad(msg loadFinishedMsg) {
	if msg.Err != nil {
		m.log.Errorf("load %s failed: %v", m.opts.dataset, msg.Err)
		m.setToast(fmt.Sprintf("Load failed: %v", msg.Err), 10*time.Second)
		return
	}
	m.blurEdit()
	res := msg.Result
	if res == nil {
		res = &source.Result{}
	}
	cols := m.opts.file.GridColumns()
	if len(cols) == 0 {
		cols = res.GridColumns()
	}
	m.grid.SetColumns(m.withSavedLayout(cols))

	hint := m.opts.pageSize
	if hint == "" && m.view.height > 0 {
		hint = strconv.Itoa(m.view.bodyHeight())
	}
	ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()
	m.grid.SetData(ctx, res.Rows, hint)
	m.grid.ComputeLayout()

	m.loadedAt = time.Now()
	m.loadTook = msg.Took
	m.clampCursor()
	m.opts.events.Emit(gridEvent{Event: "load", Rows: len(res.Rows), Extra: map[string]string{
		"took":    msg.Took.String(),
		"columns": strconv.Itoa(len(cols)),
	}})
	m.setToast(fmt.Sprintf("Loaded %s rows in %s", humanize.Comma(int64(len(res.Rows))), msg.Took.Round(time.Millisecond)), 0)
}

func (m *model) withSavedLayout(cols []grid.Column) []grid.Column {
	saved, err := m.opts.layouts.Load(m.opts.dataset)
	if err != nil {
		m.log.Warnf("load saved layout: %v", err)
		return cols
	}
	return applySavedLayout(cols, saved)
}

func (m *model) saveLayout() {
	if err := m.opts.layouts.Save(m.opts.dataset, m.grid.State().Columns); err != nil {
		m.log.Warnf("save layout: %v", err)
	}
}

func (m *model) startWatch() tea.Cmd {
	if !m.opts.watch || m.opts.spec.Path == "" || m.opts.spec.Command != "" {
		return nil
	}
	w, err := source.Watch(m.opts.spec.Path)
	if err != nil {
		m.setToast(fmt.Sprintf("Cannot watch %s: %v", m.opts.spec.Path, err), 0)
		return nil
	}
	m.watcher = w
	return m.waitForChange()
}

func (m *model) waitForChange() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-w.Changes():
			if !ok {
				return nil
			}
			return fileChangedMsg{}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func waitForGridEvent(ch <-chan gridEventMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

func (m *model) handleGridEvent(msg gridEventMsg) {
	e := msg.event
	switch e.Event {
	case "column_resize", "column_drag":
		m.saveLayout()
	case "cell_update":
		m.setToast("Row updated", 0)
	}
	parts := []string{e.Event}
	if e.Column != "" {
		parts = append(parts, e.Column)
	}
	if e.Query != "" {
		parts = append(parts, strconv.Quote(e.Query))
	}
	if e.Page > 0 {
		parts = append(parts, "page "+strconv.Itoa(e.Page))
	}
	if e.Rows > 0 {
		parts = append(parts, humanize.Comma(int64(e.Rows))+" rows")
	}
	m.lastEvent = strings.Join(parts, " · ")
}

func (m *model) runSearch(msg searchTickMsg) tea.Cmd {
	g := m.grid
	m.searching = true
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		ev := grid.Event{Kind: "search", Source: "input"}
		if msg.column == "" {
			g.GlobalSearch(ctx, ev, msg.query)
		} else {
			g.Search(ctx, ev, msg.column, msg.query)
		}
		return searchDoneMsg{token: msg.token, took: time.Since(start)}
	}
}

func (m *model) debounceSearch(column, query string) tea.Cmd {
	m.searchToken++
	token := m.searchToken
	return tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return searchTickMsg{token: token, column: column, query: query}
	})
}

// sortColumn runs off the update loop: with a global query pending the
// pipeline may wait on the AI search hook.
func (m *model) sortColumn(ev grid.Event, name string) tea.Cmd {
	g := m.grid
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		ok := g.Sort(ctx, ev, name)
		return sortDoneMsg{column: name, ok: ok, took: time.Since(start)}
	}
}

func (m *model) changePage(moved bool) {
	if !moved {
		return
	}
	m.view.cursorRow, m.view.vScroll = 0, 0
	m.hoverIndex = -1
	m.clampCursor()
}

func (m *model) resizeBy(ev grid.Event, delta int) {
	col, ok := m.cursorColumn()
	if !ok {
		return
	}
	r := m.grid.Resizer()
	if !r.Begin(col.Name, 0) {
		m.setToast(col.Label()+" cannot be resized", 0)
		return
	}
	r.End(ev, delta)
	m.clampCursor()
}

func (m *model) moveColumn(delta int) {
	col, ok := m.cursorColumn()
	if !ok {
		return
	}
	if !m.grid.Dragger().MoveBy(col.DisplayIndex, delta) {
		return
	}
	m.followColumn(col.Name)
}

// followColumn puts the cursor back on name after the columns moved.
func (m *model) followColumn(name string) {
	for i, c := range renderableColumns(m.grid.State()) {
		if c.Name == name {
			m.view.cursorCol = i
			break
		}
	}
	m.clampCursor()
}

func (m *model) cursorColumn() (grid.Column, bool) {
	cols := renderableColumns(m.grid.State())
	if m.view.cursorCol < 0 || m.view.cursorCol >= len(cols) {
		return grid.Column{}, false
	}
	return cols[m.view.cursorCol], true
}

func (m *model) cursorRow() (grid.Row, bool) {
	rows := m.grid.PageRows()
	if m.view.cursorRow < 0 || m.view.cursorRow >= len(rows) {
		return nil, false
	}
	return rows[m.view.cursorRow], true
}

func (m *model) moveCursor(delta int) {
	m.setCursorRow(m.view.cursorRow + delta)
}

// setCursorRow moves the row cursor and reports hover changes the way a
// pointer entering and leaving rows would.
func (m *model) setCursorRow(row int) {
	rows := m.grid.PageRows()
	if len(rows) == 0 {
		return
	}
	row = clampInt(row, 0, len(rows)-1)
	if row != m.hoverIndex {
		ev := grid.Event{Kind: "cursor"}
		if m.hoverIndex >= 0 && m.hoverIndex < len(rows) {
			m.grid.RowOut(ev, rows[m.hoverIndex])
		}
		m.grid.RowHover(ev, rows[row])
		m.hoverIndex = row
	}
	m.view.cursorRow = row
	m.clampCursor()
}

func (m *model) clampCursor() {
	st := m.grid.State()
	m.view.ensureRowVisible(len(st.PageRowSlice()))
	m.view.ensureColumnVisible(renderableColumns(st), m.grid.Layout(), st.Config.DefaultColumnWidth)
}

func (m *model) copySelected() tea.Cmd {
	api := m.grid.API()
	rows := api.FilteredSelectedRows()
	if len(rows) == 0 {
		if row, ok := m.cursorRow(); ok {
			rows = []grid.Row{row}
		}
	}
	if len(rows) == 0 {
		m.setToast("Nothing to copy", 0)
		return nil
	}
	cols := m.grid.State().VisibleColumns()
	return func() tea.Msg {
		var buf bytes.Buffer
		if err := grid.WriteCSV(&buf, cols, rows); err != nil {
			return clipboardDoneMsg{err: err}
		}
		return clipboardDoneMsg{rows: len(rows), err: clipboard.WriteAll(buf.String())}
	}
}

func (m *model) exportCmd() tea.Cmd {
	g := m.grid
	cfg := g.Config()
	name := grid.ExportFileName(cfg.ExportPrefix, "", time.Now())
	rows := len(g.API().FilteredRows())
	if cfg.Export == grid.ExportAll {
		rows = len(g.Received())
	}
	return func() tea.Msg {
		f, err := os.Create(name)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if err := g.ExportCSV(f, grid.ExportNone); err != nil {
			f.Close()
			_ = os.Remove(name)
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: name, rows: rows, err: f.Close()}
	}
}

func (m *model) beginEdit() tea.Cmd {
	ed := m.grid.Editor()
	name := ""
	if col, ok := m.cursorColumn(); ok && col.Editable {
		name = col.Name
	} else if editable := ed.EditableColumns(); len(editable) > 0 {
		name = editable[0]
	}
	if name == "" {
		m.setToast("No editable columns", 0)
		return nil
	}
	if err := ed.Begin(m.view.cursorRow, name); err != nil {
		m.setToast(fmt.Sprintf("Cannot edit: %v", err), 0)
		return nil
	}
	return m.openEditInput()
}

func (m *model) openEditInput() tea.Cmd {
	ed := m.grid.Editor()
	cell, ok := ed.Editing()
	if !ok {
		m.closeInput()
		return nil
	}
	v, _ := ed.Value()
	m.editOriginal = v
	label := cell.ColumnName
	if col, ok := m.grid.State().Column(cell.ColumnName); ok {
		label = col.Label()
		m.followColumn(col.Name)
	}
	return m.openInput(inputEdit, "Edit "+label, editText(v), cell.ColumnName)
}

func (m *model) updateEditInput(msg tea.KeyMsg) tea.Cmd {
	ed := m.grid.Editor()
	switch msg.String() {
	case "esc":
		ed.Revert()
		m.closeInput()
		return nil
	case "enter":
		m.storeEdit()
		if ed.Enter(false) {
			m.closeInput()
			return nil
		}
		return m.openEditInput()
	case "ctrl+c":
		m.blurEdit()
		return m.quit()
	case "tab", "shift+tab":
		m.storeEdit()
		if ed.Navigate(msg.String() == "tab") {
			m.closeInput()
			return nil
		}
		return m.openEditInput()
	}
	var cmd tea.Cmd
	m.inputField, cmd = m.inputField.Update(msg)
	return cmd
}

// blurEdit keeps the typed value and ends the row session when the edit
// input loses focus for a reason other than its own keys.
func (m *model) blurEdit() {
	if m.inputMode != inputEdit {
		return
	}
	m.storeEdit()
	m.grid.Editor().Blur()
	m.closeInput()
}

// storeEdit writes the typed text back, keeping the original value's type
// when the text still parses as one.
func (m *model) storeEdit() {
	text := m.inputField.Value()
	if text == editText(m.editOriginal) {
		return
	}
	if err := m.grid.Editor().SetValue(coerceEdit(m.editOriginal, text)); err != nil {
		m.setToast(fmt.Sprintf("Edit failed: %v", err), 0)
	}
}

func editText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

func coerceEdit(orig any, text string) any {
	trimmed := strings.TrimSpace(text)
	switch orig.(type) {
	case int, int64:
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n
		}
	case float64, float32:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
	case bool:
		if b, err := strconv.ParseBool(trimmed); err == nil {
			return b
		}
	case time.Time:
		if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
			return t
		}
	}
	return text
}

func (m *model) openInput(mode inputMode, prompt, value, column string) tea.Cmd {
	m.inputActive = true
	m.inputMode = mode
	m.inputPrompt = prompt
	m.inputColumn = column
	m.inputField.SetValue(value)
	m.inputField.CursorEnd()
	m.jumpIndex = 0
	m.updateJumpMatches()
	m.layoutView()
	return m.inputField.Focus()
}

func (m *model) closeInput() {
	m.inputActive = false
	m.inputMode = inputNone
	m.inputColumn = ""
	m.inputField.Blur()
	m.inputField.SetValue("")
	m.jumpMatches = nil
	m.editOriginal = nil
	m.layoutView()
}

func (m *model) updateInput(msg tea.KeyMsg) tea.Cmd {
	if m.inputMode == inputEdit {
		return m.updateEditInput(msg)
	}
	if m.inputMode == inputJumpColumn {
		switch msg.String() {
		case "up", "ctrl+p", "shift+tab":
			if len(m.jumpMatches) > 0 {
				m.jumpIndex = (m.jumpIndex - 1 + len(m.jumpMatches)) % len(m.jumpMatches)
			}
			return nil
		case "down", "ctrl+n", "tab":
			if len(m.jumpMatches) > 0 {
				m.jumpIndex = (m.jumpIndex + 1) % len(m.jumpMatches)
			}
			return nil
		}
	}
	switch msg.String() {
	case "esc":
		m.closeInput()
		return nil
	case "enter":
		return m.submitInput()
	}

	before := m.inputField.Value()
	var cmd tea.Cmd
	m.inputField, cmd = m.inputField.Update(msg)
	value := m.inputField.Value()
	if value == before {
		return cmd
	}
	switch m.inputMode {
	case inputGlobalSearch:
		return tea.Batch(cmd, m.debounceSearch("", value))
	case inputColumnSearch:
		return tea.Batch(cmd, m.debounceSearch(m.inputColumn, value))
	case inputJumpColumn:
		m.jumpIndex = 0
		m.updateJumpMatches()
		m.layoutView()
	}
	return cmd
}

func (m *model) submitInput() tea.Cmd {
	value := m.inputField.Value()
	mode, column := m.inputMode, m.inputColumn
	var cmd tea.Cmd
	switch mode {
	case inputGlobalSearch, inputColumnSearch:
		m.searchToken++
		cmd = m.runSearch(searchTickMsg{token: m.searchToken, column: column, query: value})
	case inputJumpColumn:
		if m.jumpIndex < len(m.jumpMatches) {
			m.jumpToColumn(m.jumpMatches[m.jumpIndex])
		}
	case inputPageSize:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n < 0 {
			m.setToast("Page size must be a whole number", 0)
			return nil
		}
		m.grid.SetPageSize(n)
		m.changePage(true)
		if m.uiConfig != nil {
			m.uiConfig.PageSize = n
			m.persistUIConfig()
		}
	}
	m.closeInput()
	return cmd
}

// updateJumpMatches ranks every column, hidden ones included, against the
// typed pattern.
func (m *model) updateJumpMatches() {
	if m.inputMode != inputJumpColumn {
		m.jumpMatches = nil
		return
	}
	cols := m.grid.State().Columns
	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label()
	}
	pattern := strings.TrimSpace(m.inputField.Value())
	var out []jumpCandidate
	if pattern == "" {
		for _, c := range cols {
			out = append(out, jumpCandidate{name: c.Name, label: c.Label(), hidden: c.Hidden})
		}
	} else {
		for _, match := range fuzzy.Find(pattern, labels) {
			c := cols[match.Index]
			out = append(out, jumpCandidate{name: c.Name, label: c.Label(), hidden: c.Hidden, matched: match.MatchedIndexes})
		}
	}
	if len(out) > maxJumpMatches {
		out = out[:maxJumpMatches]
	}
	m.jumpMatches = out
	if m.jumpIndex >= len(out) {
		m.jumpIndex = 0
	}
}

func (m *model) jumpToColumn(c jumpCandidate) {
	if c.hidden {
		if !m.grid.ToggleHidden(c.name) {
			m.setToast(c.label+" is hidden and cannot be shown", 0)
			return
		}
		m.saveLayout()
	}
	m.followColumn(c.name)
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.showHelp {
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return cmd
	}
	if m.inputActive {
		return nil
	}

	st := m.grid.State()
	cols := renderableColumns(st)
	regions := m.view.regions(cols, m.grid.Layout(), st.Config.DefaultColumnWidth)
	headerY := m.gridTop()
	bodyTop := headerY + 2

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.moveCursor(-1)
			return nil
		case tea.MouseButtonWheelDown:
			m.moveCursor(1)
			return nil
		case tea.MouseButtonLeft:
		default:
			return nil
		}
		return m.mousePress(msg, st, cols, regions, headerY, bodyTop)
	case tea.MouseActionMotion:
		if name, active := m.grid.Resizer().Active(); active {
			if w, ok := m.grid.Resizer().Move(msg.X); ok {
				m.view.liveName, m.view.liveWidth = name, w
			}
			return nil
		}
		if !m.pressOnHeader {
			return nil
		}
		if _, dragging := m.grid.Dragger().Dragging(); !dragging && m.gate.Move(msg.X, msg.Y) {
			m.grid.Dragger().Start(m.pressRegion.col.DisplayIndex)
		}
		if _, dragging := m.grid.Dragger().Dragging(); dragging {
			if r, ok := columnAt(regions, msg.X); ok {
				m.dragOver = r.col.DisplayIndex
			}
		}
	case tea.MouseActionRelease:
		if _, active := m.grid.Resizer().Active(); active {
			m.grid.Resizer().End(grid.Event{Kind: "mouse", Source: "resize"}, msg.X)
			m.view.liveName, m.view.liveWidth = "", 0
			m.clampCursor()
			return nil
		}
		if !m.pressOnHeader {
			return nil
		}
		pressed := m.pressRegion.col
		m.pressOnHeader = false
		m.dragOver = 0
		dragged := m.gate.Release()
		if _, dragging := m.grid.Dragger().Dragging(); dragging {
			r, ok := columnAt(regions, msg.X)
			if !ok || !m.grid.Dragger().Drop(r.col.DisplayIndex) {
				m.grid.Dragger().Cancel()
				return nil
			}
			m.followColumn(pressed.Name)
			return nil
		}
		if !dragged {
			m.followColumn(pressed.Name)
			return m.sortColumn(grid.Event{Kind: "mouse", Source: "header"}, pressed.Name)
		}
	}
	return nil
}

func (m *model) mousePress(msg tea.MouseMsg, st grid.State, cols []grid.Column, regions []headerRegion, headerY, bodyTop int) tea.Cmd {
	ev := grid.Event{Kind: "mouse", Source: "click"}
	if msg.Y == headerY {
		if r, ok := handleAt(regions, msg.X); ok {
			if m.grid.Resizer().Begin(r.col.Name, msg.X) {
				m.view.liveName, m.view.liveWidth = r.col.Name, m.grid.Resizer().LiveWidth()
			}
			return nil
		}
		if m.view.gutter && msg.X < gutterWidth {
			m.grid.SelectAll(ev, !m.grid.PageSelected())
			return nil
		}
		if r, ok := columnAt(regions, msg.X); ok {
			m.pressOnHeader = true
			m.pressRegion = r
			m.gate.Arm(msg.X, msg.Y)
		}
		return nil
	}
	if st.Config.ShowFooter && msg.Y == m.footerY() {
		_, links := pageBar(m.styles, m.grid.PageLinks())
		if link, ok := linkAt(links, msg.X-m.styles.statusBar.GetPaddingLeft()); ok {
			m.changePage(m.grid.SetPage(ev, link.Page))
		}
		return nil
	}
	if msg.Y < bodyTop || msg.Y >= bodyTop+m.view.bodyHeight() {
		return nil
	}
	rows := st.PageRowSlice()
	row := m.view.vScroll + msg.Y - bodyTop
	if row < 0 || row >= len(rows) {
		return nil
	}
	m.setCursorRow(row)
	if m.view.gutter && msg.X < gutterWidth {
		if idx, ok := grid.RowIndex(rows[row]); ok {
			m.grid.ToggleRow(ev, idx)
		}
		return nil
	}
	if r, ok := columnAt(regions, msg.X); ok {
		for i, c := range cols {
			if c.Name == r.col.Name {
				m.view.cursorCol = i
			}
		}
		m.clampCursor()
	}
	m.grid.RowClick(ev, rows[row])
	return nil
}

func (m *model) toolbarLines() int {
	if m.grid.Config().ShowToolbar {
		return 1
	}
	return 0
}

func (m *model) footerLines() int {
	if m.grid.Config().ShowFooter {
		return 1
	}
	return 0
}

func (m *model) gridTop() int {
	return 1 + m.toolbarLines()
}

func (m *model) footerY() int {
	return m.gridTop() + m.view.height
}

// layoutView sizes the grid area to whatever the chrome leaves.
func (m *model) layoutView() {
	chrome := 1 + m.toolbarLines() + m.footerLines() + 2
	if m.inputActive && m.inputMode == inputJumpColumn {
		chrome += len(m.jumpMatches)
	}
	m.view.width = m.width
	m.view.height = max(minGridHeight, m.height-chrome)
	m.helpView.Width = max(20, m.width)
	m.helpView.Height = m.view.height
	m.inputField.Width = max(10, m.width-lipgloss.Width(m.inputPrompt)-6)
	m.clampCursor()
}

func (m *model) refreshHelp() {
	if m.showDetail {
		if row, ok := m.cursorRow(); ok {
			m.helpView.SetContent(renderMarkdown(rowDetailMarkdown(m.grid.State(), row)))
			return
		}
		m.showDetail = false
	}
	m.helpView.SetContent(renderMarkdown(helpMarkdown(m.keys, m.grid.Config())))
}

func (m *model) setToast(msg string, duration time.Duration) {
	trimmed := strings.TrimSpace(msg)
	if trimmed == "" {
		m.toastMessage = ""
		m.toastExpires = time.Time{}
		return
	}
	if duration <= 0 {
		duration = 5 * time.Second
	}
	m.toastMessage = trimmed
	m.toastExpires = time.Now().Add(duration)
}

func (m *model) View() string {
	if m.width == 0 {
		return ""
	}
	var builder strings.Builder
	st := m.grid.State()

	builder.WriteString(m.styles.topBar.MaxWidth(m.width).Render(m.titleLine(st)))
	builder.WriteRune('\n')

	if st.Config.ShowToolbar {
		builder.WriteString(m.styles.toolbar.MaxWidth(m.width).Render(m.toolbarLine(st)))
		builder.WriteRune('\n')
	}

	var body string
	if m.showHelp {
		body = m.helpView.View()
	} else {
		src := cellSource{state: st, layout: m.grid.Layout(), editing: st.Editing, dragOver: m.dragOver}
		if from, dragging := m.grid.Dragger().Dragging(); dragging {
			src.dragFrom = from
		}
		if m.inputMode == inputEdit {
			src.editView = m.inputField.Value() + "▏"
		}
		body = m.view.render(m.styles, src)
	}
	builder.WriteString(lipgloss.NewStyle().Height(m.view.height).MaxHeight(m.view.height).Render(body))
	builder.WriteRune('\n')

	if st.Config.ShowFooter {
		builder.WriteString(m.styles.statusBar.MaxWidth(m.width).Render(m.footerLine(st)))
		builder.WriteRune('\n')
	}

	if m.inputActive {
		builder.WriteString(m.styles.cmdPrompt.Render(m.inputPrompt))
		builder.WriteString(" ")
		builder.WriteString(m.inputField.View())
		for i, c := range m.jumpMatches {
			builder.WriteRune('\n')
			builder.WriteString(m.renderJumpCandidate(c, i == m.jumpIndex))
		}
	} else {
		m.help.Width = max(0, m.width-2)
		builder.WriteString(m.help.View(m.keys))
	}
	builder.WriteRune('\n')
	builder.WriteString(m.renderStatus())
	return builder.String()
}

func (m *model) titleLine(st grid.State) string {
	title := "gridview"
	if t := strings.TrimSpace(m.opts.file.Title); t != "" {
		title = t
	}
	parts := []string{title}
	if m.opts.dataset != "" {
		parts = append(parts, m.opts.dataset)
	}
	total := len(m.grid.Received())
	parts = append(parts, humanize.Comma(int64(total))+" rows")
	if !m.loadedAt.IsZero() {
		parts = append(parts, "loaded "+humanize.Time(m.loadedAt))
	}
	return strings.Join(parts, " • ")
}

func (m *model) toolbarLine(st grid.State) string {
	var parts []string
	if st.Config.GlobalSearch {
		q := st.GlobalQuery
		if q == "" {
			q = "—"
		}
		parts = append(parts, m.styles.toolbarLabel.Render("search:")+" "+q)
	}
	var filters []string
	for _, c := range st.Columns {
		if q := st.ColumnQueries[c.Name]; q != "" {
			filters = append(filters, c.Label()+"="+q)
		}
	}
	if len(filters) > 0 {
		parts = append(parts, m.styles.toolbarLabel.Render("filters:")+" "+strings.Join(filters, ", "))
	}
	for _, c := range st.Columns {
		if c.SortOrder != grid.SortNone {
			parts = append(parts, m.styles.toolbarLabel.Render("sort:")+" "+c.Label()+sortGlyph(c.SortOrder))
			break
		}
	}
	if n := len(st.Selected); n > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", n))
	}
	if m.searching || m.loading {
		parts = append(parts, m.spinner.View())
	}
	if st.AIFailed {
		parts = append(parts, m.styles.warning.Render("script search failed, showing local matches"))
	}
	return strings.Join(parts, "  ")
}

func (m *model) footerLine(st grid.State) string {
	bar, _ := pageBar(m.styles, m.grid.PageLinks())
	if st.TotalRows == 0 {
		return bar + "  " + m.styles.statusHint.Render("no matching rows")
	}
	first := st.FirstRow + 1
	last := st.FirstRow + st.CurrentPageRows
	info := fmt.Sprintf("rows %s–%s of %s • page %d/%d",
		humanize.Comma(int64(first)),
		humanize.Comma(int64(last)),
		humanize.Comma(int64(st.TotalRows)),
		st.ActivePage, max(1, st.NoOfPages))
	return bar + "  " + m.styles.statusHint.Render(info)
}

func (m *model) renderJumpCandidate(c jumpCandidate, selected bool) string {
	matched := make(map[int]bool, len(c.matched))
	for _, i := range c.matched {
		matched[i] = true
	}
	var b strings.Builder
	for i, r := range c.label {
		if matched[i] {
			b.WriteString(m.styles.match.Render(string(r)))
		} else {
			b.WriteRune(r)
		}
	}
	line := b.String()
	if c.hidden {
		line += m.styles.statusHint.Render(" (hidden)")
	}
	if selected {
		return m.styles.cellCursor.Render("› " + line)
	}
	return "  " + line
}

func (m *model) renderStatus() string {
	msg := m.lastEvent
	style := m.styles.statusHint
	if m.toastMessage != "" && time.Now().Before(m.toastExpires) {
		msg = m.toastMessage
		style = m.styles.statusSeg
	}
	return m.styles.statusBar.MaxWidth(m.width).Render(style.Render(msg))
}
