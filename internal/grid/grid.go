package grid

import (
	"context"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/olekukonko/ll"
	"github.com/olekukonko/ll/lh"
)

// AISearchFunc is an external search provider. It receives the tagged
// dataset and the global query and returns the rows it considers matches.
type AISearchFunc func(ctx context.Context, rows []Row, query string) ([]Row, error)

type FilterFunc func(rows []Row, entries []SearchEntry) []Row

type SortFunc func(rows []Row, spec SortSpec) []Row

type Option func(*Grid)

func WithHooks(h Hooks) Option {
	return func(g *Grid) { g.hooks = h }
}

func WithAISearch(fn AISearchFunc) Option {
	return func(g *Grid) { g.aiSearch = fn }
}

func WithLogger(logger *ll.Logger) Option {
	return func(g *Grid) {
		if logger != nil {
			g.log = logger
		}
	}
}

func WithFilter(fn FilterFunc) Option {
	return func(g *Grid) {
		if fn != nil {
			g.filter = fn
		}
	}
}

func WithSort(fn SortFunc) Option {
	return func(g *Grid) {
		if fn != nil {
			g.sorter = fn
		}
	}
}

// Grid owns one grid's state. Render-relevant data lives in State; the
// canonical dataset, active searches, sort spec and gesture bookkeeping are
// plain fields that never trigger a render on their own.
type Grid struct {
	mu    sync.Mutex
	state State
	hooks Hooks
	log   *ll.Logger

	aiSearch AISearchFunc
	filter   FilterFunc
	sorter   SortFunc

	received     []Row
	searches     []SearchEntry
	sortSpec     *SortSpec
	globalQuery  string
	pageSizeHint string
	generation   uint64
	layout       map[string]ColumnLayout

	resizer *ResizeController
	dragger *DragController
	editor  *EditEngine
}

func New(cfg Config, opts ...Option) *Grid {
	if cfg.DefaultColumnWidth <= 0 {
		cfg.DefaultColumnWidth = DefaultConfig().DefaultColumnWidth
	}
	g := &Grid{
		state: State{
			Columns:       []Column{},
			ActivePage:    1,
			Selected:      map[int]struct{}{},
			ColumnQueries: map[string]string{},
			Config:        cfg,
		},
		filter: FilterRows,
		sorter: SortRows,
		layout: map[string]ColumnLayout{},
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.log == nil {
		g.log = ll.New("grid").Handler(lh.NewTextHandler(os.Stderr))
		if cfg.Debug {
			g.log.Enable()
		} else {
			g.log.Disable()
		}
	}
	g.resizer = &ResizeController{g: g}
	g.dragger = &DragController{g: g}
	g.editor = &EditEngine{g: g, buffer: map[string]any{}}
	return g
}

func (g *Grid) update(patches ...Patch) {
	g.state = g.state.Apply(patches...)
}

// State returns a copy of the current state.
func (g *Grid) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.clone()
}

func (g *Grid) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Config
}

func (g *Grid) Resizer() *ResizeController { return g.resizer }
func (g *Grid) Dragger() *DragController   { return g.dragger }
func (g *Grid) Editor() *EditEngine        { return g.editor }

// SetColumns runs the column processor against the previous column state.
// A column arriving with a sort order seeds the sort spec when none is active.
func (g *Grid) SetColumns(raw any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	cols := ProcessColumns(raw, g.state.Columns)
	g.layout = map[string]ColumnLayout{}

	if g.sortSpec == nil {
		for _, c := range cols {
			if c.SortOrder != SortNone {
				col := c.clone()
				g.sortSpec = &SortSpec{Column: &col, Order: c.SortOrder, Key: c.Name, Event: Event{Kind: "columns"}}
				break
			}
		}
	} else {
		found := false
		for _, c := range cols {
			if c.Name == g.sortSpec.Key {
				col := c.clone()
				g.sortSpec.Column = &col
				found = true
				break
			}
		}
		if !found {
			g.sortSpec = nil
		}
	}

	key, order := "", SortNone
	if g.sortSpec != nil {
		key, order = g.sortSpec.Key, g.sortSpec.Order
	}
	g.update(withColumns(cols), withSortOrders(key, order))
	g.log.Debugf("processed %d columns", len(cols))
}

// SetData tags rows with their origin index, keeps them as the canonical
// dataset and runs the pipeline. ctx bounds the AI provider call only.
func (g *Grid) SetData(ctx context.Context, rows []Row, pageSize string) {
	tagged := make([]Row, len(rows))
	for i, r := range rows {
		t := r.Clone()
		if t == nil {
			t = Row{}
		}
		t[IndexKey] = i
		tagged[i] = t
	}

	g.mu.Lock()
	g.received = tagged
	g.pageSizeHint = pageSize
	g.mu.Unlock()

	g.refresh(ctx)
}

// Refresh re-runs the pipeline over the canonical dataset.
func (g *Grid) Refresh(ctx context.Context) bool {
	return g.refresh(ctx)
}

// refresh runs AI search (optional), filter, sort and paging, then commits.
// Every run takes a new generation; a run that finishes after a newer one
// started is dropped.
func (g *Grid) refresh(ctx context.Context) bool {
	g.mu.Lock()
	g.generation++
	gen := g.generation
	data := g.received
	query := strings.TrimSpace(g.globalQuery)
	provider := g.aiSearch
	opts := g.state.Config.AISearch
	g.mu.Unlock()

	usedAI, aiFailed := false, false
	if provider != nil && opts.Enabled && query != "" && len(data) >= opts.MinRowCount {
		result, err := provider(ctx, append([]Row(nil), data...), query)
		if err != nil {
			aiFailed = true
			g.log.Debugf("ai search failed for %q, using local search: %v", query, err)
		} else {
			data = result
			usedAI = true
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if gen != g.generation {
		g.log.Debugf("dropping stale pipeline run %d (current %d)", gen, g.generation)
		return false
	}
	g.commitLocked(data, usedAI, aiFailed)
	return true
}

func (g *Grid) commitLocked(data []Row, usedAI, aiFailed bool) {
	entries := g.searches
	if usedAI {
		entries = withoutGlobal(entries)
	}
	rows := g.filter(data, entries)

	key, order := "", SortNone
	if spec := g.sortSpec; spec != nil && spec.Column != nil && spec.Order != SortNone {
		rows = g.sorter(rows, *spec)
		key, order = spec.Key, spec.Order
	}

	paging := Paginate(len(rows), g.effectivePageSizeLocked(len(rows)), g.state.ActivePage)
	g.update(
		withRows(rows),
		withPaging(paging),
		withSortOrders(key, order),
		func(s *State) { s.AIFailed = aiFailed },
	)
	g.log.Debugf("pipeline committed %d of %d rows, page %d/%d", len(rows), len(data), paging.ActivePage, paging.NoOfPages)
}

func withoutGlobal(entries []SearchEntry) []SearchEntry {
	out := make([]SearchEntry, 0, len(entries))
	for _, e := range entries {
		if e.ColName != GlobalSearchKey {
			out = append(out, e)
		}
	}
	return out
}

// effectivePageSizeLocked picks the explicit page size, then the parsed hint,
// then the row count (unpaged).
func (g *Grid) effectivePageSizeLocked(total int) int {
	if g.state.Config.PageSize > 0 {
		return g.state.Config.PageSize
	}
	if n, err := strconv.Atoi(strings.TrimSpace(g.pageSizeHint)); err == nil && n > 0 {
		return n
	}
	return total
}

// Search sets or clears the query of one column and re-runs the pipeline.
func (g *Grid) Search(ctx context.Context, ev Event, colName, query string) {
	g.mu.Lock()
	entry := SearchEntry{ColName: colName, Query: query}
	if strings.TrimSpace(query) == "" {
		entry.Query = ""
	}
	if col, ok := g.state.Column(colName); ok {
		c := col.clone()
		entry.Column = &c
		entry.Formatting = c.Formatting
	}
	g.searches = UpsertSearch(g.searches, entry)
	g.update(func(s *State) {
		s.ColumnQueries[colName] = query
		s.ActivePage = 1
	})
	g.mu.Unlock()

	g.refresh(ctx)
	g.fireSearchComplete(ev, query)
}

// GlobalSearch sets or clears the grid-wide query and re-runs the pipeline.
func (g *Grid) GlobalSearch(ctx context.Context, ev Event, query string) {
	g.mu.Lock()
	entry := SearchEntry{ColName: GlobalSearchKey, Query: query, Columns: cloneColumns(g.state.Columns)}
	if strings.TrimSpace(query) == "" {
		entry.Query = ""
	}
	g.searches = UpsertSearch(g.searches, entry)
	g.globalQuery = entry.Query
	g.update(func(s *State) {
		s.GlobalQuery = query
		s.ActivePage = 1
	})
	g.mu.Unlock()

	g.refresh(ctx)
	g.fireSearchComplete(ev, query)
}

func (g *Grid) fireSearchComplete(ev Event, query string) {
	g.mu.Lock()
	entries := append([]SearchEntry(nil), g.searches...)
	rows := append([]Row(nil), g.state.Rows...)
	hook := g.hooks.OnSearchComplete
	g.mu.Unlock()
	if hook != nil {
		hook(ev, query, entries, rows, len(rows))
	}
}

// SearchEntries returns the active search predicates.
func (g *Grid) SearchEntries() []SearchEntry {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SearchEntry(nil), g.searches...)
}

// SortSpec returns the active sort, if any.
func (g *Grid) SortSpec() (SortSpec, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.sortSpec == nil {
		return SortSpec{}, false
	}
	return *g.sortSpec, true
}

func (g *Grid) sortableLocked(col Column) bool {
	if col.Action || !g.state.Config.Sorting {
		return false
	}
	return col.Sortable == nil || *col.Sortable
}

// Sort cycles the sort order of a column (none, asc, desc).
func (g *Grid) Sort(ctx context.Context, ev Event, colName string) bool {
	g.mu.Lock()
	order := SortAsc
	if g.sortSpec != nil && g.sortSpec.Key == colName {
		order = g.sortSpec.Order.Toggle()
	}
	g.mu.Unlock()
	return g.SortBy(ctx, ev, colName, order)
}

// SortBy sets the single active sort. SortNone clears it.
func (g *Grid) SortBy(ctx context.Context, ev Event, colName string, order SortOrder) bool {
	g.mu.Lock()
	col, ok := g.state.Column(colName)
	if !ok || !g.sortableLocked(col) {
		g.mu.Unlock()
		return false
	}
	if order == SortNone {
		g.sortSpec = nil
	} else {
		c := col.clone()
		g.sortSpec = &SortSpec{Column: &c, Order: order, Key: colName, Event: ev}
	}
	g.mu.Unlock()

	g.refresh(ctx)

	g.mu.Lock()
	rows := append([]Row(nil), g.state.Rows...)
	hook := g.hooks.OnSortComplete
	g.mu.Unlock()
	if hook != nil {
		hook(ev, col.clone(), rows, order)
	}
	return true
}

// SetPage moves to page. Out of range pages are ignored.
func (g *Grid) SetPage(ev Event, page int) bool {
	g.mu.Lock()
	if page < 1 || page > g.state.NoOfPages || page == g.state.ActivePage {
		g.mu.Unlock()
		return false
	}
	prev := g.state.ActivePage
	paging := Paginate(len(g.state.Rows), g.state.PageRows, page)
	g.update(withPaging(paging))
	hook := g.hooks.OnPageChange
	g.mu.Unlock()

	if hook != nil {
		hook(ev, paging.ActivePage, prev, paging.CurrentPageRows, paging.FirstRow+1)
	}
	return true
}

func (g *Grid) NextPage(ev Event) bool {
	return g.SetPage(ev, g.CurrentPage()+1)
}

func (g *Grid) PrevPage(ev Event) bool {
	return g.SetPage(ev, g.CurrentPage()-1)
}

// SetPageSize overrides the page size and returns to page 1. Size 0 drops the
// override: the SetData hint applies again, or the grid is unpaged without one.
func (g *Grid) SetPageSize(size int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if size < 0 {
		size = 0
	}
	g.update(func(s *State) { s.Config.PageSize = size })
	paging := Paginate(len(g.state.Rows), g.effectivePageSizeLocked(len(g.state.Rows)), 1)
	g.update(withPaging(paging))
}

// CurrentPage returns the active page, 1 when nothing is loaded.
func (g *Grid) CurrentPage() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.ActivePage < 1 {
		return 1
	}
	return g.state.ActivePage
}

// PageRows returns the rows on the active page.
func (g *Grid) PageRows() []Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.PageRowSlice()
}

func (g *Grid) PageLinks() []PageLink {
	g.mu.Lock()
	defer g.mu.Unlock()
	return PageLinks(g.state.ActivePage, g.state.NoOfPages)
}

// ToggleHidden flips visibility of a hideable column.
func (g *Grid) ToggleHidden(name string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	cols, ok := toggleHidden(g.state.Columns, name)
	if !ok {
		return false
	}
	g.update(withColumns(cols))
	g.recomputeOffsetsLocked()
	return true
}

func (g *Grid) RowClick(ev Event, row Row) {
	if h := g.hooks.OnRowClick; h != nil {
		h(ev, row.Clone())
	}
}

func (g *Grid) RowHover(ev Event, row Row) {
	if h := g.hooks.OnRowHover; h != nil {
		h(ev, row.Clone())
	}
}

func (g *Grid) RowOut(ev Event, row Row) {
	if h := g.hooks.OnRowOut; h != nil {
		h(ev, row.Clone())
	}
}

// Received returns the canonical dataset.
func (g *Grid) Received() []Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Row(nil), g.received...)
}
