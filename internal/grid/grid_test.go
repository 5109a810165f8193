package grid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

func fruitRows() []Row {
	return []Row{
		{"name": "banana", "qty": 12, "color": "yellow"},
		{"name": "apple", "qty": 3, "color": "red"},
		{"name": "cherry", "qty": 40, "color": "red"},
		{"name": "date", "qty": 7, "color": "brown"},
		{"name": "elder", "qty": 25, "color": "purple"},
	}
}

func fruitColumns() []map[string]any {
	return []map[string]any{
		{"name": "name", "alias": "Fruit"},
		{"name": "qty"},
		{"name": "color"},
	}
}

func newFruitGrid(t *testing.T, cfg Config, opts ...Option) *Grid {
	t.Helper()
	g := New(cfg, opts...)
	g.SetColumns(fruitColumns())
	g.SetData(context.Background(), fruitRows(), "2")
	return g
}

func TestSetDataTagsAndPages(t *testing.T) {
	g := newFruitGrid(t, DefaultConfig())
	s := g.State()

	if s.TotalRows != 5 || s.PageRows != 2 || s.NoOfPages != 3 || s.LastPageRows != 1 {
		t.Fatalf("paging = %+v", s)
	}
	for i, r := range g.Received() {
		if idx, ok := RowIndex(r); !ok || idx != i {
			t.Fatalf("row %d tagged %v", i, r[IndexKey])
		}
	}
	if got := len(g.PageRows()); got != 2 {
		t.Fatalf("page rows = %d", got)
	}
}

func TestSetDataPageSizePrecedence(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		hint     string
		want     int
	}{
		{"explicit size wins", 4, "2", 4},
		{"hint used", 0, "3", 3},
		{"bad hint means unpaged", 0, "lots", 5},
		{"no hint means unpaged", 0, "", 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.PageSize = tt.pageSize
			g := New(cfg)
			g.SetColumns(fruitColumns())
			g.SetData(context.Background(), fruitRows(), tt.hint)
			if got := g.State().PageRows; got != tt.want {
				t.Fatalf("page rows = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOriginIndexStableAcrossViews(t *testing.T) {
	ctx := context.Background()
	g := newFruitGrid(t, DefaultConfig())
	received := g.Received()

	check := func(stage string) {
		t.Helper()
		for _, r := range g.State().Rows {
			idx, ok := RowIndex(r)
			if !ok || received[idx]["name"] != r["name"] {
				t.Fatalf("%s: row %v has origin %v", stage, r["name"], r[IndexKey])
			}
		}
	}

	g.SortBy(ctx, Event{Kind: "sort"}, "qty", SortDesc)
	check("sorted")
	g.Search(ctx, Event{Kind: "search"}, "color", "red")
	check("filtered")
	g.SetPage(Event{Kind: "page"}, 1)
	check("paged")
}

func TestSortAndSearchHooks(t *testing.T) {
	ctx := context.Background()
	var sorted []Row
	var sortOrder SortOrder
	var searchQuery string
	var searchCount int
	g := newFruitGrid(t, DefaultConfig(), WithHooks(Hooks{
		OnSortComplete: func(_ Event, col Column, rows []Row, order SortOrder) {
			sorted, sortOrder = rows, order
		},
		OnSearchComplete: func(_ Event, query string, _ []SearchEntry, _ []Row, count int) {
			searchQuery, searchCount = query, count
		},
	}))

	if !g.Sort(ctx, Event{Kind: "sort"}, "name") {
		t.Fatal("sort rejected")
	}
	if sortOrder != SortAsc || sorted[0]["name"] != "apple" {
		t.Fatalf("first sort: order %q first %v", sortOrder, sorted[0]["name"])
	}
	col, _ := g.State().Column("name")
	if col.SortOrder != SortAsc {
		t.Fatalf("column sort order = %q", col.SortOrder)
	}

	g.Sort(ctx, Event{Kind: "sort"}, "name")
	if sortOrder != SortDesc || sorted[0]["name"] != "elder" {
		t.Fatalf("second sort: order %q first %v", sortOrder, sorted[0]["name"])
	}

	g.Sort(ctx, Event{Kind: "sort"}, "qty")
	s := g.State()
	name, _ := s.Column("name")
	qty, _ := s.Column("qty")
	if name.SortOrder != SortNone || qty.SortOrder != SortAsc {
		t.Fatalf("single sort violated: name=%q qty=%q", name.SortOrder, qty.SortOrder)
	}

	g.Search(ctx, Event{Kind: "search"}, "color", "RED")
	if searchQuery != "RED" || searchCount != 2 {
		t.Fatalf("search hook: %q %d", searchQuery, searchCount)
	}
	if got := g.State().ColumnQueries["color"]; got != "RED" {
		t.Fatalf("column query = %q", got)
	}

	g.Search(ctx, Event{Kind: "search"}, "color", "")
	if searchCount != 5 || len(g.SearchEntries()) != 0 {
		t.Fatalf("clearing search: count %d entries %v", searchCount, g.SearchEntries())
	}
}

func TestSortRejectedForUnsortableColumns(t *testing.T) {
	g := New(DefaultConfig())
	g.SetColumns([]map[string]any{
		{"name": "a", "sortable": false},
		{"name": "b", "action": true},
		{"name": "c"},
	})
	g.SetData(context.Background(), []Row{{"a": 1, "c": 2}}, "")
	for _, name := range []string{"a", "b", "missing"} {
		if g.SortBy(context.Background(), Event{}, name, SortAsc) {
			t.Errorf("sort on %q accepted", name)
		}
	}
	if !g.SortBy(context.Background(), Event{}, "c", SortAsc) {
		t.Error("sort on c rejected")
	}
}

func TestSetColumnsSeedsSort(t *testing.T) {
	g := New(DefaultConfig())
	g.SetColumns([]map[string]any{{"name": "name"}, {"name": "qty", "sortOrder": "desc"}})
	g.SetData(context.Background(), fruitRows(), "")
	if first := g.State().Rows[0]["name"]; first != "cherry" {
		t.Fatalf("first row = %v, want cherry", first)
	}
	g.SetColumns([]map[string]any{{"name": "name"}})
	if _, ok := g.SortSpec(); ok {
		t.Fatal("sort spec kept after its column was removed")
	}
}

func TestPageChange(t *testing.T) {
	type change struct{ page, prev, rows, first int }
	var changes []change
	g := newFruitGrid(t, DefaultConfig(), WithHooks(Hooks{
		OnPageChange: func(_ Event, page, prev, rows, first int) {
			changes = append(changes, change{page, prev, rows, first})
		},
	}))
	ev := Event{Kind: "page"}

	if !g.NextPage(ev) || !g.NextPage(ev) {
		t.Fatal("next page rejected")
	}
	if g.NextPage(ev) {
		t.Fatal("moved past the last page")
	}
	if g.SetPage(ev, 0) || g.SetPage(ev, 3) {
		t.Fatal("invalid or current page accepted")
	}
	want := []change{{2, 1, 2, 3}, {3, 2, 1, 5}}
	if len(changes) != len(want) {
		t.Fatalf("changes = %+v", changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Fatalf("change %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
	if rows := g.PageRows(); len(rows) != 1 || rows[0]["name"] != "elder" {
		t.Fatalf("last page rows = %v", rows)
	}

	g.Search(context.Background(), Event{}, "name", "a")
	if g.CurrentPage() != 1 {
		t.Fatalf("search did not return to page 1")
	}
}

func TestSetPageSize(t *testing.T) {
	g := newFruitGrid(t, DefaultConfig())
	g.SetPage(Event{}, 2)
	g.SetPageSize(4)
	s := g.State()
	if s.ActivePage != 1 || s.PageRows != 4 || s.NoOfPages != 2 {
		t.Fatalf("after SetPageSize: %+v", s)
	}
	g.SetPageSize(0)
	if s := g.State(); s.PageRows != 2 {
		t.Fatalf("page size 0 should fall back to the hint, got %d", s.PageRows)
	}

	unhinted := New(DefaultConfig())
	unhinted.SetColumns(fruitColumns())
	unhinted.SetData(context.Background(), fruitRows(), "")
	unhinted.SetPageSize(3)
	unhinted.SetPageSize(0)
	if s := unhinted.State(); s.PageRows != 5 || s.NoOfPages != 1 {
		t.Fatalf("page size 0 without a hint should be unpaged, got %d rows over %d pages", s.PageRows, s.NoOfPages)
	}
}

func aiConfig() Config {
	cfg := DefaultConfig()
	cfg.AISearch = AIOptions{Enabled: true, MinRowCount: 1}
	return cfg
}

func TestAISearchResultReplacesGlobalFilter(t *testing.T) {
	var calls int
	provider := func(_ context.Context, rows []Row, query string) ([]Row, error) {
		calls++
		return []Row{rows[4], rows[0]}, nil
	}
	g := newFruitGrid(t, aiConfig(), WithAISearch(provider))
	g.GlobalSearch(context.Background(), Event{}, "something sweet")

	s := g.State()
	if calls != 1 || s.TotalRows != 2 || s.AIFailed {
		t.Fatalf("calls=%d total=%d failed=%v", calls, s.TotalRows, s.AIFailed)
	}
	if s.Rows[0]["name"] != "elder" {
		t.Fatalf("AI order not kept: %v", s.Rows[0]["name"])
	}
}

func TestAISearchBelowThresholdSkipped(t *testing.T) {
	cfg := aiConfig()
	cfg.AISearch.MinRowCount = 100
	called := false
	g := newFruitGrid(t, cfg, WithAISearch(func(context.Context, []Row, string) ([]Row, error) {
		called = true
		return nil, nil
	}))
	g.GlobalSearch(context.Background(), Event{}, "red")
	if called {
		t.Fatal("provider called below the row threshold")
	}
	if got := g.State().TotalRows; got != 2 {
		t.Fatalf("local global search rows = %d", got)
	}
}

func TestAISearchFailureFallsBack(t *testing.T) {
	g := newFruitGrid(t, aiConfig(), WithAISearch(func(context.Context, []Row, string) ([]Row, error) {
		return nil, errors.New("provider unavailable")
	}))
	g.GlobalSearch(context.Background(), Event{}, "red")
	s := g.State()
	if !s.AIFailed {
		t.Fatal("failure flag not set")
	}
	if s.TotalRows != 2 {
		t.Fatalf("fallback rows = %d, want 2", s.TotalRows)
	}
}

func TestStaleAISearchDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	provider := func(_ context.Context, rows []Row, query string) ([]Row, error) {
		if query == "slow" {
			close(entered)
			<-release
			return rows[:1], nil
		}
		return rows[1:3], nil
	}
	g := newFruitGrid(t, aiConfig(), WithAISearch(provider))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		g.GlobalSearch(context.Background(), Event{}, "slow")
	}()
	<-entered
	g.GlobalSearch(context.Background(), Event{}, "fast")
	close(release)
	wg.Wait()

	s := g.State()
	if s.TotalRows != 2 || s.GlobalQuery != "fast" {
		t.Fatalf("stale result committed: total=%d query=%q", s.TotalRows, s.GlobalQuery)
	}
}

func TestCustomFilterAndSort(t *testing.T) {
	var filterCalls, sortCalls int
	g := New(DefaultConfig(),
		WithFilter(func(rows []Row, entries []SearchEntry) []Row {
			filterCalls++
			return FilterRows(rows, entries)
		}),
		WithSort(func(rows []Row, spec SortSpec) []Row {
			sortCalls++
			return SortRows(rows, spec)
		}),
	)
	g.SetColumns(fruitColumns())
	g.SetData(context.Background(), fruitRows(), "")
	g.SortBy(context.Background(), Event{}, "name", SortAsc)
	if filterCalls != 2 || sortCalls != 1 {
		t.Fatalf("filter=%d sort=%d", filterCalls, sortCalls)
	}
}

func TestHooksMayReenterGrid(t *testing.T) {
	var g *Grid
	var page int
	g = newFruitGrid(t, DefaultConfig(), WithHooks(Hooks{
		OnPageChange: func(Event, int, int, int, int) {
			page = g.API().CurrentPage()
		},
	}))
	g.SetPage(Event{}, 2)
	if page != 2 {
		t.Fatalf("page seen from hook = %d", page)
	}
}

func TestRowEventsReceiveCopies(t *testing.T) {
	var seen []string
	g := newFruitGrid(t, DefaultConfig(), WithHooks(Hooks{
		OnRowClick: func(ev Event, row Row) {
			row["name"] = "mutated"
			seen = append(seen, ev.String())
		},
		OnRowHover: func(ev Event, _ Row) { seen = append(seen, ev.String()) },
		OnRowOut:   func(ev Event, _ Row) { seen = append(seen, ev.String()) },
	}))
	row := g.PageRows()[0]
	g.RowClick(Event{Kind: "click", Source: "mouse"}, row)
	g.RowHover(Event{Kind: "hover"}, row)
	g.RowOut(Event{Kind: "out"}, row)
	if row["name"] == "mutated" {
		t.Fatal("hook mutated the caller's row")
	}
	if got := fmt.Sprint(seen); got != "[click(mouse) hover out]" {
		t.Fatalf("events = %s", got)
	}
}
