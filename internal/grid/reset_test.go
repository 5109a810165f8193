package grid

import (
	"context"
	"reflect"
	"testing"
)

func TestResetIdempotent(t *testing.T) {
	ctx := context.Background()
	g := newFruitGrid(t, DefaultConfig())
	g.SortBy(ctx, Event{}, "qty", SortDesc)
	g.Search(ctx, Event{}, "color", "r")
	g.GlobalSearch(ctx, Event{}, "e")
	g.SetPage(Event{}, 2)
	g.ToggleRow(Event{}, 2)

	if !g.Reset() {
		t.Fatal("reset failed")
	}
	once := g.State()
	g.Reset()
	twice := g.State()

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second reset changed state:\n%+v\n%+v", once, twice)
	}
	if len(g.SearchEntries()) != 0 {
		t.Fatal("search entries kept")
	}
	if _, ok := g.SortSpec(); ok {
		t.Fatal("sort kept")
	}
	if once.ActivePage != 1 || once.TotalRows != 5 || len(once.Selected) != 0 || once.GlobalQuery != "" {
		t.Fatalf("state after reset: %+v", once)
	}
	for _, c := range once.Columns {
		if c.SortOrder != SortNone {
			t.Fatalf("column %s keeps sort %q", c.Name, c.SortOrder)
		}
	}
	if q, ok := once.ColumnQueries["color"]; !ok || q != "" {
		t.Fatalf("column query = %q, %v", q, ok)
	}
	if once.Rows[0]["name"] != "banana" {
		t.Fatalf("rows not back in origin order: %v", once.Rows[0]["name"])
	}
}

func TestResetRecoversFromPanics(t *testing.T) {
	g := New(DefaultConfig(), WithFilter(func([]Row, []SearchEntry) []Row {
		panic("broken filter")
	}))
	if g.Reset() {
		t.Fatal("reset reported success")
	}
	// The lock must have been released.
	if g.CurrentPage() != 1 {
		t.Fatal("unexpected page")
	}
}

func TestResetOnEmptyGrid(t *testing.T) {
	g := New(DefaultConfig())
	if !g.Reset() {
		t.Fatal("reset failed on an empty grid")
	}
	if s := g.State(); s.ActivePage != 1 || s.TotalRows != 0 {
		t.Fatalf("state = %+v", s)
	}
}
