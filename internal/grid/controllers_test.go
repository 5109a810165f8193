package grid

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestResizeClampsAndCommits(t *testing.T) {
	tests := []struct {
		name  string
		delta int
		want  int
	}{
		{"grow", 6, 16},
		{"shrink", -4, 6},
		{"far left", -1000, MinColumnWidth},
		{"far right", 1000, MaxColumnWidth},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotWidth int
			var gotName string
			g := New(DefaultConfig(), WithHooks(Hooks{
				OnColumnResized: func(_ Event, width int, name string) { gotWidth, gotName = width, name },
			}))
			g.SetColumns([]map[string]any{{"name": "a", "width": 10}, {"name": "b", "width": 8}})
			g.ComputeLayout()

			r := g.Resizer()
			if !r.Begin("a", 50) {
				t.Fatal("begin rejected")
			}
			live, ok := r.Move(50 + tt.delta)
			if !ok || live != tt.want {
				t.Fatalf("live width = %d, want %d", live, tt.want)
			}
			if col, _ := g.State().Column("a"); col.Width != 10 {
				t.Fatalf("width committed during move: %d", col.Width)
			}

			width, ok := r.End(Event{Kind: "resize"}, 50+tt.delta)
			if !ok || width != tt.want || gotWidth != tt.want || gotName != "a" {
				t.Fatalf("end = %d, hook = %d %q", width, gotWidth, gotName)
			}
			if col, _ := g.State().Column("a"); col.Width != tt.want {
				t.Fatalf("committed width = %d", col.Width)
			}
			if layout := g.Layout(); layout["b"].Left != tt.want {
				t.Fatalf("b offset = %d, want %d", layout["b"].Left, tt.want)
			}
			if _, active := r.Active(); active {
				t.Fatal("gesture still active")
			}
		})
	}
}

func TestResizeRespectsFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ColumnResize = false
	g := New(cfg)
	g.SetColumns([]map[string]any{{"name": "a"}, {"name": "b", "resizable": true}})

	if g.Resizer().Begin("a", 0) {
		t.Fatal("resize allowed with grid default off")
	}
	if !g.Resizer().Begin("b", 0) {
		t.Fatal("column flag ignored")
	}
	g.Resizer().Cancel()
	if _, ok := g.Resizer().End(Event{}, 10); ok {
		t.Fatal("cancelled gesture committed")
	}
}

func TestComputeLayoutOffsets(t *testing.T) {
	g := New(DefaultConfig())
	g.SetColumns([]map[string]any{
		{"name": "sel", "action": true, "width": 4, "fixed": true},
		{"name": "a", "width": 10},
		{"name": "gone", "hidden": true, "width": 9},
		{"name": "b"},
		{"name": "c", "width": 5},
	})
	layout := g.ComputeLayout()
	want := map[string]ColumnLayout{
		"sel": {Width: 4, Left: 0},
		"a":   {Width: 10, Left: 0},
		"b":   {Width: 16, Left: 10},
		"c":   {Width: 5, Left: 26},
	}
	if !reflect.DeepEqual(layout, want) {
		t.Fatalf("layout = %+v", layout)
	}
}

func dragGrid(t *testing.T, hooks Hooks) *Grid {
	t.Helper()
	g := New(DefaultConfig(), WithHooks(hooks))
	g.SetColumns([]map[string]any{
		{"name": "id", "fixed": true},
		{"name": "a", "alias": "Alpha"},
		{"name": "b"},
		{"name": "h", "hidden": true},
		{"name": "c"},
	})
	return g
}

func TestDragReorders(t *testing.T) {
	var dragged string
	var order []ColumnOrder
	g := dragGrid(t, Hooks{OnColumnDragEnd: func(name string, o []ColumnOrder) { dragged, order = name, o }})

	d := g.Dragger()
	if !d.Start(4) || !d.Drop(2) {
		t.Fatal("drag rejected")
	}
	if got := names(g.State().Columns); !equalStrings(got, []string{"id", "c", "a", "b", "h"}) {
		t.Fatalf("order = %v", got)
	}
	want := []ColumnOrder{
		{Name: "id", DisplayIndex: 1},
		{Name: "c", DisplayIndex: 2},
		{Name: "a", Alias: "Alpha", DisplayIndex: 3},
		{Name: "b", DisplayIndex: 4},
	}
	if dragged != "c" || !reflect.DeepEqual(order, want) {
		t.Fatalf("hook: %q %+v", dragged, order)
	}
}

func TestDragRejections(t *testing.T) {
	tests := []struct {
		name         string
		start, target int
	}{
		{"fixed onto unfixed", 1, 3},
		{"unfixed onto fixed", 2, 1},
		{"onto itself", 2, 2},
		{"unknown target", 2, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			g := dragGrid(t, Hooks{OnColumnDragEnd: func(string, []ColumnOrder) { called = true }})
			before := g.State()
			d := g.Dragger()
			if d.Start(tt.start) && d.Drop(tt.target) {
				t.Fatal("drop accepted")
			}
			if called {
				t.Fatal("callback invoked")
			}
			if !reflect.DeepEqual(before.Columns, g.State().Columns) {
				t.Fatal("columns changed")
			}
		})
	}
}

func TestDragDisabledColumn(t *testing.T) {
	g := New(DefaultConfig())
	g.SetColumns([]map[string]any{{"name": "a", "draggable": false}, {"name": "b"}})
	if g.Dragger().Start(1) {
		t.Fatal("non-draggable column picked up")
	}
	if !g.Dragger().MoveBy(2, -1) {
		t.Fatal("MoveBy rejected")
	}
	if got := names(g.State().Columns); !equalStrings(got, []string{"b", "a"}) {
		t.Fatalf("order = %v", got)
	}
}

func TestDragGate(t *testing.T) {
	tests := []struct {
		name  string
		moves [][2]int
		want  bool
	}{
		{"below threshold", [][2]int{{2, 0}}, false},
		{"horizontal", [][2]int{{2, 0}, {6, 1}}, true},
		{"vertical scroll", [][2]int{{1, 6}, {20, 6}}, false},
		{"stays active", [][2]int{{8, 0}, {8, 30}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate := DragGate{Threshold: 5}
			gate.Arm(0, 0)
			var got bool
			for _, m := range tt.moves {
				got = gate.Move(m[0], m[1])
			}
			if got != tt.want {
				t.Fatalf("active = %v, want %v", got, tt.want)
			}
			if gate.Release() != tt.want {
				t.Fatal("release disagrees with state")
			}
		})
	}
}

func editGrid(t *testing.T, hooks Hooks) *Grid {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CellEdit = true
	g := New(cfg, WithHooks(hooks))
	g.SetColumns([]map[string]any{
		{"name": "name", "editable": true},
		{"name": "age"},
		{"name": "city", "editable": true},
	})
	g.SetData(context.Background(), []Row{
		{"name": "Alice", "age": 30, "city": "Oslo"},
		{"name": "Bob", "age": 41, "city": "Rome"},
	}, "")
	return g
}

func TestEditCommit(t *testing.T) {
	var updates []CellUpdate
	g := editGrid(t, Hooks{OnCellUpdate: func(u CellUpdate) { updates = append(updates, u) }})
	e := g.Editor()

	if err := e.Begin(1, "name"); err != nil {
		t.Fatal(err)
	}
	if cell, ok := e.Editing(); !ok || cell.BaseRowIndex != 1 || cell.ColumnName != "name" {
		t.Fatalf("editing = %+v", cell)
	}
	if err := e.SetValue("Charlie"); err != nil {
		t.Fatal(err)
	}
	if !e.Commit(true) {
		t.Fatal("commit found no session")
	}

	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	u := updates[0]
	want := []EditedColumn{{ColName: "name", Value: "Charlie"}, {ColName: "city", Value: "Rome"}}
	if u.RowIndex != 1 || !reflect.DeepEqual(u.EditedColumns, want) || u.UpdatedRow["name"] != "Charlie" {
		t.Fatalf("update = %+v", u)
	}
	if got := g.Received()[1]["name"]; got != "Charlie" {
		t.Fatalf("canonical row = %v", got)
	}
	if _, ok := e.Editing(); ok {
		t.Fatal("session still open")
	}
}

func TestEditCommitAfterRowFilteredOut(t *testing.T) {
	var updates []CellUpdate
	g := editGrid(t, Hooks{OnCellUpdate: func(u CellUpdate) { updates = append(updates, u) }})
	e := g.Editor()

	if err := e.Begin(1, "name"); err != nil {
		t.Fatal(err)
	}
	if err := e.SetValue("Charlie"); err != nil {
		t.Fatal(err)
	}
	g.Search(context.Background(), Event{}, "name", "alice")
	if n := len(g.State().Rows); n != 1 {
		t.Fatalf("filtered rows = %d, want 1", n)
	}
	if v, ok := e.Value(); !ok || v != "Charlie" {
		t.Fatalf("value after filter = %v, %v", v, ok)
	}
	if !e.Commit(true) {
		t.Fatal("commit found no session")
	}

	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	u := updates[0]
	want := []EditedColumn{{ColName: "name", Value: "Charlie"}, {ColName: "city", Value: "Rome"}}
	if u.RowIndex != 1 || !reflect.DeepEqual(u.EditedColumns, want) || u.UpdatedRow["name"] != "Charlie" {
		t.Fatalf("update = %+v", u)
	}
}

func TestEditRevert(t *testing.T) {
	called := false
	g := editGrid(t, Hooks{OnCellUpdate: func(CellUpdate) { called = true }})
	e := g.Editor()

	if err := e.Begin(1, "name"); err != nil {
		t.Fatal(err)
	}
	e.SetValue("Charlie")
	e.SetValue("Chuck")
	e.Revert()
	e.Commit(true)

	if called {
		t.Fatal("revert reported an update")
	}
	if got := g.State().Rows[1]["name"]; got != "Bob" {
		t.Fatalf("view row = %v", got)
	}
	if got := g.Received()[1]["name"]; got != "Bob" {
		t.Fatalf("canonical row = %v", got)
	}
}

func TestEditUnchangedCommitIsSilent(t *testing.T) {
	called := false
	g := editGrid(t, Hooks{OnCellUpdate: func(CellUpdate) { called = true }})
	e := g.Editor()
	e.Begin(0, "name")
	e.SetValue("Alice")
	e.Blur()
	if called {
		t.Fatal("unchanged value reported")
	}
}

func TestEditNavigation(t *testing.T) {
	g := editGrid(t, Hooks{})
	e := g.Editor()
	if got := e.EditableColumns(); !equalStrings(got, []string{"name", "city"}) {
		t.Fatalf("editable = %v", got)
	}

	e.Begin(0, "name")
	if e.Enter(true) {
		t.Fatal("enter on an interactive control moved focus")
	}
	if e.Navigate(true) {
		t.Fatal("exited before the last field")
	}
	if cell, _ := e.Editing(); cell.ColumnName != "city" {
		t.Fatalf("moved to %q", cell.ColumnName)
	}
	if e.Navigate(false) {
		t.Fatal("exited moving back")
	}
	if !e.Navigate(false) {
		t.Fatal("shift-tab on the first field should exit")
	}
	if _, ok := e.Editing(); ok {
		t.Fatal("session still open")
	}

	e.Begin(0, "city")
	if !e.Enter(false) {
		t.Fatal("enter on the last field should exit")
	}
}

func TestEditBeginErrors(t *testing.T) {
	g := editGrid(t, Hooks{})
	e := g.Editor()
	tests := []struct {
		row    int
		column string
		want   error
	}{
		{0, "age", ErrNotEditable},
		{0, "missing", ErrNotEditable},
		{5, "name", ErrNoRow},
		{-1, "name", ErrNoRow},
	}
	for _, tt := range tests {
		if err := e.Begin(tt.row, tt.column); !errors.Is(err, tt.want) {
			t.Errorf("Begin(%d, %q) = %v, want %v", tt.row, tt.column, err, tt.want)
		}
	}
	if err := e.SetValue("x"); !errors.Is(err, ErrNotEditing) {
		t.Errorf("SetValue without session = %v", err)
	}

	off := New(DefaultConfig())
	off.SetColumns([]map[string]any{{"name": "name", "editable": true}})
	off.SetData(context.Background(), []Row{{"name": "x"}}, "")
	if err := off.Editor().Begin(0, "name"); !errors.Is(err, ErrEditDisabled) {
		t.Errorf("disabled grid: %v", err)
	}
}

func TestEditMovingRowsCommitsPrevious(t *testing.T) {
	var updates []CellUpdate
	g := editGrid(t, Hooks{OnCellUpdate: func(u CellUpdate) { updates = append(updates, u) }})
	e := g.Editor()
	e.Begin(0, "city")
	e.SetValue("Bergen")
	e.Begin(1, "city")
	if len(updates) != 1 || updates[0].RowIndex != 0 {
		t.Fatalf("updates = %+v", updates)
	}
	if cell, _ := e.Editing(); cell.BaseRowIndex != 1 {
		t.Fatalf("editing = %+v", cell)
	}
}
