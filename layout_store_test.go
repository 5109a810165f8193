package main

import (
	"testing"

	"github.com/bekirdag/gridview/internal/grid"
)

func intPtr(v int) *int { return &v }

func TestLayoutStoreRoundTrip(t *testing.T) {
	store, err := openLayoutStore(t.TempDir())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	cols := []grid.Column{
		{Name: "price", Width: 12},
		{Name: "name", Width: 30, Hidden: true},
		{Name: "actions", Action: true},
	}
	if err := store.Save("sales.csv", cols); err != nil {
		t.Fatalf("save: %v", err)
	}
	saved, err := store.Load("sales.csv")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []savedColumn{
		{Name: "price", Width: 12, Position: 1},
		{Name: "name", Width: 30, Position: 2, Hidden: true},
	}
	if len(saved) != len(want) {
		t.Fatalf("saved %d columns, want %d: %+v", len(saved), len(want), saved)
	}
	for i := range want {
		if saved[i] != want[i] {
			t.Fatalf("column %d = %+v, want %+v", i, saved[i], want[i])
		}
	}

	// a second save replaces the first
	if err := store.Save("sales.csv", cols[:1]); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if saved, _ = store.Load("sales.csv"); len(saved) != 1 {
		t.Fatalf("resave kept %d columns", len(saved))
	}

	if err := store.Forget("sales.csv"); err != nil {
		t.Fatalf("forget: %v", err)
	}
	if saved, _ = store.Load("sales.csv"); len(saved) != 0 {
		t.Fatalf("forget left %+v", saved)
	}
}

func TestLayoutStoreNil(t *testing.T) {
	var store *layoutStore
	if err := store.Save("x", []grid.Column{{Name: "a"}}); err != nil {
		t.Fatalf("save on nil store: %v", err)
	}
	if saved, err := store.Load("x"); err != nil || saved != nil {
		t.Fatalf("load on nil store: %v %v", saved, err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close on nil store: %v", err)
	}
}

func TestApplySavedLayout(t *testing.T) {
	cols := []grid.Column{
		{Name: "id", Order: intPtr(1)},
		{Name: "name", Hideable: true},
		{Name: "secret"},
		{Name: "added"},
	}
	saved := []savedColumn{
		{Name: "name", Width: 24, Position: 3, Hidden: true},
		{Name: "secret", Position: 2, Hidden: true},
		{Name: "id", Width: 6, Position: 4},
		{Name: "gone", Width: 9, Position: 1},
	}
	out := applySavedLayout(cols, saved)
	if len(out) != len(cols) {
		t.Fatalf("got %d columns, want %d", len(out), len(cols))
	}

	tests := []struct {
		name   string
		width  int
		hidden bool
		order  int
	}{
		{"id", 6, false, 1},
		{"name", 24, true, 3},
		{"secret", 0, false, 2},
		{"added", 0, false, 0},
	}
	for i, tt := range tests {
		c := out[i]
		if c.Name != tt.name || c.Width != tt.width || c.Hidden != tt.hidden {
			t.Fatalf("column %d = %+v, want %+v", i, c, tt)
		}
		got := 0
		if c.Order != nil {
			got = *c.Order
		}
		if got != tt.order {
			t.Fatalf("%s order = %d, want %d", tt.name, got, tt.order)
		}
	}
	if cols[1].Order != nil || cols[1].Width != 0 {
		t.Fatal("input columns were modified")
	}
}

func TestDatasetKey(t *testing.T) {
	if got := datasetKey("  "); got != "-" {
		t.Fatalf("empty dataset key = %q", got)
	}
	if got := datasetKey("curl -s https://example.com/rows"); got != "curl -s https://example.com/rows" {
		t.Fatalf("command dataset key = %q", got)
	}
}
