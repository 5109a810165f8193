package grid

import (
	"testing"
)

func names(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func displayIndexes(cols []Column) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i] = c.DisplayIndex
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProcessColumnsOrdering(t *testing.T) {
	tests := []struct {
		name    string
		raw     any
		want    []string
		indexes []int
	}{
		{
			name: "order ties broken by name",
			raw: []map[string]any{
				{"name": "b", "order": 2},
				{"name": "a", "order": 2},
				{"name": "c", "order": 1},
			},
			want:    []string{"c", "a", "b"},
			indexes: []int{1, 2, 3},
		},
		{
			name: "fixed columns first",
			raw: []map[string]any{
				{"name": "x"},
				{"name": "y", "fixed": true},
				{"name": "z"},
			},
			want:    []string{"y", "x", "z"},
			indexes: []int{1, 2, 3},
		},
		{
			name: "unordered fill free slots",
			raw: []map[string]any{
				{"name": "a"},
				{"name": "b", "order": 1},
				{"name": "c"},
			},
			want:    []string{"b", "a", "c"},
			indexes: []int{1, 2, 3},
		},
		{
			name: "hidden columns are not indexed",
			raw: []map[string]any{
				{"name": "a"},
				{"name": "b", "hidden": true},
				{"name": "c"},
			},
			want:    []string{"a", "b", "c"},
			indexes: []int{1, 0, 2},
		},
		{
			name: "blank and duplicate names dropped",
			raw: []any{
				map[string]any{"name": "a"},
				map[string]any{"name": ""},
				map[string]any{"alias": "no name"},
				map[string]any{"name": "a"},
				map[string]any{"name": "b"},
			},
			want:    []string{"a", "b"},
			indexes: []int{1, 2},
		},
		{
			name:    "not a column list",
			raw:     "columns",
			want:    []string{},
			indexes: []int{},
		},
		{
			name:    "nil input",
			raw:     nil,
			want:    []string{},
			indexes: []int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ProcessColumns(tt.raw, nil)
			if !equalStrings(names(got), tt.want) {
				t.Fatalf("order = %v, want %v", names(got), tt.want)
			}
			idx := displayIndexes(got)
			for i := range idx {
				if idx[i] != tt.indexes[i] {
					t.Fatalf("display indexes = %v, want %v", idx, tt.indexes)
				}
			}
		})
	}
}

func TestProcessColumnsCarriesForwardLayout(t *testing.T) {
	first := ProcessColumns([]map[string]any{
		{"name": "a", "width": "120px"},
		{"name": "b"},
		{"name": "c"},
	}, nil)
	first[1].Width = 30

	again := ProcessColumns([]map[string]any{
		{"name": "c"},
		{"name": "b", "width": 10},
		{"name": "a"},
		{"name": "d"},
	}, first)

	if want := []string{"a", "b", "c", "d"}; !equalStrings(names(again), want) {
		t.Fatalf("order = %v, want %v", names(again), want)
	}
	if again[0].Width != 120 {
		t.Errorf("a width = %d, want 120", again[0].Width)
	}
	if again[1].Width != 30 {
		t.Errorf("b width = %d, want carried 30", again[1].Width)
	}
}

func TestProcessColumnsDecodesAttributes(t *testing.T) {
	cols := ProcessColumns([]any{
		map[string]any{
			"name":      "full",
			"alias":     "Full name",
			"sortOrder": "DESC",
			"sortable":  false,
			"concatColumns": map[string]any{
				"columns":   []any{"first", "last"},
				"separator": ", ",
			},
			"formatting": map[string]any{"type": "date", "format": "dd/MM/yyyy"},
		},
	}, nil)
	if len(cols) != 1 {
		t.Fatalf("got %d columns", len(cols))
	}
	c := cols[0]
	if c.Label() != "Full name" {
		t.Errorf("label = %q", c.Label())
	}
	if c.SortOrder != SortDesc {
		t.Errorf("sort order = %q", c.SortOrder)
	}
	if c.Sortable == nil || *c.Sortable {
		t.Errorf("sortable = %v, want explicit false", c.Sortable)
	}
	if c.Concat == nil || !equalStrings(c.Concat.Columns, []string{"first", "last"}) || c.Concat.Separator != ", " {
		t.Errorf("concat = %+v", c.Concat)
	}
	if c.Formatting == nil || c.Formatting.Type != CellDate || c.Formatting.Format != "dd/MM/yyyy" {
		t.Errorf("formatting = %+v", c.Formatting)
	}
}

func TestToggleHidden(t *testing.T) {
	cols := ProcessColumns([]map[string]any{
		{"name": "a", "hideable": true},
		{"name": "b"},
	}, nil)

	out, ok := toggleHidden(cols, "a")
	if !ok || !out[0].Hidden || out[1].DisplayIndex != 1 {
		t.Fatalf("toggle a: ok=%v cols=%+v", ok, out)
	}
	if cols[0].Hidden {
		t.Fatal("input columns were modified")
	}
	if _, ok := toggleHidden(cols, "b"); ok {
		t.Fatal("non-hideable column toggled")
	}
}
