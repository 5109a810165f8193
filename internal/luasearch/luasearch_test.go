package luasearch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bekirdag/gridview/internal/grid"
)

const byName = `
function search(rows, query)
  local out = {}
  for _, row in ipairs(rows) do
    if string.find(string.lower(row.name), query, 1, true) then
      table.insert(out, row)
    end
  end
  return out
end
`

func rows() []grid.Row {
	return []grid.Row{
		{grid.IndexKey: 0, "name": "Apple", "qty": 3, "tags": []any{"red"}},
		{grid.IndexKey: 1, "name": "Banana", "qty": 12.5},
		{grid.IndexKey: 2, "name": "Pineapple", "ok": true},
	}
}

func names(rs []grid.Row) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i], _ = r["name"].(string)
	}
	return out
}

func TestSearchReturnsRows(t *testing.T) {
	p, err := LoadString(byName)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	got, err := p.Search(context.Background(), rows(), "apple")
	if err != nil {
		t.Fatal(err)
	}
	if n := names(got); len(n) != 2 || n[0] != "Apple" || n[1] != "Pineapple" {
		t.Fatalf("got %v", n)
	}
}

func TestSearchReturnsIndexes(t *testing.T) {
	p, err := LoadString(`function search(rows, q) return {2, 0, 2, 9} end`)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	got, err := p.Search(context.Background(), rows(), "x")
	if err != nil {
		t.Fatal(err)
	}
	if n := names(got); len(n) != 2 || n[0] != "Pineapple" || n[1] != "Apple" {
		t.Fatalf("got %v", n)
	}
}

func TestSearchErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"runtime error", `function search(rows, q) error("boom") end`},
		{"wrong return type", `function search(rows, q) return "nope" end`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := LoadString(tt.src)
			if err != nil {
				t.Fatal(err)
			}
			defer p.Close()
			if _, err := p.Search(context.Background(), rows(), "q"); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	p, err := LoadString(`function search(rows, q) return nil end`)
	if err != nil {
		t.Fatal(err)
	}
	if got, err := p.Search(context.Background(), rows(), "q"); err != nil || len(got) != 0 {
		t.Fatalf("nil result: %v %v", got, err)
	}
	p.Close()
	if _, err := p.Search(context.Background(), rows(), "q"); err == nil {
		t.Fatal("closed provider searched")
	}
}

func TestLoadRejectsScripts(t *testing.T) {
	if _, err := LoadString(`x = 1`); err == nil {
		t.Fatal("script without search accepted")
	}
	if _, err := LoadString(`function search(`); err == nil {
		t.Fatal("syntax error accepted")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.lua")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestSearchHonoursContext(t *testing.T) {
	p, err := LoadString(`function search(rows, q) while true do end end`)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := p.Search(ctx, rows(), "q"); err == nil {
		t.Fatal("runaway script not stopped")
	}
}

func TestProviderDrivesGrid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search.lua")
	if err := os.WriteFile(path, []byte(byName), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close()

	cfg := grid.DefaultConfig()
	cfg.AISearch = grid.AIOptions{Enabled: true}
	g := grid.New(cfg, grid.WithAISearch(p.Search))
	g.SetColumns([]map[string]any{{"name": "name"}})
	g.SetData(context.Background(), []grid.Row{{"name": "Apple"}, {"name": "Banana"}, {"name": "Pineapple"}}, "")
	g.GlobalSearch(context.Background(), grid.Event{Kind: "search"}, "apple")

	if n := names(g.API().FilteredRows()); len(n) != 2 || n[1] != "Pineapple" {
		t.Fatalf("filtered = %v", n)
	}
	if g.State().AIFailed {
		t.Fatal("provider reported as failed")
	}
}
