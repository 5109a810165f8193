package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const fruitCSV = `name,color,price
apple,red,3
banana,yellow,1
cherry,red,7
date,brown,5
`

func writeFruit(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fruit.csv")
	if err := os.WriteFile(path, []byte(fruitCSV), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestRunCSV(t *testing.T) {
	path := writeFruit(t)
	tests := []struct {
		name string
		opts options
		want string
	}{
		{
			name: "all rows",
			opts: options{},
			want: "name,color,price\napple,red,3\nbanana,yellow,1\ncherry,red,7\ndate,brown,5\n",
		},
		{
			name: "filter and sort",
			opts: options{filters: filterFlags{"color=red"}, sort: "price:desc"},
			want: "name,color,price\ncherry,red,7\napple,red,3\n",
		},
		{
			name: "global search",
			opts: options{search: "yellow"},
			want: "name,color,price\nbanana,yellow,1\n",
		},
		{
			name: "second page",
			opts: options{pageSize: 2, page: 2},
			want: "name,color,price\ncherry,red,7\ndate,brown,5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			o.path = path
			o.format = "csv"
			o.timeout = time.Minute
			var buf bytes.Buffer
			if err := run(o, &buf); err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunTable(t *testing.T) {
	var buf bytes.Buffer
	o := options{path: writeFruit(t), format: "table", timeout: time.Minute, filters: filterFlags{"name=cherry"}}
	if err := run(o, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "cherry") || strings.Contains(out, "banana") {
		t.Fatalf("unexpected table:\n%s", out)
	}
}

func TestRunErrors(t *testing.T) {
	path := writeFruit(t)
	tests := []struct {
		name string
		opts options
	}{
		{"no source", options{}},
		{"bad filter", options{path: path, filters: filterFlags{"color"}}},
		{"unknown column", options{path: path, filters: filterFlags{"weight=3"}}},
		{"bad direction", options{path: path, sort: "price:sideways"}},
		{"page out of range", options{path: path, pageSize: 2, page: 9}},
		{"bad format", options{path: path, format: "xml"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := tt.opts
			o.timeout = time.Minute
			if err := run(o, &bytes.Buffer{}); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
