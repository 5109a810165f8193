package grid

import (
	"strings"
)

// UpsertSearch replaces the entry for entry.ColName, dropping it when the new
// query is empty. Order of the remaining entries is kept.
func UpsertSearch(entries []SearchEntry, entry SearchEntry) []SearchEntry {
	out := make([]SearchEntry, 0, len(entries)+1)
	replaced := false
	for _, e := range entries {
		if e.ColName != entry.ColName {
			out = append(out, e)
			continue
		}
		replaced = true
		if entry.Query != "" {
			out = append(out, entry)
		}
	}
	if !replaced && entry.Query != "" {
		out = append(out, entry)
	}
	return out
}

// FilterRows narrows rows by every active entry (AND across entries).
func FilterRows(rows []Row, entries []SearchEntry) []Row {
	out := append([]Row(nil), rows...)
	for _, e := range entries {
		query := strings.ToLower(strings.TrimSpace(e.Query))
		if query == "" {
			continue
		}
		if e.ColName == GlobalSearchKey {
			out = filterGlobal(out, e.Columns, query)
			continue
		}
		col := Column{Name: e.ColName, Formatting: e.Formatting}
		if e.Column != nil {
			col = *e.Column
			if e.Formatting != nil {
				col.Formatting = e.Formatting
			}
		}
		out = filterBy(out, func(r Row) bool { return matchColumn(r, col, query) })
	}
	return out
}

// filterGlobal keeps a row when any visible column matches. Rows are kept in
// their incoming order, so a row matched by several columns appears once.
func filterGlobal(rows []Row, cols []Column, query string) []Row {
	var visible []Column
	for _, c := range cols {
		if !c.Hidden && !c.Action {
			visible = append(visible, c)
		}
	}
	if len(visible) == 0 {
		return filterBy(rows, func(r Row) bool {
			for k, v := range r {
				if k != IndexKey && matchValue(v, nil, query) {
					return true
				}
			}
			return false
		})
	}
	return filterBy(rows, func(r Row) bool {
		for _, c := range visible {
			if matchColumn(r, c, query) {
				return true
			}
		}
		return false
	})
}

func filterBy(rows []Row, keep func(Row) bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// matchColumn tests one column. Concatenated columns match when any of their
// source columns matches.
func matchColumn(r Row, col Column, query string) bool {
	if col.Concat != nil && len(col.Concat.Columns) > 0 {
		for _, name := range col.Concat.Columns {
			v, ok := lookupFold(r, name)
			if ok && matchValue(v, col.Formatting, query) {
				return true
			}
		}
		return false
	}
	v, _ := lookupFold(r, col.Name)
	return matchValue(v, col.Formatting, query)
}

func matchValue(v any, f *Formatting, query string) bool {
	if v == nil {
		return false
	}
	if strings.Contains(strings.ToLower(toText(v)), query) {
		return true
	}
	if f != nil && f.Type.isDate() && f.Format != "" {
		return strings.Contains(strings.ToLower(FormatValue(v, *f)), query)
	}
	return false
}

// lookupFold finds a row value by case-insensitive key.
func lookupFold(r Row, name string) (any, bool) {
	if v, ok := r[name]; ok {
		return v, true
	}
	for k, v := range r {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
