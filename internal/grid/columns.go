package grid

import (
	"sort"
	"strconv"
	"strings"
)

// ProcessColumns normalizes raw column definitions into display order: fixed
// columns first, explicit orders honoured within each group, DisplayIndex
// assigned densely over the visible columns. Width and order carry forward
// from prev when a column keeps its name. Unusable input yields no columns.
func ProcessColumns(raw any, prev []Column) []Column {
	cols := decodeColumns(raw)
	if len(cols) == 0 {
		return []Column{}
	}

	previous := make(map[string]Column, len(prev))
	for _, p := range prev {
		previous[p.Name] = p
	}

	var fixed, others []Column
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		if strings.TrimSpace(c.Name) == "" || seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		if p, ok := previous[c.Name]; ok {
			if p.Width > 0 {
				c.Width = p.Width
			}
			if p.DisplayIndex > 0 {
				order := p.DisplayIndex
				c.Order = &order
			}
		}
		if c.Fixed {
			fixed = append(fixed, c)
		} else {
			others = append(others, c)
		}
	}

	out := append(placeByOrder(fixed), placeByOrder(others)...)
	reindex(out)
	return out
}

// placeByOrder puts ordered columns on their requested slot, shifting
// conflicts to the next free slot, then fills the gaps with the unordered
// columns in input order.
func placeByOrder(cols []Column) []Column {
	if len(cols) == 0 {
		return nil
	}
	var ordered, unordered []Column
	for _, c := range cols {
		if c.Order != nil {
			ordered = append(ordered, c)
		} else {
			unordered = append(unordered, c)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if *ordered[i].Order != *ordered[j].Order {
			return *ordered[i].Order < *ordered[j].Order
		}
		return ordered[i].Name < ordered[j].Name
	})

	slots := make(map[int]Column, len(cols))
	for _, c := range ordered {
		slot := *c.Order
		if slot < 1 {
			slot = 1
		}
		for {
			if _, taken := slots[slot]; !taken {
				break
			}
			slot++
		}
		slots[slot] = c
	}
	next := 1
	for _, c := range unordered {
		for {
			if _, taken := slots[next]; !taken {
				break
			}
			next++
		}
		slots[next] = c
	}

	keys := make([]int, 0, len(slots))
	for k := range slots {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]Column, 0, len(keys))
	for _, k := range keys {
		out = append(out, slots[k])
	}
	return out
}

// reindex assigns DisplayIndex 1..N over visible columns; hidden columns get 0.
func reindex(cols []Column) {
	n := 0
	for i := range cols {
		if cols[i].Hidden {
			cols[i].DisplayIndex = 0
			continue
		}
		n++
		cols[i].DisplayIndex = n
	}
}

func decodeColumns(raw any) []Column {
	switch v := raw.(type) {
	case []Column:
		return cloneColumns(v)
	case []map[string]any:
		out := make([]Column, 0, len(v))
		for _, m := range v {
			if c, ok := columnFromMap(m); ok {
				out = append(out, c)
			}
		}
		return out
	case []any:
		out := make([]Column, 0, len(v))
		for _, item := range v {
			switch m := item.(type) {
			case map[string]any:
				if c, ok := columnFromMap(m); ok {
					out = append(out, c)
				}
			case Column:
				out = append(out, m.clone())
			}
		}
		return out
	}
	return nil
}

func columnFromMap(m map[string]any) (Column, bool) {
	name, ok := m["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return Column{}, false
	}
	c := Column{
		Name:     name,
		Alias:    stringField(m, "alias"),
		Fixed:    boolField(m, "fixed"),
		Hidden:   boolField(m, "hidden"),
		Hideable: boolField(m, "hideable"),
		Editable: boolField(m, "editable"),
		Action:   boolField(m, "action"),
	}
	if w, ok := intField(m, "width"); ok {
		c.Width = w
	}
	if o, ok := intField(m, "order"); ok {
		c.Order = &o
	}
	c.Resizable = optBoolField(m, "resizable")
	c.Sortable = optBoolField(m, "sortable")
	c.Draggable = optBoolField(m, "draggable")
	c.SortOrder = ParseSortOrder(stringField(m, "sortOrder"))
	if concat, ok := m["concatColumns"].(map[string]any); ok {
		cc := &ConcatColumns{Separator: stringField(concat, "separator")}
		if list, ok := concat["columns"].([]any); ok {
			for _, item := range list {
				if s, ok := item.(string); ok && s != "" {
					cc.Columns = append(cc.Columns, s)
				}
			}
		}
		if len(cc.Columns) > 0 {
			c.Concat = cc
		}
	}
	if f, ok := m["formatting"].(map[string]any); ok {
		c.Formatting = &Formatting{
			Type:   ParseCellType(stringField(f, "type")),
			Format: stringField(f, "format"),
		}
	}
	if values, ok := m["values"].([]any); ok {
		for _, item := range values {
			c.Values = append(c.Values, toText(item))
		}
	}
	return c, true
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func optBoolField(m map[string]any, key string) *bool {
	b, ok := m[key].(bool)
	if !ok {
		return nil
	}
	return &b
}

// intField accepts numbers and "120" / "120px" strings.
func intField(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px"))
		return n, err == nil
	}
	return 0, false
}

// toggleHidden flips a hideable column's visibility and re-indexes.
func toggleHidden(cols []Column, name string) ([]Column, bool) {
	out := cloneColumns(cols)
	for i := range out {
		if out[i].Name != name {
			continue
		}
		if !out[i].Hideable {
			return cols, false
		}
		out[i].Hidden = !out[i].Hidden
		reindex(out)
		return out, true
	}
	return cols, false
}
