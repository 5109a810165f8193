package grid

// ToggleRow flips the selection of the row with origin index and reports it
// through OnRowSelect.
func (g *Grid) ToggleRow(ev Event, index int) bool {
	g.mu.Lock()
	if !g.state.Config.RowSelection {
		g.mu.Unlock()
		return false
	}
	var row Row
	for _, r := range g.received {
		if idx, ok := RowIndex(r); ok && idx == index {
			row = r
			break
		}
	}
	if row == nil {
		g.mu.Unlock()
		return false
	}
	selected := !g.state.IsSelected(index)
	g.update(func(s *State) {
		if selected {
			s.Selected[index] = struct{}{}
		} else {
			delete(s.Selected, index)
		}
	})
	hook := g.hooks.OnRowSelect
	g.mu.Unlock()

	if hook != nil {
		hook(ev, row.Clone(), selected)
	}
	return selected
}

// SelectAll selects or clears every row on the active page.
func (g *Grid) SelectAll(ev Event, selected bool) {
	g.mu.Lock()
	if !g.state.Config.RowSelection {
		g.mu.Unlock()
		return
	}
	page := g.state.PageRowSlice()
	g.update(func(s *State) {
		for _, r := range page {
			idx, ok := RowIndex(r)
			if !ok {
				continue
			}
			if selected {
				s.Selected[idx] = struct{}{}
			} else {
				delete(s.Selected, idx)
			}
		}
	})
	hook := g.hooks.OnSelectAll
	g.mu.Unlock()

	if hook != nil {
		out := make([]Row, len(page))
		for i, r := range page {
			out[i] = r.Clone()
		}
		hook(ev, out, selected)
	}
}

// PageSelected reports whether every row on the active page is selected.
func (g *Grid) PageSelected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	page := g.state.PageRowSlice()
	if len(page) == 0 {
		return false
	}
	for _, r := range page {
		idx, ok := RowIndex(r)
		if !ok || !g.state.IsSelected(idx) {
			return false
		}
	}
	return true
}

func (g *Grid) ClearSelection() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.update(func(s *State) { s.Selected = map[int]struct{}{} })
}
