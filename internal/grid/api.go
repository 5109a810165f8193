package grid

// Handle is the command and query surface handed to embedding code. Reads
// return copies and fall back to empty results on an unloaded grid.
type Handle struct {
	g *Grid
}

func (g *Grid) API() *Handle {
	return &Handle{g: g}
}

// FilteredRows returns the filtered and sorted rows across all pages.
func (h *Handle) FilteredRows() []Row {
	if h == nil || h.g == nil {
		return []Row{}
	}
	h.g.mu.Lock()
	defer h.g.mu.Unlock()
	return cloneRows(h.g.state.Rows, nil)
}

// PageRows returns the filtered and sorted rows on the active page.
func (h *Handle) PageRows() []Row {
	if h == nil || h.g == nil {
		return []Row{}
	}
	h.g.mu.Lock()
	defer h.g.mu.Unlock()
	return cloneRows(h.g.state.PageRowSlice(), nil)
}

// FilteredSelectedRows returns the selected rows within the filtered view.
func (h *Handle) FilteredSelectedRows() []Row {
	if h == nil || h.g == nil {
		return []Row{}
	}
	h.g.mu.Lock()
	defer h.g.mu.Unlock()
	return cloneRows(h.g.state.Rows, h.g.state.IsSelected)
}

// AllSelectedRows returns the selected rows of the canonical dataset,
// including those filtered out.
func (h *Handle) AllSelectedRows() []Row {
	if h == nil || h.g == nil {
		return []Row{}
	}
	h.g.mu.Lock()
	defer h.g.mu.Unlock()
	return cloneRows(h.g.received, h.g.state.IsSelected)
}

func (h *Handle) CurrentPage() int {
	if h == nil || h.g == nil {
		return 1
	}
	return h.g.CurrentPage()
}

func (h *Handle) ResetGrid() {
	if h == nil || h.g == nil {
		return
	}
	h.g.Reset()
}

func (h *Handle) ClearSelectedRows() {
	if h == nil || h.g == nil {
		return
	}
	h.g.ClearSelection()
}

func cloneRows(rows []Row, keep func(int) bool) []Row {
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if keep != nil {
			idx, ok := RowIndex(r)
			if !ok || !keep(idx) {
				continue
			}
		}
		out = append(out, r.Clone())
	}
	return out
}
