package grid

const (
	MinColumnWidth = 4
	MaxColumnWidth = 80
)

// ColumnLayout is the computed width and left offset of a rendered column.
type ColumnLayout struct {
	Width int
	Left  int
}

// ComputeLayout fills the computed width table from the visible columns, in
// display order, and returns a copy. Action columns do not advance the offset.
func (g *Grid) ComputeLayout() map[string]ColumnLayout {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.layout = make(map[string]ColumnLayout, len(g.state.Columns))
	for _, c := range g.state.Columns {
		if c.Hidden {
			continue
		}
		w := c.Width
		if w <= 0 {
			w = g.state.Config.DefaultColumnWidth
		}
		g.layout[c.Name] = ColumnLayout{Width: clampWidth(w)}
	}
	g.recomputeOffsetsLocked()
	return g.layoutCopyLocked()
}

// Layout returns the computed width table as last populated.
func (g *Grid) Layout() map[string]ColumnLayout {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.layoutCopyLocked()
}

func (g *Grid) layoutCopyLocked() map[string]ColumnLayout {
	out := make(map[string]ColumnLayout, len(g.layout))
	for k, v := range g.layout {
		out[k] = v
	}
	return out
}

func (g *Grid) recomputeOffsetsLocked() {
	left := 0
	for _, c := range g.state.Columns {
		entry, ok := g.layout[c.Name]
		if !ok || c.Hidden {
			continue
		}
		entry.Left = left
		g.layout[c.Name] = entry
		if !c.Action {
			left += entry.Width
		}
	}
}

func clampWidth(w int) int {
	if w < MinColumnWidth {
		return MinColumnWidth
	}
	if w > MaxColumnWidth {
		return MaxColumnWidth
	}
	return w
}

// ResizeController tracks one column border drag. Positions are in cells.
// Live widths are reported to the renderer but only End writes to state.
type ResizeController struct {
	g *Grid

	active     bool
	column     string
	startPos   int
	startWidth int
	liveWidth  int
}

// Begin starts a resize of column at pointer position pos. It refuses
// columns that are not resizable.
func (r *ResizeController) Begin(column string, pos int) bool {
	g := r.g
	g.mu.Lock()
	defer g.mu.Unlock()

	col, ok := g.state.Column(column)
	if !ok || col.Hidden || !g.resizableLocked(col) {
		return false
	}
	width := col.Width
	if l, ok := g.layout[column]; ok && l.Width > 0 {
		width = l.Width
	}
	if width <= 0 {
		width = g.state.Config.DefaultColumnWidth
	}
	r.active = true
	r.column = column
	r.startPos = pos
	r.startWidth = width
	r.liveWidth = clampWidth(width)
	return true
}

func (g *Grid) resizableLocked(col Column) bool {
	if col.Resizable != nil {
		return *col.Resizable
	}
	return g.state.Config.ColumnResize
}

// Move returns the clamped live width for pointer position pos.
func (r *ResizeController) Move(pos int) (int, bool) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	if !r.active {
		return 0, false
	}
	r.liveWidth = clampWidth(r.startWidth + (pos - r.startPos))
	return r.liveWidth, true
}

// End commits the final width for pointer position pos, updates the computed
// width table and reports the resize.
func (r *ResizeController) End(ev Event, pos int) (int, bool) {
	g := r.g
	g.mu.Lock()
	if !r.active {
		g.mu.Unlock()
		return 0, false
	}
	width := clampWidth(r.startWidth + (pos - r.startPos))
	name := r.column
	r.active = false
	r.column = ""

	g.update(func(s *State) {
		for i := range s.Columns {
			if s.Columns[i].Name == name {
				s.Columns[i].Width = width
			}
		}
	})
	entry := g.layout[name]
	entry.Width = width
	g.layout[name] = entry
	g.recomputeOffsetsLocked()
	hook := g.hooks.OnColumnResized
	g.mu.Unlock()

	if hook != nil {
		hook(ev, width, name)
	}
	return width, true
}

// Cancel abandons the gesture without touching state.
func (r *ResizeController) Cancel() {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	r.active = false
	r.column = ""
}

func (r *ResizeController) Active() (string, bool) {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	return r.column, r.active
}

// LiveWidth is the width last computed by Move.
func (r *ResizeController) LiveWidth() int {
	r.g.mu.Lock()
	defer r.g.mu.Unlock()
	return r.liveWidth
}
