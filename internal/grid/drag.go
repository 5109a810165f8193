package grid

// DragController tracks a header drag-and-drop. Columns are addressed by
// DisplayIndex.
type DragController struct {
	g *Grid

	active    bool
	dragOrder int
	dragFixed bool
}

func (g *Grid) draggableLocked(col Column) bool {
	if col.Draggable != nil {
		return *col.Draggable
	}
	return g.state.Config.ColumnDrag
}

// Start picks up the column at displayIndex.
func (d *DragController) Start(displayIndex int) bool {
	g := d.g
	g.mu.Lock()
	defer g.mu.Unlock()
	col, ok := columnByDisplayIndex(g.state.Columns, displayIndex)
	if !ok || !g.draggableLocked(col) {
		return false
	}
	d.active = true
	d.dragOrder = displayIndex
	d.dragFixed = col.Fixed
	return true
}

// Dragging reports the display index being dragged.
func (d *DragController) Dragging() (int, bool) {
	d.g.mu.Lock()
	defer d.g.mu.Unlock()
	return d.dragOrder, d.active
}

func (d *DragController) Cancel() {
	d.g.mu.Lock()
	defer d.g.mu.Unlock()
	d.active = false
	d.dragOrder = 0
}

// Drop moves the dragged column to the position of the column at target.
// Moves across the fixed boundary, onto itself or to unknown columns are
// rejected and leave state untouched.
func (d *DragController) Drop(target int) bool {
	g := d.g
	g.mu.Lock()
	if !d.active {
		g.mu.Unlock()
		return false
	}
	source := d.dragOrder
	d.active = false
	d.dragOrder = 0

	cols := g.state.Columns
	from := indexByDisplayIndex(cols, source)
	to := indexByDisplayIndex(cols, target)
	if from < 0 || to < 0 || from == to || cols[from].Fixed != cols[to].Fixed || cols[from].Fixed != d.dragFixed {
		g.mu.Unlock()
		return false
	}

	next := cloneColumns(cols)
	moved := next[from]
	next = append(next[:from], next[from+1:]...)
	next = append(next[:to], append([]Column{moved}, next[to:]...)...)
	reindex(next)
	g.update(withColumns(next))
	g.recomputeOffsetsLocked()

	order := make([]ColumnOrder, 0, len(next))
	for _, c := range next {
		if c.Hidden {
			continue
		}
		order = append(order, ColumnOrder{Name: c.Name, Alias: c.Alias, DisplayIndex: c.DisplayIndex})
	}
	hook := g.hooks.OnColumnDragEnd
	g.mu.Unlock()

	if hook != nil {
		hook(moved.Name, order)
	}
	return true
}

// MoveBy drags the column at displayIndex delta positions left or right.
func (d *DragController) MoveBy(displayIndex, delta int) bool {
	if !d.Start(displayIndex) {
		return false
	}
	if !d.Drop(displayIndex + delta) {
		d.Cancel()
		return false
	}
	return true
}

func columnByDisplayIndex(cols []Column, displayIndex int) (Column, bool) {
	if i := indexByDisplayIndex(cols, displayIndex); i >= 0 {
		return cols[i], true
	}
	return Column{}, false
}

func indexByDisplayIndex(cols []Column, displayIndex int) int {
	if displayIndex < 1 {
		return -1
	}
	for i, c := range cols {
		if c.DisplayIndex == displayIndex && !c.Hidden {
			return i
		}
	}
	return -1
}

// DragGate decides when a pointer gesture becomes a column drag: it must
// travel at least Threshold cells and more horizontally than vertically, so
// vertical scrolling is left alone.
type DragGate struct {
	Threshold int

	armed  bool
	active bool
	startX int
	startY int
}

func (t *DragGate) Arm(x, y int) {
	t.armed = true
	t.active = false
	t.startX = x
	t.startY = y
}

// Move reports whether the gesture is (now) an active drag.
func (t *DragGate) Move(x, y int) bool {
	if !t.armed {
		return false
	}
	if t.active {
		return true
	}
	dx, dy := abs(x-t.startX), abs(y-t.startY)
	threshold := t.Threshold
	if threshold <= 0 {
		threshold = 1
	}
	if dx < threshold && dy < threshold {
		return false
	}
	if dx > dy {
		t.active = true
		return true
	}
	t.armed = false
	return false
}

func (t *DragGate) Release() bool {
	wasActive := t.active
	t.armed = false
	t.active = false
	return wasActive
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
