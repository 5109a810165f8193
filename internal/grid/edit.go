package grid

import (
	"errors"
	"reflect"
)

var (
	ErrEditDisabled = errors.New("cell editing is disabled")
	ErrNotEditable  = errors.New("column is not editable")
	ErrNoRow        = errors.New("row not found on the current page")
	ErrNotEditing   = errors.New("no cell is being edited")
)

// EditEngine runs the single inline edit session of a grid. The session is
// bound to one row; pre-edit values of the fields touched are buffered so
// Revert can restore them.
type EditEngine struct {
	g *Grid

	buffer  map[string]any
	changed bool
}

// EditableColumns returns the names of the editable visible columns in
// display order.
func (e *EditEngine) EditableColumns() []string {
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	return e.editableLocked()
}

func (e *EditEngine) editableLocked() []string {
	s := &e.g.state
	if !s.Config.CellEdit {
		return nil
	}
	var out []string
	for _, c := range s.Columns {
		if c.Editable && !c.Hidden && !c.Action {
			out = append(out, c.Name)
		}
	}
	return out
}

// Editing returns the active edit target.
func (e *EditEngine) Editing() (EditingCell, bool) {
	e.g.mu.Lock()
	defer e.g.mu.Unlock()
	if e.g.state.Editing == nil {
		return EditingCell{}, false
	}
	return *e.g.state.Editing, true
}

// Begin opens the cell at pageRow (index into the active page) and column.
// Moving to another row closes the previous session first.
func (e *EditEngine) Begin(pageRow int, column string) error {
	g := e.g
	g.mu.Lock()
	if !g.state.Config.CellEdit {
		g.mu.Unlock()
		return ErrEditDisabled
	}
	col, ok := g.state.Column(column)
	if !ok || !col.Editable || col.Hidden || col.Action {
		g.mu.Unlock()
		return ErrNotEditable
	}
	abs := g.state.FirstRow + pageRow
	if pageRow < 0 || pageRow >= g.state.CurrentPageRows || abs >= len(g.state.Rows) {
		g.mu.Unlock()
		return ErrNoRow
	}
	base, ok := RowIndex(g.state.Rows[abs])
	if !ok {
		g.mu.Unlock()
		return ErrNoRow
	}
	current := g.state.Editing
	g.mu.Unlock()

	if current != nil && current.BaseRowIndex != base {
		e.Commit(true)
	}

	g.mu.Lock()
	g.update(withEditing(&EditingCell{RowIndex: pageRow, ColumnName: column, BaseRowIndex: base}))
	g.mu.Unlock()
	return nil
}

// Value returns the current value of the edited cell.
func (e *EditEngine) Value() (any, bool) {
	g := e.g
	g.mu.Lock()
	defer g.mu.Unlock()
	cell := g.state.Editing
	if cell == nil {
		return nil, false
	}
	row := e.rowLocked(cell)
	if row == nil {
		return nil, false
	}
	v, ok := row[cell.ColumnName]
	return v, ok
}

func (e *EditEngine) rowLocked(cell *EditingCell) Row {
	s := &e.g.state
	abs := s.FirstRow + cell.RowIndex
	if abs >= 0 && abs < len(s.Rows) {
		if idx, ok := RowIndex(s.Rows[abs]); ok && idx == cell.BaseRowIndex {
			return s.Rows[abs]
		}
	}
	for _, r := range s.Rows {
		if idx, ok := RowIndex(r); ok && idx == cell.BaseRowIndex {
			return r
		}
	}
	// filtered out since the session began
	if base := cell.BaseRowIndex; base >= 0 && base < len(e.g.received) {
		return e.g.received[base]
	}
	return nil
}

// SetValue writes v into the edited cell of both the displayed rows and the
// canonical dataset.
func (e *EditEngine) SetValue(v any) error {
	g := e.g
	g.mu.Lock()
	defer g.mu.Unlock()
	cell := g.state.Editing
	if cell == nil {
		return ErrNotEditing
	}
	row := e.rowLocked(cell)
	if row == nil {
		return ErrNoRow
	}
	old, had := row[cell.ColumnName]
	if _, buffered := e.buffer[cell.ColumnName]; !buffered {
		if had {
			e.buffer[cell.ColumnName] = old
		} else {
			e.buffer[cell.ColumnName] = nil
		}
	}
	if !reflect.DeepEqual(old, v) {
		e.changed = true
	}
	e.writeLocked(cell.BaseRowIndex, cell.ColumnName, v)
	return nil
}

// writeLocked replaces the row with a copy carrying the new value so rows
// handed out earlier are not mutated.
func (e *EditEngine) writeLocked(base int, column string, v any) {
	g := e.g
	g.update(func(s *State) {
		for i, r := range s.Rows {
			if idx, ok := RowIndex(r); ok && idx == base {
				next := r.Clone()
				next[column] = v
				s.Rows[i] = next
				break
			}
		}
	})
	if base >= 0 && base < len(g.received) {
		next := g.received[base].Clone()
		next[column] = v
		received := append([]Row(nil), g.received...)
		received[base] = next
		g.received = received
	}
}

// Commit closes the field. With exit it also ends the row session and, when a
// value changed, reports the row through OnCellUpdate.
func (e *EditEngine) Commit(exit bool) bool {
	g := e.g
	g.mu.Lock()
	cell := g.state.Editing
	if cell == nil {
		g.mu.Unlock()
		return false
	}
	if !exit {
		g.mu.Unlock()
		return true
	}

	changed := e.changed
	var update CellUpdate
	if changed {
		row := e.rowLocked(cell)
		update = CellUpdate{RowIndex: cell.BaseRowIndex, UpdatedRow: row.Clone()}
		for _, name := range e.editableLocked() {
			update.EditedColumns = append(update.EditedColumns, EditedColumn{ColName: name, Value: row[name]})
		}
	}
	e.resetLocked()
	hook := g.hooks.OnCellUpdate
	g.mu.Unlock()

	if changed && hook != nil {
		hook(update)
	}
	return true
}

// Revert restores every buffered value and ends the session.
func (e *EditEngine) Revert() {
	g := e.g
	g.mu.Lock()
	defer g.mu.Unlock()
	cell := g.state.Editing
	if cell != nil {
		for name, v := range e.buffer {
			e.writeLocked(cell.BaseRowIndex, name, v)
		}
	}
	e.resetLocked()
}

func (e *EditEngine) resetLocked() {
	e.buffer = map[string]any{}
	e.changed = false
	e.g.update(withEditing(nil))
}

// Navigate moves to the next (or previous) editable field in the row. At the
// row boundary it commits and ends the session, returning true.
func (e *EditEngine) Navigate(forward bool) bool {
	g := e.g
	g.mu.Lock()
	cell := g.state.Editing
	if cell == nil {
		g.mu.Unlock()
		return true
	}
	fields := e.editableLocked()
	pos := -1
	for i, name := range fields {
		if name == cell.ColumnName {
			pos = i
			break
		}
	}
	next := pos + 1
	if !forward {
		next = pos - 1
	}
	if pos < 0 || next < 0 || next >= len(fields) {
		g.mu.Unlock()
		e.Commit(true)
		return true
	}
	moved := *cell
	moved.ColumnName = fields[next]
	g.update(withEditing(&moved))
	g.mu.Unlock()
	return false
}

// Enter acts like a forward Tab unless focus sits on an interactive control.
func (e *EditEngine) Enter(onInteractive bool) bool {
	if onInteractive {
		return false
	}
	return e.Navigate(true)
}

// Blur ends the session when focus leaves the edit container.
func (e *EditEngine) Blur() {
	e.Commit(true)
}
