package grid

import "fmt"

// Reset clears searches, sort and selection and returns to page 1 over the
// canonical dataset. It never panics; failures are logged.
func (g *Grid) Reset() (ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			g.log.Errorf("grid reset failed: %v", fmt.Sprint(r))
			ok = false
		}
	}()

	g.searches = nil
	g.globalQuery = ""
	g.sortSpec = nil
	g.generation++
	g.editor.buffer = map[string]any{}
	g.editor.changed = false

	rows := g.filter(g.received, nil)
	paging := Paginate(len(rows), g.effectivePageSizeLocked(len(rows)), 1)
	g.update(
		withRows(rows),
		withPaging(paging),
		withSortOrders("", SortNone),
		withEditing(nil),
		func(s *State) {
			s.Selected = map[int]struct{}{}
			for k := range s.ColumnQueries {
				s.ColumnQueries[k] = ""
			}
			s.GlobalQuery = ""
			s.AIFailed = false
		},
	)
	g.log.Debugf("grid reset, %d rows", len(rows))
	return true
}
