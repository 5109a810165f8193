package main

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/bekirdag/gridview/internal/grid"
)

const (
	gutterWidth = 4
	separator   = "│"
)

// headerRegion is where one column landed on screen. The resize handle is
// the separator cell at x1.
type headerRegion struct {
	col     grid.Column
	x0, x1  int
	clipped bool
}

type linkRegion struct {
	link   grid.PageLink
	x0, x1 int
}

// gridView owns cursor and scroll positions; the grid itself knows nothing
// about the terminal.
type gridView struct {
	width, height int
	hScroll       int
	vScroll       int
	cursorRow     int
	cursorCol     int
	gutter        bool

	liveName  string
	liveWidth int
}

// cellSource is what the view needs from the grid for one frame.
type cellSource struct {
	state    grid.State
	layout   map[string]grid.ColumnLayout
	editing  *grid.EditingCell
	editView string
	dragFrom int
	dragOver int
}

func renderableColumns(st grid.State) []grid.Column {
	var out []grid.Column
	for _, c := range st.VisibleColumns() {
		if !c.Action {
			out = append(out, c)
		}
	}
	return out
}

func (v *gridView) columnWidth(c grid.Column, layout map[string]grid.ColumnLayout, def int) int {
	if c.Name == v.liveName && v.liveWidth > 0 {
		return v.liveWidth
	}
	if l, ok := layout[c.Name]; ok && l.Width > 0 {
		return l.Width
	}
	if c.Width > 0 {
		return c.Width
	}
	if def <= 0 {
		def = grid.MinColumnWidth
	}
	return def
}

// regions lays the columns out left to right: fixed columns always, then the
// scrollable ones starting at hScroll until the width runs out.
func (v *gridView) regions(cols []grid.Column, layout map[string]grid.ColumnLayout, def int) []headerRegion {
	x := 0
	if v.gutter {
		x = gutterWidth
	}
	var out []headerRegion
	scrollable := 0
	for _, c := range cols {
		if !c.Fixed {
			if scrollable < v.hScroll {
				scrollable++
				continue
			}
			scrollable++
		}
		w := v.columnWidth(c, layout, def)
		remaining := v.width - x - 1
		if remaining < 1 {
			break
		}
		region := headerRegion{col: c, x0: x}
		if w > remaining {
			w = remaining
			region.clipped = true
		}
		region.x1 = x + w
		out = append(out, region)
		x += w + 1
		if region.clipped {
			break
		}
	}
	return out
}

// ensureColumnVisible moves hScroll so the cursor column is drawn unclipped
// whenever it fits at all.
func (v *gridView) ensureColumnVisible(cols []grid.Column, layout map[string]grid.ColumnLayout, def int) {
	if len(cols) == 0 {
		v.cursorCol = 0
		v.hScroll = 0
		return
	}
	v.cursorCol = clampInt(v.cursorCol, 0, len(cols)-1)
	target := cols[v.cursorCol]
	if target.Fixed {
		return
	}
	idx := 0
	for _, c := range cols[:v.cursorCol] {
		if !c.Fixed {
			idx++
		}
	}
	if idx < v.hScroll {
		v.hScroll = idx
		return
	}
	for v.hScroll < idx {
		shown := false
		for _, r := range v.regions(cols, layout, def) {
			if r.col.Name == target.Name && !r.clipped {
				shown = true
				break
			}
		}
		if shown {
			return
		}
		v.hScroll++
	}
}

func (v *gridView) ensureRowVisible(rows int) {
	if rows <= 0 {
		v.cursorRow, v.vScroll = 0, 0
		return
	}
	v.cursorRow = clampInt(v.cursorRow, 0, rows-1)
	h := v.bodyHeight()
	if v.cursorRow < v.vScroll {
		v.vScroll = v.cursorRow
	}
	if v.cursorRow >= v.vScroll+h {
		v.vScroll = v.cursorRow - h + 1
	}
	v.vScroll = clampInt(v.vScroll, 0, max(0, rows-h))
}

func (v *gridView) bodyHeight() int {
	return max(1, v.height-2)
}

// columnAt returns the region under screen column x.
func columnAt(regions []headerRegion, x int) (headerRegion, bool) {
	for _, r := range regions {
		if x >= r.x0 && x < r.x1 {
			return r, true
		}
	}
	return headerRegion{}, false
}

// handleAt returns the column whose resize handle is at x.
func handleAt(regions []headerRegion, x int) (headerRegion, bool) {
	for _, r := range regions {
		if !r.clipped && x == r.x1 {
			return r, true
		}
	}
	return headerRegion{}, false
}

func fitCell(text string, width int) string {
	text = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(text)
	if runewidth.StringWidth(text) > width {
		text = runewidth.Truncate(text, width, "…")
	}
	return runewidth.FillRight(text, width)
}

func sortGlyph(order grid.SortOrder) string {
	switch order {
	case grid.SortAsc:
		return " ▲"
	case grid.SortDesc:
		return " ▼"
	}
	return ""
}

// render draws header, rule and the visible slice of page rows.
func (v *gridView) render(s styles, src cellSource) string {
	st := src.state
	cols := renderableColumns(st)
	regions := v.regions(cols, src.layout, st.Config.DefaultColumnWidth)
	rows := st.PageRowSlice()

	var b strings.Builder
	sep := s.statusHint.Render(separator)

	if v.gutter {
		mark := "[ ]"
		if pageSelected(st, rows) {
			mark = "[x]"
		}
		b.WriteString(fitCell(mark, gutterWidth))
	}
	for _, r := range regions {
		label := r.col.Label() + sortGlyph(r.col.SortOrder)
		if q := st.ColumnQueries[r.col.Name]; q != "" {
			label += " ⌕"
		}
		style := s.header
		switch {
		case src.dragFrom > 0 && r.col.DisplayIndex == src.dragFrom:
			style = s.headerDrag
		case src.dragOver > 0 && r.col.DisplayIndex == src.dragOver:
			style = s.headerActive
		case v.cursorCol < len(cols) && cols[v.cursorCol].Name == r.col.Name:
			style = s.headerActive
		}
		b.WriteString(style.Render(fitCell(label, r.x1-r.x0)))
		b.WriteString(sep)
	}
	b.WriteRune('\n')
	width := 0
	if len(regions) > 0 {
		width = regions[len(regions)-1].x1 + 1
	}
	b.WriteString(s.statusHint.Render(strings.Repeat("─", max(width, 1))))

	if len(rows) == 0 {
		b.WriteRune('\n')
		b.WriteString(s.statusHint.Render(fitCell("no rows", max(width, 8))))
		return b.String()
	}

	end := min(len(rows), v.vScroll+v.bodyHeight())
	for i := v.vScroll; i < end; i++ {
		row := rows[i]
		idx, _ := grid.RowIndex(row)
		marked := st.IsSelected(idx)
		var line strings.Builder
		if v.gutter {
			mark := "[ ]"
			if marked {
				mark = "[x]"
			}
			line.WriteString(fitCell(mark, gutterWidth))
		}
		for _, r := range regions {
			w := r.x1 - r.x0
			if src.editing != nil && src.editing.RowIndex == i && src.editing.ColumnName == r.col.Name {
				line.WriteString(s.cellEditing.Render(fitCell(src.editView, w)))
			} else {
				line.WriteString(fitCell(grid.DisplayText(row, r.col), w))
			}
			line.WriteString(separator)
		}
		style := s.cell
		switch {
		case i == v.cursorRow:
			style = s.cellCursor
		case marked:
			style = s.rowMarked
		}
		b.WriteRune('\n')
		b.WriteString(style.Render(line.String()))
	}
	return b.String()
}

func pageSelected(st grid.State, rows []grid.Row) bool {
	if len(rows) == 0 {
		return false
	}
	for _, r := range rows {
		idx, ok := grid.RowIndex(r)
		if !ok || !st.IsSelected(idx) {
			return false
		}
	}
	return true
}

// pageBar renders the page links and where each landed, for mouse hits.
func pageBar(s styles, links []grid.PageLink) (string, []linkRegion) {
	var parts []string
	var regions []linkRegion
	x := 0
	for _, l := range links {
		var label string
		switch l.Kind {
		case grid.LinkPrev:
			label = "‹"
		case grid.LinkNext:
			label = "›"
		case grid.LinkEllipsis:
			label = "…"
		default:
			label = strconv.Itoa(l.Page)
		}
		style := s.pageLink
		switch {
		case l.Disabled:
			style = s.pageOff
		case l.Active:
			style = s.pageActive
		}
		rendered := style.Render(label)
		w := lipgloss.Width(rendered)
		regions = append(regions, linkRegion{link: l, x0: x, x1: x + w})
		parts = append(parts, rendered)
		x += w
	}
	return strings.Join(parts, ""), regions
}

func linkAt(regions []linkRegion, x int) (grid.PageLink, bool) {
	for _, r := range regions {
		if x >= r.x0 && x < r.x1 && !r.link.Disabled && !r.link.Active {
			return r.link, true
		}
	}
	return grid.PageLink{}, false
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
