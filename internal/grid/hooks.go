package grid

// ColumnOrder describes one visible column in the order reported after a drag.
type ColumnOrder struct {
	Name         string
	Alias        string
	DisplayIndex int
}

type EditedColumn struct {
	ColName string
	Value   any
}

// CellUpdate is reported once per committed edit session that changed a value.
type CellUpdate struct {
	RowIndex      int
	EditedColumns []EditedColumn
	UpdatedRow    Row
}

// Hooks are the host callbacks. Every argument is a copy; hooks may call back
// into the grid.
type Hooks struct {
	OnRowClick       func(ev Event, row Row)
	OnRowHover       func(ev Event, row Row)
	OnRowOut         func(ev Event, row Row)
	OnSortComplete   func(ev Event, col Column, rows []Row, order SortOrder)
	OnSearchComplete func(ev Event, query string, entries []SearchEntry, rows []Row, count int)
	OnPageChange     func(ev Event, page, prevPage, currentPageRows, firstRowNumber int)
	OnColumnResized  func(ev Event, width int, colName string)
	OnColumnDragEnd  func(colName string, order []ColumnOrder)
	OnCellUpdate     func(update CellUpdate)
	OnRowSelect      func(ev Event, row Row, selected bool)
	OnSelectAll      func(ev Event, rows []Row, selected bool)
}
