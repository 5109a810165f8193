package grid

import (
	"fmt"
	"strings"
)

// IndexKey is the row field holding the origin position of a row within the
// most recent data set handed to SetData.
const IndexKey = "__$index__"

// GlobalSearchKey is the reserved SearchEntry column name for the grid-wide query.
const GlobalSearchKey = "##globalSearch##"

// Row is a single record. Values are whatever the loader produced.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RowIndex returns the origin index stored in the row.
func RowIndex(r Row) (int, bool) {
	if r == nil {
		return 0, false
	}
	switch v := r[IndexKey].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Toggle cycles none -> asc -> desc -> none.
func (o SortOrder) Toggle() SortOrder {
	switch o {
	case SortAsc:
		return SortDesc
	case SortDesc:
		return SortNone
	default:
		return SortAsc
	}
}

func ParseSortOrder(value string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "asc", "ascending":
		return SortAsc
	case "desc", "descending":
		return SortDesc
	default:
		return SortNone
	}
}

type ConcatColumns struct {
	Columns   []string
	Separator string
}

// Column describes one grid column. Nil feature pointers fall back to the
// grid-wide Config switches.
type Column struct {
	Name         string
	Alias        string
	Width        int
	Order        *int
	Fixed        bool
	Hidden       bool
	Hideable     bool
	Resizable    *bool
	Sortable     *bool
	Draggable    *bool
	Editable     bool
	Action       bool
	SortOrder    SortOrder
	DisplayIndex int
	Concat       *ConcatColumns
	Formatting   *Formatting
	Values       []string
}

// Label is the header text for the column.
func (c Column) Label() string {
	if strings.TrimSpace(c.Alias) != "" {
		return c.Alias
	}
	return c.Name
}

func (c Column) clone() Column {
	out := c
	if c.Order != nil {
		order := *c.Order
		out.Order = &order
	}
	if c.Concat != nil {
		concat := *c.Concat
		concat.Columns = append([]string(nil), c.Concat.Columns...)
		out.Concat = &concat
	}
	if c.Formatting != nil {
		f := *c.Formatting
		out.Formatting = &f
	}
	out.Values = append([]string(nil), c.Values...)
	return out
}

func cloneColumns(cols []Column) []Column {
	if cols == nil {
		return nil
	}
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = c.clone()
	}
	return out
}

// Event identifies what triggered a state change; it stands in for the UI
// event handed to host callbacks.
type Event struct {
	Kind   string
	Source string
}

func (e Event) String() string {
	if e.Source == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.Source)
}

type SearchEntry struct {
	ColName    string
	Query      string
	Column     *Column
	Columns    []Column
	Formatting *Formatting
}

type SortSpec struct {
	Column *Column
	Order  SortOrder
	Key    string
	Event  Event
}

type EditingCell struct {
	RowIndex     int
	ColumnName   string
	BaseRowIndex int
}

type ExportMode string

const (
	ExportNone    ExportMode = ""
	ExportVisible ExportMode = "visible"
	ExportAll     ExportMode = "all"
)

type AIOptions struct {
	Enabled     bool
	MinRowCount int
}

// Config holds the grid feature switches.
type Config struct {
	PageSize           int
	ColumnSearch       bool
	ColumnResize       bool
	ColumnDrag         bool
	GlobalSearch       bool
	CellEdit           bool
	Sorting            bool
	RowSelection       bool
	ShowToolbar        bool
	ShowFooter         bool
	Export             ExportMode
	ExportPrefix       string
	AISearch           AIOptions
	DefaultColumnWidth int
	Debug              bool
}

func DefaultConfig() Config {
	return Config{
		ColumnSearch:       true,
		ColumnResize:       true,
		ColumnDrag:         true,
		GlobalSearch:       true,
		Sorting:            true,
		RowSelection:       true,
		ShowToolbar:        true,
		ShowFooter:         true,
		Export:             ExportVisible,
		ExportPrefix:       "grid",
		DefaultColumnWidth: 16,
	}
}

// State is the render-ready grid record. It is treated as immutable: every
// transition goes through Apply, which hands patches a private copy.
type State struct {
	Columns         []Column
	Rows            []Row
	ActivePage      int
	PageRows        int
	NoOfPages       int
	LastPageRows    int
	FirstRow        int
	TotalRows       int
	CurrentPageRows int
	Selected        map[int]struct{}
	ColumnQueries   map[string]string
	GlobalQuery     string
	Editing         *EditingCell
	AIFailed        bool
	Config          Config
}

// Patch mutates the private copy handed to it by Apply.
type Patch func(*State)

// Apply returns a new State with the patches applied in order.
func (s State) Apply(patches ...Patch) State {
	next := s.clone()
	for _, p := range patches {
		if p != nil {
			p(&next)
		}
	}
	return next
}

func (s State) clone() State {
	out := s
	out.Columns = cloneColumns(s.Columns)
	if s.Rows != nil {
		out.Rows = append([]Row(nil), s.Rows...)
	}
	out.Selected = make(map[int]struct{}, len(s.Selected))
	for k := range s.Selected {
		out.Selected[k] = struct{}{}
	}
	out.ColumnQueries = make(map[string]string, len(s.ColumnQueries))
	for k, v := range s.ColumnQueries {
		out.ColumnQueries[k] = v
	}
	if s.Editing != nil {
		editing := *s.Editing
		out.Editing = &editing
	}
	return out
}

// IsSelected reports whether the row with the given origin index is selected.
func (s State) IsSelected(index int) bool {
	_, ok := s.Selected[index]
	return ok
}

// VisibleColumns returns the non-hidden columns in display order.
func (s State) VisibleColumns() []Column {
	var out []Column
	for _, c := range s.Columns {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Column looks a column up by name.
func (s State) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// PageRowSlice returns the rows on the active page.
func (s State) PageRowSlice() []Row {
	start, end := PageBounds(len(s.Rows), s.PageRows, s.ActivePage)
	if start >= end {
		return nil
	}
	return append([]Row(nil), s.Rows[start:end]...)
}

func withPaging(p Paging) Patch {
	return func(s *State) {
		s.TotalRows = p.TotalRows
		s.PageRows = p.PageRows
		s.ActivePage = p.ActivePage
		s.NoOfPages = p.NoOfPages
		s.LastPageRows = p.LastPageRows
		s.FirstRow = p.FirstRow
		s.CurrentPageRows = p.CurrentPageRows
	}
}

func withRows(rows []Row) Patch {
	return func(s *State) {
		s.Rows = rows
	}
}

func withColumns(cols []Column) Patch {
	return func(s *State) {
		s.Columns = cloneColumns(cols)
	}
}

func withSortOrders(key string, order SortOrder) Patch {
	return func(s *State) {
		for i := range s.Columns {
			if key != "" && s.Columns[i].Name == key {
				s.Columns[i].SortOrder = order
				continue
			}
			s.Columns[i].SortOrder = SortNone
		}
	}
}

func withEditing(cell *EditingCell) Patch {
	return func(s *State) {
		if cell == nil {
			s.Editing = nil
			return
		}
		c := *cell
		s.Editing = &c
	}
}
