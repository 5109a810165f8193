package grid

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

var ErrExportDisabled = errors.New("csv export is disabled")

// ExportFileName returns name with a .csv suffix, or
// "<prefix>-<yyyy-MM-dd HH:mm:ss>.csv" when name is empty.
func ExportFileName(prefix, name string, now time.Time) string {
	name = strings.TrimSpace(name)
	if name == "" {
		if prefix == "" {
			prefix = "grid"
		}
		name = fmt.Sprintf("%s-%s", prefix, now.Format("2006-01-02 15:04:05"))
	}
	if !strings.HasSuffix(strings.ToLower(name), ".csv") {
		name += ".csv"
	}
	return name
}

// WriteCSV writes the visible non-action columns of rows, headed by label.
// Cells are rendered with DisplayText.
func WriteCSV(w io.Writer, cols []Column, rows []Row) error {
	var export []Column
	for _, c := range cols {
		if !c.Hidden && !c.Action {
			export = append(export, c)
		}
	}
	if len(export) == 0 {
		return errors.New("no columns to export")
	}

	writer := csv.NewWriter(w)
	header := make([]string, len(export))
	for i, c := range export {
		header[i] = c.Label()
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		record := make([]string, len(export))
		for i, c := range export {
			record[i] = DisplayText(r, c)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportCSV writes the grid according to mode: the filtered view for
// ExportVisible, the whole canonical dataset for ExportAll.
func (g *Grid) ExportCSV(w io.Writer, mode ExportMode) error {
	g.mu.Lock()
	if mode == ExportNone {
		mode = g.state.Config.Export
	}
	cols := cloneColumns(g.state.Columns)
	var rows []Row
	switch mode {
	case ExportVisible:
		rows = append(rows, g.state.Rows...)
	case ExportAll:
		rows = append(rows, g.received...)
	default:
		g.mu.Unlock()
		return ErrExportDisabled
	}
	g.mu.Unlock()
	return WriteCSV(w, cols, rows)
}
