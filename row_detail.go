package main

import (
	"fmt"
	"strings"

	"github.com/bekirdag/gridview/internal/grid"
)

// rowDetailMarkdown lists every column of row, hidden ones included, so a
// value clipped in the grid can be read in full.
func rowDetailMarkdown(st grid.State, row grid.Row) string {
	var b strings.Builder
	if idx, ok := grid.RowIndex(row); ok {
		fmt.Fprintf(&b, "# Row %d\n\n", idx+1)
	} else {
		b.WriteString("# Row\n\n")
	}

	var lines []string
	for _, c := range st.Columns {
		if c.Action {
			continue
		}
		label := c.Label()
		if c.Hidden {
			label += " _(hidden)_"
		}
		shown := grid.DisplayText(row, c)
		line := fmt.Sprintf("| %s | %s |", escapeCell(label), escapeCell(shown))
		if c.Formatting != nil {
			if raw := rawText(row[c.Name]); raw != "" && raw != shown {
				line = fmt.Sprintf("| %s | %s (`%s`) |", escapeCell(label), escapeCell(shown), strings.ReplaceAll(escapeCell(raw), "`", "'"))
			}
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		b.WriteString("_No columns._\n")
		return b.String()
	}
	b.WriteString("| Column | Value |\n| --- | --- |\n")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteString("\n\nPress `v` or `esc` to return to the grid.\n")
	return b.String()
}

func rawText(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func escapeCell(s string) string {
	s = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "|", `\|`).Replace(s)
	if strings.TrimSpace(s) == "" {
		return " "
	}
	return s
}
