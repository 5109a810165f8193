package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type CellType int

const (
	CellText CellType = iota
	CellNumber
	CellCurrency
	CellPercent
	CellBoolean
	CellDate
	CellDateTime
)

func ParseCellType(value string) CellType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "number", "numeric":
		return CellNumber
	case "currency", "money":
		return CellCurrency
	case "percent", "percentage":
		return CellPercent
	case "boolean", "bool":
		return CellBoolean
	case "date":
		return CellDate
	case "datetime", "timestamp":
		return CellDateTime
	default:
		return CellText
	}
}

func (t CellType) String() string {
	switch t {
	case CellNumber:
		return "number"
	case CellCurrency:
		return "currency"
	case CellPercent:
		return "percent"
	case CellBoolean:
		return "boolean"
	case CellDate:
		return "date"
	case CellDateTime:
		return "datetime"
	default:
		return "text"
	}
}

func (t CellType) isDate() bool {
	return t == CellDate || t == CellDateTime
}

// Formatting selects the display variant of a column. Format is variant
// specific: a humanize pattern for numbers, a currency code or symbol, a
// "yes/no" label pair for booleans, a yyyy-MM-dd style pattern for dates.
type Formatting struct {
	Type   CellType
	Format string
}

const (
	defaultNumberPattern = "#,###.##"
	defaultDatePattern   = "yyyy-MM-dd"
	defaultDateTime      = "yyyy-MM-dd HH:mm:ss"
)

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"TRY": "₺",
}

// FormatValue renders v for display according to f. Values that do not fit
// the variant fall back to their plain text form.
func FormatValue(v any, f Formatting) string {
	if v == nil {
		return ""
	}
	switch f.Type {
	case CellNumber:
		n, ok := toFloat(v)
		if !ok {
			return toText(v)
		}
		pattern := f.Format
		if pattern == "" {
			pattern = defaultNumberPattern
		}
		return humanize.FormatFloat(pattern, n)
	case CellCurrency:
		n, ok := toFloat(v)
		if !ok {
			return toText(v)
		}
		symbol := strings.TrimSpace(f.Format)
		if s, ok := currencySymbols[strings.ToUpper(symbol)]; ok {
			symbol = s
		}
		if symbol == "" {
			symbol = "$"
		}
		if n < 0 {
			return "-" + symbol + humanize.FormatFloat("#,###.##", math.Abs(n))
		}
		return symbol + humanize.FormatFloat("#,###.##", n)
	case CellPercent:
		n, ok := toFloat(v)
		if !ok {
			return toText(v)
		}
		return humanize.FormatFloat("#,###.##", n*100) + "%"
	case CellBoolean:
		b, ok := toBool(v)
		if !ok {
			return toText(v)
		}
		yes, no := "true", "false"
		if parts := strings.SplitN(f.Format, "/", 2); len(parts) == 2 {
			yes, no = parts[0], parts[1]
		}
		if b {
			return yes
		}
		return no
	case CellDate, CellDateTime:
		t, ok := toTime(v)
		if !ok {
			return toText(v)
		}
		pattern := f.Format
		if pattern == "" {
			pattern = defaultDatePattern
			if f.Type == CellDateTime {
				pattern = defaultDateTime
			}
		}
		return t.Format(DateLayout(pattern))
	default:
		return toText(v)
	}
}

// DateLayout translates a yyyy-MM-dd HH:mm:ss style pattern into a Go layout.
func DateLayout(pattern string) string {
	tokens := []struct{ from, to string }{
		{"yyyy", "2006"},
		{"MMMM", "January"},
		{"dddd", "Monday"},
		{"MMM", "Jan"},
		{"ddd", "Mon"},
		{"yy", "06"},
		{"MM", "01"},
		{"dd", "02"},
		{"HH", "15"},
		{"hh", "03"},
		{"mm", "04"},
		{"ss", "05"},
		{"SSS", "000"},
		{"tt", "PM"},
		{"M", "1"},
		{"d", "2"},
		{"h", "3"},
		{"m", "4"},
		{"s", "5"},
		{"a", "PM"},
	}
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, tok := range tokens {
			if strings.HasPrefix(pattern[i:], tok.from) {
				b.WriteString(tok.to)
				i += len(tok.from)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 6 {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		return parseDate(t)
	}
	if n, ok := toFloat(v); ok {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			if r == ',' || r == ' ' || strings.ContainsRune(currencyRunes, r) {
				return -1
			}
			return r
		}, strings.TrimSpace(n))
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "yes", "y", "1":
			return true, true
		case "false", "no", "n", "0":
			return false, true
		}
		return false, false
	}
	if n, ok := toFloat(v); ok {
		return n != 0, true
	}
	return false, false
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case time.Time:
		return t.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// DisplayText returns the display text of a cell, formatted when the column
// carries a Formatting.
func DisplayText(row Row, col Column) string {
	v := row[col.Name]
	if col.Concat != nil && len(col.Concat.Columns) > 0 {
		sep := col.Concat.Separator
		if sep == "" {
			sep = " "
		}
		parts := make([]string, 0, len(col.Concat.Columns))
		for _, name := range col.Concat.Columns {
			if val, ok := lookupFold(row, name); ok && val != nil {
				parts = append(parts, toText(val))
			}
		}
		return strings.Join(parts, sep)
	}
	if col.Formatting != nil {
		return FormatValue(v, *col.Formatting)
	}
	return toText(v)
}
