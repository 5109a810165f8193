package grid

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const currencyRunes = "$€£¥₹₩₺¢"

var numericPattern = regexp.MustCompile(`^[\s0-9.,\-$€£¥₹₩₺¢]+$`)

type sortKey struct {
	num     float64
	str     string
	numeric bool
}

func normalizeSortValue(v any) sortKey {
	switch t := v.(type) {
	case nil:
		return sortKey{}
	case time.Time:
		return sortKey{num: float64(t.UnixMilli()), numeric: true}
	case *time.Time:
		if t == nil {
			return sortKey{}
		}
		return sortKey{num: float64(t.UnixMilli()), numeric: true}
	case string:
		return normalizeSortString(t)
	case bool:
		return sortKey{str: strconv.FormatBool(t)}
	}
	if n, ok := toFloat(v); ok {
		return sortKey{num: n, numeric: true}
	}
	return normalizeSortString(toText(v))
}

func normalizeSortString(s string) sortKey {
	if t, ok := parseDate(s); ok {
		return sortKey{num: float64(t.UnixMilli()), numeric: true}
	}
	if numericPattern.MatchString(s) && strings.ContainsAny(s, "0123456789") {
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, s)
		if n, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return sortKey{num: n, numeric: true}
		}
	}
	return sortKey{str: strings.ToLower(strings.TrimSpace(s))}
}

func (k sortKey) text() string {
	if k.numeric {
		return strconv.FormatFloat(k.num, 'f', -1, 64)
	}
	return k.str
}

type sortField struct {
	name string
	desc bool
}

// DynamicSort builds a comparator over one or more fields. A leading "-"
// sorts that field descending. The first field that differs decides.
func DynamicSort(fields ...string) func(a, b Row) int {
	parsed := make([]sortField, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if strings.HasPrefix(f, "-") {
			parsed = append(parsed, sortField{name: f[1:], desc: true})
			continue
		}
		parsed = append(parsed, sortField{name: f})
	}
	collator := collate.New(language.Und)

	return func(a, b Row) int {
		for _, f := range parsed {
			left := normalizeSortValue(a[f.name])
			right := normalizeSortValue(b[f.name])
			result := 0
			if left.numeric && right.numeric {
				switch diff := left.num - right.num; {
				case diff < 0:
					result = -1
				case diff > 0:
					result = 1
				}
			} else {
				result = collator.CompareString(left.text(), right.text())
			}
			if result == 0 {
				continue
			}
			if f.desc {
				return -result
			}
			return result
		}
		return 0
	}
}

// SortFields returns the comparator fields for a sort spec: the concatenated
// source columns when the column is a concat group, otherwise its key.
func SortFields(spec SortSpec) []string {
	prefix := ""
	if spec.Order == SortDesc {
		prefix = "-"
	}
	if spec.Column != nil && spec.Column.Concat != nil && len(spec.Column.Concat.Columns) > 0 {
		fields := make([]string, 0, len(spec.Column.Concat.Columns))
		for _, name := range spec.Column.Concat.Columns {
			fields = append(fields, prefix+name)
		}
		return fields
	}
	key := spec.Key
	if key == "" && spec.Column != nil {
		key = spec.Column.Name
	}
	return []string{prefix + key}
}

// SortRows returns a stably sorted copy of rows.
func SortRows(rows []Row, spec SortSpec) []Row {
	out := append([]Row(nil), rows...)
	if spec.Order == SortNone {
		return out
	}
	cmp := DynamicSort(SortFields(spec)...)
	sort.SliceStable(out, func(i, j int) bool {
		return cmp(out[i], out[j]) < 0
	})
	return out
}
