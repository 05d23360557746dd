package table

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Spacing is added to every column's natural width so adjacent columns are
// always separated.
const Spacing = 2

// widthCondition measures display width independent of RUNEWIDTH_EASTASIAN
// and locale variables: East Asian ambiguous runes such as '±' count as one
// column.
var widthCondition = &runewidth.Condition{EastAsianWidth: false, StrictEmojiNeutral: true}

// Table is a laid-out table. Every line, including Separator and Totals
// when present, has the same display width.
type Table struct {
	Header string
	Rows   []string
	// Separator and Totals are empty when no column produced a total.
	Separator string
	Totals    string
	// Widths holds each column's padded width, Spacing included.
	Widths []int
}

// HasTotals reports whether the table ends with a totals section.
func (t *Table) HasTotals() bool {
	return t.Separator != ""
}

// Width returns the display width shared by all lines.
func (t *Table) Width() int {
	total := 0
	for _, w := range t.Widths {
		total += w
	}
	return total
}

// Lines returns header, rows and, when present, separator and totals.
func (t *Table) Lines() []string {
	lines := make([]string, 0, len(t.Rows)+3)
	lines = append(lines, t.Header)
	lines = append(lines, t.Rows...)
	if t.HasTotals() {
		lines = append(lines, t.Separator, t.Totals)
	}
	return lines
}

// String joins the lines with '\n', without a trailing line break.
func (t *Table) String() string {
	var b strings.Builder
	for _, line := range t.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\r\n")
}

// Render lays out records with cfg and returns the table text.
func Render[T any](records []T, cfg *Configuration[T]) (string, error) {
	t, err := Layout(records, cfg)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

type column[T any] struct {
	field  Field[T]
	cfg    ColumnConfig
	header string
	width  int
	acc    Accumulator
	total  string
	totals bool
}

func (c *column[T]) format(v any) (string, error) {
	if !c.cfg.formatted() {
		if v == nil {
			return "", nil
		}
		return singleLine(fmt.Sprint(v)), nil
	}
	s, err := c.cfg.provider().Format(c.cfg.Format, v)
	if err != nil {
		return "", err
	}
	return singleLine(s), nil
}

func (c *column[T]) fit(s string) {
	if w := widthCondition.StringWidth(s); w > c.width {
		c.width = w
	}
}

// Layout computes column widths and pads every cell of records according
// to cfg. Columns follow schema order and rows follow input order.
func Layout[T any](records []T, cfg *Configuration[T]) (*Table, error) {
	if cfg == nil || cfg.schema == nil {
		return nil, &ConfigurationError{Reason: "no configuration"}
	}

	cols := make([]column[T], cfg.schema.Len())
	for i, f := range cfg.schema.fields {
		cc, _ := cfg.Lookup(f.name)
		header := f.name
		if cc.Header != "" {
			header = cc.Header
		}
		cols[i] = column[T]{field: f, cfg: cc, header: singleLine(header)}
		cols[i].fit(cols[i].header)
		if cc.Total {
			if !f.Summable() {
				return nil, &UnsupportedTotalError{Field: f.name, Kind: f.kind}
			}
			cols[i].acc = f.newTotal()
		}
	}

	cells := make([][]string, len(records))
	for r, record := range records {
		if isNil(record) {
			return nil, &FormatError{Row: r, Err: ErrNilRecord}
		}
		row := make([]string, len(cols))
		for i := range cols {
			c := &cols[i]
			raw := c.field.get(record)
			s, err := c.format(raw)
			if err != nil {
				return nil, &FormatError{Field: c.field.name, Row: r, Spec: c.cfg.Format, Err: err}
			}
			row[i] = s
			c.fit(s)
			if c.acc != nil {
				if err := c.acc.Add(raw); err != nil {
					return nil, &FormatError{Field: c.field.name, Row: r, Spec: c.cfg.Format, Err: fmt.Errorf("total: %w", err)}
				}
			}
		}
		cells[r] = row
	}

	hasTotals := false
	if len(records) > 0 {
		for i := range cols {
			c := &cols[i]
			if c.acc == nil {
				continue
			}
			s, err := c.format(c.acc.Total())
			if err != nil {
				return nil, &FormatError{Field: c.field.name, Row: -1, Spec: c.cfg.Format, Err: err}
			}
			c.total = s
			c.totals = true
			c.fit(s)
			hasTotals = true
		}
	}

	t := &Table{
		Widths: make([]int, len(cols)),
		Rows:   make([]string, len(cells)),
	}
	for i := range cols {
		t.Widths[i] = cols[i].width + Spacing
	}

	var b strings.Builder
	for i := range cols {
		b.WriteString(pad(cols[i].header, t.Widths[i], cols[i].cfg.Align))
	}
	t.Header = b.String()

	for r, row := range cells {
		b.Reset()
		for i, s := range row {
			b.WriteString(pad(s, t.Widths[i], cols[i].cfg.Align))
		}
		t.Rows[r] = b.String()
	}

	if hasTotals {
		t.Separator = strings.Repeat("-", t.Width())
		b.Reset()
		for i := range cols {
			if cols[i].totals {
				b.WriteString(pad(cols[i].total, t.Widths[i], cols[i].cfg.Align))
			} else {
				b.WriteString(strings.Repeat(" ", t.Widths[i]))
			}
		}
		t.Totals = b.String()
	}
	return t, nil
}

func isNil(record any) bool {
	if record == nil {
		return true
	}
	rv := reflect.ValueOf(record)
	switch rv.Kind() { //nolint:exhaustive // only nillable kinds
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// pad fits s into width display columns. Center alignment puts the odd
// leftover space on the right.
func pad(s string, width int, align Alignment) string {
	gap := width - widthCondition.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case AlignRight:
		return strings.Repeat(" ", gap) + s
	case AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}

// singleLine keeps cells on one line: CR and LF become a literal `\n` and
// tabs a literal `\t`.
func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\n", `\n`)
	return strings.ReplaceAll(s, "\t", `\t`)
}
