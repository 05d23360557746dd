package cmd

import (
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"golang.org/x/term"

	"github.com/oakwood-commons/fwtable/pkg/table"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true)
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	totalsStyle    = lipgloss.NewStyle().Bold(true)
)

// isTerminal is swapped out in tests.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// useColor reports whether styled output should be written to w.
// NO_COLOR in the environment always disables styling.
func useColor(noColor bool, w io.Writer) bool {
	if noColor {
		return false
	}
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	return isTerminal(w)
}

// styleTable joins the table lines, styling the header, separator and
// totals when color is set. Styling adds escape codes only; the visible
// width of every line is unchanged.
func styleTable(t *table.Table, color bool) string {
	if !color {
		return t.String()
	}
	lines := make([]string, 0, len(t.Rows)+3)
	lines = append(lines, headerStyle.Render(t.Header))
	lines = append(lines, t.Rows...)
	if t.HasTotals() {
		lines = append(lines, separatorStyle.Render(t.Separator), totalsStyle.Render(t.Totals))
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\r\n")
}
