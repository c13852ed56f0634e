package cli

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jmylchreest/yourpalette/internal/colour"
)

// ansiSequence matches SGR escape sequences, which take no terminal cells.
var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// Table is a plain-text table with columns sized to their widest cell.
type Table struct {
	headers []string
	rows    [][]string
	padding int
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    make([][]string, 0),
		padding: 2,
	}
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	cells := make([]string, len(t.headers))
	copy(cells, row)
	t.rows = append(t.rows, cells)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = visibleWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], visibleWidth(cell))
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, c := range cells {
			parts[i] = padRight(c, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	writeLine(t.headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeLine(sep)
	for _, row := range t.rows {
		writeLine(row)
	}

	return b.String()
}

// paletteTable lays records out one per row, with an optional swatch column.
func paletteTable(records []colour.ColorRecord, showPreview bool) *Table {
	headers := []string{"#", "HEX", "RGB"}
	if showPreview {
		headers = append(headers, "PREVIEW")
	}

	t := NewTable(headers)
	for _, rec := range records {
		row := []string{fmt.Sprintf("%d", rec.Index), rec.Hex, rec.RGB}
		if showPreview {
			row = append(row, colour.ColourPreview(recordRGB(rec), previewWidth))
		}
		t.AddRow(row)
	}
	return t
}

// visibleWidth returns the number of runes in s once escape sequences are
// removed.
func visibleWidth(s string) int {
	return utf8.RuneCountInString(ansiSequence.ReplaceAllString(s, ""))
}

// padRight pads s with spaces to width visible cells. Longer strings are
// returned unchanged.
func padRight(s string, width int) string {
	w := visibleWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
