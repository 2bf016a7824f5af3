// Package display renders relay results as a box-drawn table.
package display

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"relayping/internal/model"
	"relayping/internal/selection"
)

// rttWidth is fixed because latencies are unknown when the header is drawn.
const rttWidth = 10

// Table prints rows for a fixed attribute list.
type Table struct {
	w      io.Writer
	attrs  []model.Attribute
	widths []int
}

// NewTable sizes every column to the widest formatted value among cands.
func NewTable(w io.Writer, attrs []model.Attribute, cands []selection.Candidate) *Table {
	widths := make([]int, len(attrs))
	for i, attr := range attrs {
		if attr == model.RoundTripTime {
			widths[i] = rttWidth
			continue
		}
		for _, c := range cands {
			if n := utf8.RuneCountInString(cell(c, attr)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return &Table{w: w, attrs: attrs, widths: widths}
}

func (t *Table) Top()    { t.border("┌", "┬", "┐") }
func (t *Table) Bottom() { t.border("└", "┴", "┘") }

// Row prints one candidate.
func (t *Table) Row(c selection.Candidate) {
	if len(t.attrs) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("│")
	for i, attr := range t.attrs {
		v := cell(c, attr)
		fmt.Fprintf(&b, " %s%s │", v, strings.Repeat(" ", max(0, t.widths[i]-utf8.RuneCountInString(v))))
	}
	fmt.Fprintln(t.w, b.String())
}

// Render prints a complete table.
func (t *Table) Render(cands []selection.Candidate) {
	t.Top()
	for _, c := range cands {
		t.Row(c)
	}
	t.Bottom()
}

func (t *Table) border(start, middle, end string) {
	if len(t.attrs) == 0 {
		return
	}
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat("─", w+2)
	}
	fmt.Fprintln(t.w, start+strings.Join(parts, middle)+end)
}

func cell(c selection.Candidate, attr model.Attribute) string {
	v, ok := c.Value(attr)
	if !ok {
		return model.MissingValue
	}
	return model.FormatValue(attr, v)
}
