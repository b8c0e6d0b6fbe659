package layout

import "strconv"

type Wrap int

const (
	WrapOff Wrap = iota
	WrapCharsMode
	WrapWordsMode
)

const (
	maxColumnWidth = 80
	minColumnWidth = 3
	colSeparator   = 2
)

// Input is everything the layout pass needs for one frame.
type Input struct {
	// Width is the terminal width available for the grid.
	Width int
	// Visible holds the visible column indices in order.
	Visible []int
	// Natural maps column index to its sampled natural width (header and
	// cell widths, pre-clamp).
	Natural map[int]int
	// Adjust maps column index to the user's width delta.
	Adjust map[int]int
	// Frozen is the number of leading visible columns pinned left.
	Frozen int
	// CursorCol is the cursor position within Visible.
	CursorCol int
	// MaxLine is the highest 1-based line number the gutter must fit.
	MaxLine int
}

// Column is one laid-out column.
type Column struct {
	Index  int
	Width  int
	Frozen bool
}

// Layout is the placement result: gutter width plus the shown columns with
// final widths, frozen ones first.
type Layout struct {
	Gutter  int
	Columns []Column
}

// ColumnFor finds the laid-out position of a column index.
func (l Layout) ColumnFor(index int) (int, bool) {
	for i, c := range l.Columns {
		if c.Index == index {
			return i, true
		}
	}
	return 0, false
}

func clampWidth(w int) int {
	if w > maxColumnWidth {
		return maxColumnWidth
	}
	if w < minColumnWidth {
		return minColumnWidth
	}
	return w
}

func (in Input) widthOf(col int) int {
	return clampWidth(in.Natural[col] + in.Adjust[col])
}

// Compute places columns into the width budget: the line-number gutter, then
// the frozen region (truncated proportionally when it alone overflows), then
// greedily from the cursor column rightward, then leftward so the cursor
// never scrolls out of view.
func Compute(in Input) Layout {
	lay := Layout{Gutter: gutterWidth(in.MaxLine)}
	if len(in.Visible) == 0 {
		return lay
	}
	budget := in.Width - lay.Gutter
	if budget < minColumnWidth {
		budget = minColumnWidth
	}

	frozen := in.Frozen
	if frozen > len(in.Visible) {
		frozen = len(in.Visible)
	}
	cursor := in.CursorCol
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(in.Visible) {
		cursor = len(in.Visible) - 1
	}
	if cursor < frozen {
		cursor = frozen
	}

	// Frozen region at natural widths, shrunk proportionally on overflow.
	fw := 0
	for _, v := range in.Visible[:frozen] {
		fw += in.widthOf(v) + colSeparator
	}
	scale := 1.0
	if fw > budget && fw > 0 {
		scale = float64(budget) / float64(fw)
	}
	used := 0
	for _, v := range in.Visible[:frozen] {
		w := in.widthOf(v)
		if scale < 1.0 {
			w = int(float64(w) * scale)
			if w < minColumnWidth {
				w = minColumnWidth
			}
		}
		lay.Columns = append(lay.Columns, Column{Index: v, Width: w, Frozen: true})
		used += w + colSeparator
	}
	if used >= budget && frozen < len(in.Visible) {
		// Nothing left for scrolling columns; still show the cursor column
		// at minimum width.
		lay.Columns = append(lay.Columns, Column{Index: in.Visible[cursor], Width: minColumnWidth})
		return lay
	}

	if cursor >= frozen {
		right := cursor
		for right < len(in.Visible) {
			w := in.widthOf(in.Visible[right])
			if used+w+colSeparator > budget && right > cursor {
				break
			}
			if used+w+colSeparator > budget {
				w = budget - used - colSeparator
				if w < minColumnWidth {
					w = minColumnWidth
				}
			}
			lay.Columns = append(lay.Columns, Column{Index: in.Visible[right], Width: w})
			used += w + colSeparator
			right++
			if used >= budget {
				break
			}
		}
		// Then fill leftward between the frozen region and the cursor.
		insert := frozen
		for left := cursor - 1; left >= frozen; left-- {
			w := in.widthOf(in.Visible[left])
			if used+w+colSeparator > budget {
				break
			}
			col := Column{Index: in.Visible[left], Width: w}
			lay.Columns = append(lay.Columns[:insert], append([]Column{col}, lay.Columns[insert:]...)...)
			used += w + colSeparator
		}
	}
	return lay
}

func gutterWidth(maxLine int) int {
	if maxLine < 1 {
		maxLine = 1
	}
	return len(strconv.Itoa(maxLine)) + 1
}

// RowHeight is the number of terminal lines one logical row occupies under
// the given wrap mode.
func RowHeight(cells []string, lay Layout, wrap Wrap) int {
	if wrap == WrapOff {
		return 1
	}
	h := 1
	for _, c := range lay.Columns {
		if c.Index >= len(cells) {
			continue
		}
		text := Sanitize(cells[c.Index])
		var n int
		if wrap == WrapCharsMode {
			n = len(WrapChars(text, c.Width))
		} else {
			n = len(WrapWords(text, c.Width))
		}
		if n > h {
			h = n
		}
	}
	return h
}

// CellLines renders one cell into its column width under the wrap mode.
func CellLines(cell string, width int, wrap Wrap) []string {
	text := Sanitize(cell)
	switch wrap {
	case WrapCharsMode:
		return WrapChars(text, width)
	case WrapWordsMode:
		return WrapWords(text, width)
	default:
		return []string{Truncate(text, width)}
	}
}
