package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/rivo/uniseg"

	"csvlens/internal/find"
	"csvlens/internal/layout"
	"csvlens/internal/view"
)

// frameRow is one display row picked for the current frame. pending rows are
// known to exist but not parseable yet.
type frameRow struct {
	logical int
	id      int
	cells   []string
	pending bool
	height  int
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.termWidth <= 0 || m.termHeight <= 0 {
		return ""
	}
	if m.mode == modeHelp {
		return m.helpView()
	}
	rows, lay := m.buildFrame()
	shown := 0
	for _, c := range lay.Columns {
		if !c.Frozen {
			shown++
		}
	}
	m.lastShownCols = shown

	avail := m.pageRows()
	var b strings.Builder
	b.WriteString(m.headerLine(lay))
	used := 0
	for _, fr := range rows {
		for _, line := range m.renderRow(fr, lay) {
			if used >= avail {
				break
			}
			b.WriteByte('\n')
			b.WriteString(line)
			used++
		}
	}
	for ; used < avail; used++ {
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.bottomLine())
	return b.String()
}

// buildFrame scrolls topRow until the cursor row fits in the viewport, then
// returns the laid-out frame.
func (m *Model) buildFrame() ([]frameRow, layout.Layout) {
	avail := m.pageRows()
	cur, curCol := m.vm.Cursor()
	if m.topRow > cur {
		m.topRow = cur
	}
	if m.topRow < 0 {
		m.topRow = 0
	}
	for {
		rows, lay, curShown := m.tryFrame(m.topRow, avail, curCol)
		if curShown || m.topRow >= cur || len(rows) == 0 {
			return rows, lay
		}
		m.topRow++
	}
}

// tryFrame samples the rows starting at top, sizes columns from what is on
// screen, and reports whether the cursor row made it into the frame.
func (m *Model) tryFrame(top, avail, curCol int) ([]frameRow, layout.Layout, bool) {
	vis := m.vm.VisibleColumns()
	names := m.vm.Headers()
	nat := make(map[int]int, len(vis))
	for _, c := range vis {
		w := 4
		if c < len(names) {
			if hw := layout.Width(names[c]); hw > w {
				w = hw
			}
		}
		nat[c] = w
	}

	var sample []frameRow
	maxID := 0
	total := m.vm.Len()
	for l := top; l < total && len(sample) < avail; l++ {
		fr := frameRow{logical: l}
		if row, ok := m.vm.RowAt(l); ok {
			fr.id = row.ID
			fr.cells = row.Cells
		} else {
			fr.pending = true
			if id, ok := m.vm.RowIDAt(l); ok {
				fr.id = id
			}
		}
		if fr.id > maxID {
			maxID = fr.id
		}
		for _, c := range vis {
			if c < len(fr.cells) {
				if w := layout.Width(layout.Sanitize(fr.cells[c])); w > nat[c] {
					nat[c] = w
				}
			}
		}
		sample = append(sample, fr)
	}

	adj := map[int]int{}
	for _, c := range vis {
		if d := m.vm.WidthAdjust(c); d != 0 {
			adj[c] = d
		}
	}
	lay := layout.Compute(layout.Input{
		Width:     m.termWidth,
		Visible:   vis,
		Natural:   nat,
		Adjust:    adj,
		Frozen:    m.vm.Frozen,
		CursorCol: curCol,
		MaxLine:   m.lineNo(maxID),
	})

	cur, _ := m.vm.Cursor()
	wrap := wrapOf(m.vm.Wrap)
	var fit []frameRow
	h := 0
	curShown := false
	for _, fr := range sample {
		fr.height = layout.RowHeight(fr.cells, lay, wrap)
		if h+fr.height > avail && len(fit) > 0 {
			break
		}
		h += fr.height
		fit = append(fit, fr)
		if fr.logical == cur {
			curShown = true
		}
		if h >= avail {
			break
		}
	}
	return fit, lay, curShown
}

func (m *Model) headerLine(lay layout.Layout) string {
	names := m.vm.Headers()
	cursorCol := m.vm.CursorColumn()
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", lay.Gutter))
	for _, c := range lay.Columns {
		name := ""
		if c.Index < len(names) {
			name = names[c.Index]
		}
		st := m.styles.Header
		if c.Index == cursorCol {
			st = m.styles.HeaderCursor
		} else if m.cfg.Colorful && len(m.styles.Columns) > 0 {
			st = st.Inherit(m.styles.ColumnStyle(c.Index))
		}
		b.WriteString(st.Render(pad(layout.Truncate(layout.Sanitize(name), c.Width), c.Width)))
		b.WriteString("  ")
	}
	return trimLine(b.String(), m.termWidth)
}

func (m *Model) renderRow(fr frameRow, lay layout.Layout) []string {
	cur, _ := m.vm.Cursor()
	cursorCol := m.vm.CursorColumn()
	wrap := wrapOf(m.vm.Wrap)
	onCursorRow := fr.logical == cur

	var rowMatches []find.Match
	var current find.Match
	hasCurrent := false
	if f := m.vm.Finder; f != nil {
		rowMatches = f.RowMatches(fr.logical)
		current, hasCurrent = f.Current()
	}

	height := fr.height
	if height < 1 {
		height = 1
	}
	cellLines := make([][]string, len(lay.Columns))
	for i, c := range lay.Columns {
		cell := ""
		if c.Index < len(fr.cells) {
			cell = fr.cells[c.Index]
		} else if fr.pending && i == 0 {
			cell = "…"
		}
		cellLines[i] = layout.CellLines(cell, c.Width, wrap)
	}

	out := make([]string, 0, height)
	for li := 0; li < height; li++ {
		var b strings.Builder
		b.WriteString(m.gutter(fr, li, lay.Gutter))
		for i, c := range lay.Columns {
			line := ""
			if li < len(cellLines[i]) {
				line = cellLines[i][li]
			}
			b.WriteString(m.styleCell(fr, c, li, line, onCursorRow, cursorCol, rowMatches, current, hasCurrent, wrap))
			b.WriteString("  ")
		}
		out = append(out, trimLine(b.String(), m.termWidth))
	}
	return out
}

func (m *Model) styleCell(fr frameRow, c layout.Column, li int, line string, onCursorRow bool, cursorCol int, rowMatches []find.Match, current find.Match, hasCurrent bool, wrap layout.Wrap) string {
	padded := pad(line, c.Width)

	selected := false
	switch m.vm.Mode {
	case view.SelectColumn:
		selected = c.Index == cursorCol
	case view.SelectCell:
		selected = onCursorRow && c.Index == cursorCol
	default:
		selected = onCursorRow
	}
	if selected {
		return m.styles.Selected.Render(padded)
	}

	base := m.styles.ColumnStyle(c.Index)
	var spans [][2]int
	cellIsCurrent := false
	cellMatched := false
	for _, mt := range rowMatches {
		if mt.Column != c.Index {
			continue
		}
		cellMatched = true
		if hasCurrent && current.Logical == fr.logical && current.Column == mt.Column && current.Start == mt.Start {
			cellIsCurrent = true
		}
		if wrap == layout.WrapOff && c.Index < len(fr.cells) {
			s, e := layout.SpanBounds(fr.cells[c.Index], mt.Start, mt.End)
			spans = append(spans, [2]int{s, e})
		}
	}
	if !cellMatched {
		return base.Render(padded)
	}
	hl := m.styles.Match
	if cellIsCurrent {
		hl = m.styles.MatchCursor
	}
	if wrap == layout.WrapOff && li == 0 && len(spans) > 0 {
		return styleSpans(padded, c.Width, spans, base, hl)
	}
	// Under wrap the span-to-line math is not worth it; mark the whole cell.
	return hl.Render(padded)
}

func (m *Model) gutter(fr frameRow, li, width int) string {
	if width <= 0 {
		return ""
	}
	if li > 0 {
		return strings.Repeat(" ", width)
	}
	num := fmt.Sprintf("%*d", width-1, m.lineNo(fr.id))
	st := m.styles.Gutter
	if m.vm.IsMarked(fr.id) {
		st = m.styles.GutterMark
	}
	return st.Render(num) + " "
}

func (m *Model) bottomLine() string {
	switch m.mode {
	case modeFind, modeFilter, modeColumnFilter:
		return trimLine(m.input.View(), m.termWidth)
	case modeFreeze:
		return m.styles.Status.Render("freeze columns: " + m.freezeBuf)
	case modeOption:
		return m.styles.Status.Render("-S wrap chars   -W wrap words")
	}
	if m.statusMsg != "" {
		st := m.styles.Status
		if m.statusErr {
			st = m.styles.StatusErr
		}
		return trimLine(st.Render(m.statusMsg), m.termWidth)
	}
	return trimLine(m.statusLine(), m.termWidth)
}

func (m *Model) statusLine() string {
	prefix := m.cfg.Prompt
	if prefix == "" {
		prefix = m.sess.src.Path()
	}
	parts := []string{prefix}
	cur, _ := m.vm.Cursor()
	if total := m.vm.Len(); total > 0 {
		pos := fmt.Sprintf("row %d/%d", cur+1, total)
		if id, ok := m.vm.CursorRowID(); ok {
			pos += fmt.Sprintf(" (line %d)", m.lineNo(id))
		}
		parts = append(parts, pos)
	}
	if m.vm.Mode != view.SelectRow {
		parts = append(parts, m.vm.Mode.String())
	}
	if spec := m.vm.Sort(); spec != nil {
		s := fmt.Sprintf("sort:%s/%s/%s", m.columnLabel(spec.Column), spec.Mode, spec.Direction)
		if m.vm.SortPartial() {
			s += " sorting…"
		}
		parts = append(parts, s)
	}
	if m.vm.Flt.Active() {
		s := fmt.Sprintf("filter:%d hits", m.vm.Flt.Len())
		if !m.vm.Flt.Complete() {
			s += " filtering…"
		}
		parts = append(parts, s)
	}
	if f := m.vm.Finder; f != nil {
		s := fmt.Sprintf("find:%s %d/%d", f.Pattern(), f.CursorIndex()+1, f.Count())
		if !f.Complete() {
			s += " searching…"
		}
		parts = append(parts, s)
	}
	if !m.sess.rows.Complete() {
		parts = append(parts, "indexing…")
	}
	if m.gotoBuf != "" {
		parts = append(parts, "goto "+m.gotoBuf)
	}
	return m.styles.Status.Render(strings.Join(parts, "  "))
}

// lineNo is the 1-based data line number of a row id.
func (m *Model) lineNo(id int) int {
	if m.vm.HasHeaders() {
		return id
	}
	return id + 1
}

func wrapOf(w view.WrapMode) layout.Wrap {
	switch w {
	case view.WrapChars:
		return layout.WrapCharsMode
	case view.WrapWords:
		return layout.WrapWordsMode
	default:
		return layout.WrapOff
	}
}

func pad(s string, width int) string {
	if n := width - layout.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// trimLine cuts a styled line to the terminal width, ANSI-aware.
func trimLine(s string, width int) string {
	if ansi.PrintableRuneWidth(s) <= width {
		return s
	}
	return truncate.String(s, uint(width))
}

// cutAt splits s at a display column, on a grapheme boundary.
func cutAt(s string, col int) (string, string) {
	if col <= 0 {
		return "", s
	}
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := runewidth.StringWidth(g.Str())
		if w+cw > col {
			from, _ := g.Positions()
			return s[:from], s[from:]
		}
		w += cw
	}
	return s, ""
}

// styleSpans renders line with the given display-column spans highlighted.
// Spans arrive sorted and disjoint; parts cut off by truncation are clamped.
func styleSpans(line string, width int, spans [][2]int, base, hl lipgloss.Style) string {
	var b strings.Builder
	pos := 0
	rest := line
	for _, sp := range spans {
		s, e := sp[0], sp[1]
		if s < pos {
			s = pos
		}
		if e > width {
			e = width
		}
		if e <= s {
			continue
		}
		head, tail := cutAt(rest, s-pos)
		mid, tail2 := cutAt(tail, e-s)
		if head != "" {
			b.WriteString(base.Render(head))
		}
		if mid != "" {
			b.WriteString(hl.Render(mid))
		}
		rest = tail2
		pos = e
	}
	if rest != "" {
		b.WriteString(base.Render(rest))
	}
	return b.String()
}
