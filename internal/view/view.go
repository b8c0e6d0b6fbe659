package view

import (
	"sort"
	"strconv"

	"csvlens/internal/filter"
	"csvlens/internal/find"
	"csvlens/internal/index"
	"csvlens/internal/sorter"
	"csvlens/internal/store"
)

type SelectionMode int

const (
	SelectRow SelectionMode = iota
	SelectColumn
	SelectCell
)

func (m SelectionMode) String() string {
	switch m {
	case SelectColumn:
		return "column"
	case SelectCell:
		return "cell"
	default:
		return "row"
	}
}

type WrapMode int

const (
	WrapOff WrapMode = iota
	WrapChars
	WrapWords
)

const widthStep = 4

// Model is the single place cursor, marks, selection, sort and finder state
// live. It maps display order (logical indices) through the optional sort
// permutation down to the filter engine's sequence and the row store.
type Model struct {
	Rows *store.Store
	Flt  *filter.Engine

	Finder *find.Finder

	sortSpec *sorter.Spec
	perm     []int
	permInv  map[int]int
	partial  bool

	cursorLogical int
	cursorCol     int
	lastCursorID  int

	Mode   SelectionMode
	Wrap   WrapMode
	Frozen int

	marks       map[int]struct{}
	widthAdjust map[int]int

	headers    []string
	hasHeaders bool
	ncols      int
}

func NewModel(rows *store.Store, flt *filter.Engine, headers []string, hasHeaders bool) *Model {
	return &Model{
		Rows:         rows,
		Flt:          flt,
		marks:        map[int]struct{}{},
		widthAdjust:  map[int]int{},
		headers:      headers,
		hasHeaders:   hasHeaders,
		ncols:        len(headers),
		lastCursorID: -1,
	}
}

// Headers returns the column names: the header row, or 1-based numbers when
// headers are disabled.
func (m *Model) Headers() []string {
	if m.hasHeaders {
		return m.headers
	}
	out := make([]string, m.ncols)
	for i := range out {
		out[i] = strconv.Itoa(i + 1)
	}
	return out
}

func (m *Model) HasHeaders() bool { return m.hasHeaders }
func (m *Model) NumColumns() int  { return m.ncols }

// ObserveWidth widens the known column count when a row has more cells than
// any seen before.
func (m *Model) ObserveWidth(n int) {
	if n > m.ncols {
		m.ncols = n
	}
}

// VisibleColumns applies the column filter to the full column set.
func (m *Model) VisibleColumns() []int {
	return m.Flt.VisibleColumns(m.ncols)
}

// Len is the display row count.
func (m *Model) Len() int {
	if m.sortSpec != nil {
		return len(m.perm)
	}
	return m.Flt.Len()
}

// Complete reports whether the display sequence is final for the current
// input: filter exhausted and, if sorting, the permutation not partial.
func (m *Model) Complete() bool {
	if !m.Flt.Complete() {
		return false
	}
	return m.sortSpec == nil || !m.partial
}

// RowIDAt maps a display index to the underlying row id.
func (m *Model) RowIDAt(logical int) (int, bool) {
	if logical < 0 || logical >= m.Len() {
		return 0, false
	}
	if m.sortSpec != nil {
		logical = m.perm[logical]
	}
	return m.Flt.RowAt(logical)
}

// RowAt fetches the row at a display index. The bool is false while the row
// is pending or out of range.
func (m *Model) RowAt(logical int) (store.Row, bool) {
	id, ok := m.RowIDAt(logical)
	if !ok {
		return store.Row{}, false
	}
	row, err := m.Rows.Row(id)
	if err != nil {
		return store.Row{}, false
	}
	m.ObserveWidth(len(row.Cells))
	return row, true
}

// LogicalOf maps a row id back to its display index.
func (m *Model) LogicalOf(id int) (int, bool) {
	fl, ok := m.Flt.LogicalOf(id)
	if !ok {
		return 0, false
	}
	if m.sortSpec == nil {
		return fl, true
	}
	l, ok := m.permInv[fl]
	return l, ok
}

// Sorting

// SetSort installs or replaces the sort; nil clears it.
func (m *Model) SetSort(spec *sorter.Spec) {
	// Resolve the cursor row under the old order before the spec changes.
	id, hadCursor := m.CursorRowID()
	m.sortSpec = spec
	m.ReSort()
	if hadCursor {
		if l, ok := m.LogicalOf(id); ok {
			m.cursorLogical = l
		}
	}
}

func (m *Model) Sort() *sorter.Spec { return m.sortSpec }

// SortPartial reports whether the current permutation covers only a prefix.
func (m *Model) SortPartial() bool { return m.sortSpec != nil && m.partial }

// ReSort recomputes the permutation over the current filtered sequence,
// keeping the cursor on the same row when possible. Called after the filter
// extends or the epoch content changed.
func (m *Model) ReSort() {
	id, hadCursor := m.CursorRowID()
	if m.sortSpec == nil {
		m.perm = nil
		m.permInv = nil
		m.partial = false
	} else {
		res := sorter.Sort(m.Flt, m.Rows, *m.sortSpec)
		m.perm = res.Perm
		m.partial = res.Partial
		m.permInv = make(map[int]int, len(res.Perm))
		for displayIdx, filterIdx := range res.Perm {
			m.permInv[filterIdx] = displayIdx
		}
	}
	if m.Finder != nil {
		m.Finder.Invalidate()
	}
	if hadCursor {
		if l, ok := m.LogicalOf(id); ok {
			m.cursorLogical = l
		}
	}
	m.Clamp()
}

// Cursor

// CursorValid reports whether there is anything to point at.
func (m *Model) CursorValid() bool { return m.Len() > 0 && len(m.VisibleColumns()) > 0 }

// Cursor returns (display row, visible-column position).
func (m *Model) Cursor() (int, int) { return m.cursorLogical, m.cursorCol }

// CursorRowID resolves the cursor to a row id.
func (m *Model) CursorRowID() (int, bool) {
	if !m.CursorValid() {
		return 0, false
	}
	return m.RowIDAt(m.cursorLogical)
}

// CursorColumn returns the cursor's index into the full column set.
func (m *Model) CursorColumn() int {
	vis := m.VisibleColumns()
	if len(vis) == 0 {
		return 0
	}
	if m.cursorCol >= len(vis) {
		return vis[len(vis)-1]
	}
	return vis[m.cursorCol]
}

func (m *Model) MoveRow(delta int) {
	m.cursorLogical += delta
	m.Clamp()
	m.noteCursor()
}

func (m *Model) MoveCol(delta int) {
	m.cursorCol += delta
	m.Clamp()
}

func (m *Model) FirstRow() {
	m.cursorLogical = 0
	m.noteCursor()
}

func (m *Model) LastRow() {
	m.cursorLogical = m.Len() - 1
	m.Clamp()
	m.noteCursor()
}

func (m *Model) FirstCol() { m.cursorCol = 0 }

func (m *Model) LastCol() {
	m.cursorCol = len(m.VisibleColumns()) - 1
	m.Clamp()
}

// GotoLine jumps to the display row holding 1-based data line n. When n is
// filtered out it moves to the nearest following present row; with a sort
// active it leaves the cursor where it is.
func (m *Model) GotoLine(n int) {
	if n < 1 {
		n = 1
	}
	id := n - 1
	if m.hasHeaders {
		id++
	}
	if l, ok := m.LogicalOf(id); ok {
		m.cursorLogical = l
	} else if l, ok := m.nearestLogical(id); ok {
		m.cursorLogical = l
	}
	m.Clamp()
	m.noteCursor()
}

// nearestLogical finds the display position of the first row at or after id
// in filter order. Under an active sort order "nearest" has no natural
// meaning, so the cursor stays put.
func (m *Model) nearestLogical(id int) (int, bool) {
	if m.sortSpec != nil {
		return 0, false
	}
	n := m.Flt.Len()
	i := sort.Search(n, func(i int) bool {
		rid, ok := m.Flt.RowAt(i)
		return ok && rid >= id
	})
	if i >= n {
		if n == 0 {
			return 0, false
		}
		return n - 1, true
	}
	return i, true
}

// Clamp forces the cursor back into range after any structural change.
func (m *Model) Clamp() {
	if m.cursorLogical >= m.Len() {
		m.cursorLogical = m.Len() - 1
	}
	if m.cursorLogical < 0 {
		m.cursorLogical = 0
	}
	nvis := len(m.VisibleColumns())
	if m.cursorCol >= nvis {
		m.cursorCol = nvis - 1
	}
	if m.cursorCol < 0 {
		m.cursorCol = 0
	}
}

func (m *Model) noteCursor() {
	if id, ok := m.CursorRowID(); ok {
		m.lastCursorID = id
	}
}

// Marks

// ToggleMark flips the mark on the cursor row.
func (m *Model) ToggleMark() {
	id, ok := m.CursorRowID()
	if !ok {
		return
	}
	if _, marked := m.marks[id]; marked {
		delete(m.marks, id)
	} else {
		m.marks[id] = struct{}{}
	}
}

func (m *Model) ClearMarks() { m.marks = map[int]struct{}{} }

func (m *Model) IsMarked(id int) bool {
	_, ok := m.marks[id]
	return ok
}

// Marks returns the marked row ids in ascending order.
func (m *Model) Marks() []int {
	out := make([]int, 0, len(m.marks))
	for id := range m.marks {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Toggles

func (m *Model) CycleSelection() {
	m.Mode = (m.Mode + 1) % 3
}

// ToggleWrap flips between Off and the given mode.
func (m *Model) ToggleWrap(target WrapMode) {
	if m.Wrap == target {
		m.Wrap = WrapOff
	} else {
		m.Wrap = target
	}
}

// SetFrozen pins the first k visible columns.
func (m *Model) SetFrozen(k int) {
	if k < 0 {
		k = 0
	}
	if n := len(m.VisibleColumns()); k > n {
		k = n
	}
	m.Frozen = k
}

// AdjustWidth steps the selected column's width by the standard step.
func (m *Model) AdjustWidth(delta int) {
	col := m.CursorColumn()
	m.widthAdjust[col] += delta * widthStep
	if m.widthAdjust[col] < -64 {
		m.widthAdjust[col] = -64
	}
	if m.widthAdjust[col] > 512 {
		m.widthAdjust[col] = 512
	}
}

// WidthAdjust returns the user's width delta for a column.
func (m *Model) WidthAdjust(col int) int { return m.widthAdjust[col] }

// Epoch transitions

// Reattach points the model at a new epoch's backend. The cursor re-resolves
// to the previously selected row id when it still exists, marks referencing
// vanished rows are pruned, and the sort (if any) recomputes in the new
// epoch.
func (m *Model) Reattach(rows *store.Store, flt *filter.Engine, headers []string) {
	m.Rows = rows
	m.Flt = flt
	m.headers = headers
	if len(headers) > m.ncols {
		m.ncols = len(headers)
	}
	m.PruneMarks()
	m.ReSort()
	if m.lastCursorID >= 0 {
		if l, ok := m.LogicalOf(m.lastCursorID); ok {
			m.cursorLogical = l
		}
	}
	m.Clamp()
}

// PruneMarks drops marks whose row id no longer exists. Rows merely not
// indexed yet are kept; the coordinator prunes again once indexing catches
// up.
func (m *Model) PruneMarks() {
	for id := range m.marks {
		if _, err := m.Rows.Row(id); err == index.ErrOutOfRange {
			delete(m.marks, id)
		}
	}
}
