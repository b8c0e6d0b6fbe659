package ui

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"csvlens/internal/export"
	"csvlens/internal/filter"
	"csvlens/internal/find"
	"csvlens/internal/sorter"
	"csvlens/internal/source"
	"csvlens/internal/view"
)

const (
	tickInterval = 250 * time.Millisecond
	filterBudget = 5000
	findBudget   = 2000
)

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return tickMsg{} })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth, m.termHeight = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		m.onTick()
		return m, tick()
	case tea.KeyMsg:
		return m.onKey(msg)
	}
	return m, nil
}

// onTick drains source events and runs one bounded slice of background work
// so keystrokes stay responsive on large files.
func (m *Model) onTick() {
	m.drainChanges()

	if !m.headersKnown && m.sess.rows.Len() > 0 {
		if row, err := m.sess.rows.Row(0); err == nil {
			m.applyHeaders(row.Cells)
		}
	}
	if m.headersKnown && !m.startupDone {
		m.applyStartupOptions()
	}

	if flt := m.vm.Flt; flt.Active() && !flt.Complete() {
		flt.Extend(flt.Len()+filterBudget, filterBudget)
	}
	if m.vm.Sort() != nil {
		if n := m.vm.Flt.Len(); n != m.lastSortLen {
			m.vm.ReSort()
			m.lastSortLen = n
		}
	}
	if f := m.vm.Finder; f != nil && !f.Complete() {
		f.Extend(findBudget)
	}
	if m.pendingJump {
		if f := m.vm.Finder; f == nil {
			m.pendingJump = false
		} else if mt, ok := f.First(); ok {
			m.jumpToMatch(mt)
			m.pendingJump = false
		} else if f.Complete() {
			m.setStatus("no match", true)
			m.pendingJump = false
		}
	}

	if !m.pruned && m.sess.rows.Complete() {
		m.vm.PruneMarks()
		m.pruned = true
	}
	if ws := m.sess.idx.Warnings(); len(ws) > m.warnsSeen {
		m.setStatus(ws[len(ws)-1], true)
		m.warnsSeen = len(ws)
	}
	if ss, ok := m.sess.src.(*source.StdinSource); ok && !m.stdinFailed {
		if err := ss.Err(); err != nil {
			m.setStatus("stdin: "+err.Error(), true)
			m.stdinFailed = true
		}
	}
	m.vm.Clamp()
}

func (m *Model) drainChanges() {
	for {
		select {
		case ev := <-m.sess.src.Changes():
			if ev == source.Rewritten {
				m.rebuildEpoch()
				return
			}
			m.sess.indexer.Kick()
		default:
			return
		}
	}
}

func (m *Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeFind, modeFilter, modeColumnFilter:
		return m.onInputKey(msg)
	case modeFreeze:
		return m.onFreezeKey(msg)
	case modeOption:
		return m.onOptionKey(msg)
	case modeHelp:
		return m.onHelpKey(msg)
	}
	return m.onNormalKey(msg)
}

func (m *Model) onNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		m.gotoBuf += key
		return m, nil
	}
	if key == "esc" && m.gotoBuf != "" {
		m.gotoBuf = ""
		return m, nil
	}
	m.setStatus("", false)

	switch lookupAction(key) {
	case actQuit:
		m.quitting = true
		return m, tea.Quit
	case actDown:
		m.vm.MoveRow(1)
	case actUp:
		m.vm.MoveRow(-1)
	case actLeft:
		m.vm.MoveCol(-1)
	case actRight:
		m.vm.MoveCol(1)
	case actPageDown:
		m.vm.MoveRow(m.pageRows())
	case actPageUp:
		m.vm.MoveRow(-m.pageRows())
	case actHalfPageDown:
		m.vm.MoveRow(m.pageRows() / 2)
	case actHalfPageUp:
		m.vm.MoveRow(-m.pageRows() / 2)
	case actTop:
		if !m.submitGoto() {
			m.vm.FirstRow()
		}
	case actBottom:
		if !m.submitGoto() {
			m.vm.LastRow()
		}
	case actFirstCol:
		m.vm.FirstCol()
	case actLastCol:
		m.vm.LastCol()
	case actPageColsLeft:
		m.vm.MoveCol(-m.pageCols())
	case actPageColsRight:
		m.vm.MoveCol(m.pageCols())
	case actFind:
		m.startInput(modeFind, "/")
	case actFilter:
		m.startInput(modeFilter, "&")
	case actColumnFilter:
		m.startInput(modeColumnFilter, "*")
	case actFindNext:
		m.findStep(true)
	case actFindPrev:
		m.findStep(false)
	case actFindCell:
		m.findCell()
	case actFilterCell:
		m.filterCell()
	case actSelectCycle:
		m.vm.CycleSelection()
	case actEnter:
		return m.onEnter()
	case actCopy:
		m.copySelection()
	case actMark:
		m.vm.ToggleMark()
	case actClearMarks:
		m.vm.ClearMarks()
		m.setStatus("marks cleared", false)
	case actSortToggle:
		m.toggleSort()
	case actSortNatural:
		m.toggleNaturalSort()
	case actWiden:
		m.vm.AdjustWidth(1)
	case actNarrow:
		m.vm.AdjustWidth(-1)
	case actOption:
		m.mode = modeOption
	case actFreeze:
		m.mode = modeFreeze
		m.freezeBuf = ""
	case actReset:
		m.vm.Flt.ClearAll()
		m.vm.Finder = nil
		m.vm.ReSort()
		m.lastSortLen = m.vm.Flt.Len()
		m.setStatus("find and filters reset", false)
	case actHelp:
		m.mode = modeHelp
		m.helpScroll = 0
	case actExitMarked:
		m.exitLines = export.MarkedRows(m.vm, m.sess.rows.Delimiter())
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submitGoto consumes the buffered digit prefix. Reports whether a jump
// happened.
func (m *Model) submitGoto() bool {
	if m.gotoBuf == "" {
		return false
	}
	n, err := strconv.Atoi(m.gotoBuf)
	m.gotoBuf = ""
	if err != nil {
		return false
	}
	m.vm.GotoLine(n)
	return true
}

func (m *Model) onEnter() (tea.Model, tea.Cmd) {
	if m.submitGoto() {
		return m, nil
	}
	if m.vm.Mode == view.SelectCell || m.cfg.EchoColumn != "" {
		line, err := export.EchoCell(m.vm, m.cfg.EchoColumn)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.exitLines = []string{line}
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) copySelection() {
	text, status, err := export.SelectionText(m.vm, m.sess.rows.Delimiter(), m.cfg.ClipboardLimit)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	if err := export.Copy(text); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.setStatus(status, false)
}

func (m *Model) toggleSort() {
	col := m.vm.CursorColumn()
	spec := m.vm.Sort()
	switch {
	case spec == nil || spec.Column != col:
		mode := sorter.Lex
		if spec != nil {
			mode = spec.Mode
		}
		m.vm.SetSort(&sorter.Spec{Column: col, Direction: sorter.Asc, Mode: mode})
	case spec.Direction == sorter.Asc:
		s := *spec
		s.Direction = sorter.Desc
		m.vm.SetSort(&s)
	default:
		m.vm.SetSort(nil)
	}
	m.lastSortLen = m.vm.Flt.Len()
	m.announceSort()
}

func (m *Model) toggleNaturalSort() {
	spec := m.vm.Sort()
	if spec == nil {
		m.vm.SetSort(&sorter.Spec{Column: m.vm.CursorColumn(), Direction: sorter.Asc, Mode: sorter.Natural})
	} else {
		s := *spec
		if s.Mode == sorter.Natural {
			s.Mode = sorter.Lex
		} else {
			s.Mode = sorter.Natural
		}
		m.vm.SetSort(&s)
	}
	m.lastSortLen = m.vm.Flt.Len()
	m.announceSort()
}

func (m *Model) announceSort() {
	spec := m.vm.Sort()
	if spec == nil {
		m.setStatus("sort off", false)
		return
	}
	m.setStatus(fmt.Sprintf("sort: %s %s %s", m.columnLabel(spec.Column), spec.Mode, spec.Direction), false)
}

func (m *Model) columnLabel(col int) string {
	names := m.vm.Headers()
	if col < len(names) {
		return names[col]
	}
	return strconv.Itoa(col + 1)
}

// currentCell reads the cell under the cursor straight from the store.
func (m *Model) currentCell() (string, bool) {
	id, ok := m.vm.CursorRowID()
	if !ok {
		return "", false
	}
	row, err := m.sess.rows.Row(id)
	if err != nil {
		return "", false
	}
	col := m.vm.CursorColumn()
	if col >= len(row.Cells) {
		return "", true
	}
	return row.Cells[col], true
}

func (m *Model) findCell() {
	cell, ok := m.currentCell()
	if !ok {
		m.setStatus("no cell selected", true)
		return
	}
	m.submitFind("^"+regexp.QuoteMeta(cell)+"$", false)
}

func (m *Model) filterCell() {
	cell, ok := m.currentCell()
	if !ok {
		m.setStatus("no cell selected", true)
		return
	}
	if err := m.vm.Flt.SetRowFilter(cell, filter.ExactCell, m.vm.CursorColumn(), false); err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.vm.ReSort()
	m.lastSortLen = m.vm.Flt.Len()
	m.setStatus(fmt.Sprintf("filter: %s = %q", m.columnLabel(m.vm.CursorColumn()), cell), false)
}

func (m *Model) findStep(forward bool) {
	f := m.vm.Finder
	if f == nil {
		m.setStatus("no find active", true)
		return
	}
	step := f.Prev
	wrap := f.Last
	if forward {
		step = f.Next
		wrap = f.First
	}
	if mt, ok := step(); ok {
		m.jumpToMatch(mt)
		return
	}
	if !f.Complete() {
		m.setStatus("searching…", false)
		return
	}
	if mt, ok := wrap(); ok {
		m.jumpToMatch(mt)
		m.setStatus("wrapped", false)
		return
	}
	m.setStatus("no match", true)
}

func (m *Model) jumpToMatch(mt find.Match) {
	cur, _ := m.vm.Cursor()
	m.vm.MoveRow(mt.Logical - cur)
	for i, c := range m.vm.VisibleColumns() {
		if c == mt.Column {
			_, cc := m.vm.Cursor()
			m.vm.MoveCol(i - cc)
			break
		}
	}
}

func (m *Model) pageRows() int {
	n := m.termHeight - 2
	if n < 1 {
		n = 1
	}
	return n
}

func (m *Model) pageCols() int {
	if m.lastShownCols > 1 {
		return m.lastShownCols - 1
	}
	return 1
}
