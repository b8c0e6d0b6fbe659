package ui

import (
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"

	"csvlens/internal/config"
	"csvlens/internal/filter"
	"csvlens/internal/find"
	"csvlens/internal/view"
)

func (m *Model) startInput(mode inputMode, prompt string) {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue("")
	m.input.Focus()
	m.stash = ""
	m.recalling = false
	m.history(mode).Reset()
}

func (m *Model) closeInput() {
	m.mode = modeNormal
	m.recalling = false
	m.input.Blur()
}

// history returns the recall list for an input mode. Find and row filter
// share one, the way the original keeps a single search history.
func (m *Model) history(mode inputMode) *History {
	if mode == modeColumnFilter {
		return m.colHist
	}
	return m.findHist
}

func (m *Model) onInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		mode := m.mode
		val := m.input.Value()
		m.closeInput()
		m.submitInput(mode, val)
		return m, nil
	case "esc", "ctrl+c":
		m.closeInput()
		return m, nil
	case "up":
		if s, ok := m.history(m.mode).Up(); ok {
			if !m.recalling {
				m.stash = m.input.Value()
				m.recalling = true
			}
			m.input.SetValue(s)
			m.input.CursorEnd()
		}
		return m, nil
	case "down":
		if s, ok := m.history(m.mode).Down(); ok {
			m.input.SetValue(s)
			m.input.CursorEnd()
		} else if m.recalling {
			m.input.SetValue(m.stash)
			m.input.CursorEnd()
			m.recalling = false
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput applies a finished buffer. An empty buffer clears that mode's
// state, matching how an empty pattern means "off".
func (m *Model) submitInput(mode inputMode, val string) {
	if val == "" {
		switch mode {
		case modeFind:
			m.vm.Finder = nil
		case modeFilter:
			m.vm.Flt.ClearRowFilter()
			m.vm.ReSort()
			m.lastSortLen = m.vm.Flt.Len()
		case modeColumnFilter:
			m.vm.Flt.ClearColumnFilter()
			m.vm.Clamp()
		}
		return
	}
	m.history(mode).Add(val)
	ic := config.SmartCase(val, m.cfg.IgnoreCase)
	switch mode {
	case modeFind:
		m.submitFind(val, ic)
	case modeFilter:
		if err := m.vm.Flt.SetRowFilter(val, filter.AnyColumn, 0, ic); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.vm.ReSort()
		m.lastSortLen = m.vm.Flt.Len()
	case modeColumnFilter:
		if err := m.vm.Flt.SetColumnFilter(val, ic); err != nil {
			m.setStatus(err.Error(), true)
			return
		}
		m.vm.Clamp()
	}
}

// submitFind compiles a new finder and jumps to the first match at or after
// the cursor, falling back to the overall first. With an incomplete scan the
// jump is retried on later ticks.
func (m *Model) submitFind(pattern string, ignoreCase bool) {
	f, err := find.New(pattern, ignoreCase, m.vm)
	if err != nil {
		m.setStatus(err.Error(), true)
		return
	}
	m.vm.Finder = f
	f.Extend(findBudget)
	cur, _ := m.vm.Cursor()
	if mt, ok := f.Seek(cur, 0); ok {
		m.jumpToMatch(mt)
	} else if mt, ok := f.First(); ok {
		m.jumpToMatch(mt)
	} else if !f.Complete() {
		m.pendingJump = true
	} else {
		m.setStatus("no match", true)
	}
}

func (m *Model) onFreezeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch {
	case len(key) == 1 && key[0] >= '0' && key[0] <= '9':
		m.freezeBuf += key
	case key == "enter":
		m.mode = modeNormal
		n, err := strconv.Atoi(m.freezeBuf)
		if err != nil {
			return m, nil
		}
		m.vm.SetFrozen(n)
		m.setStatus(fmt.Sprintf("%d frozen columns", m.vm.Frozen), false)
	default:
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) onOptionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = modeNormal
	switch msg.String() {
	case "S":
		m.vm.ToggleWrap(view.WrapChars)
	case "W":
		m.vm.ToggleWrap(view.WrapWords)
	default:
		return m, nil
	}
	switch m.vm.Wrap {
	case view.WrapChars:
		m.setStatus("wrap: chars", false)
	case view.WrapWords:
		m.setStatus("wrap: words", false)
	default:
		m.setStatus("wrap: off", false)
	}
	return m, nil
}
