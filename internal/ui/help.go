package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) onHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.helpScroll++
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.mode = modeNormal
	}
	return m, nil
}

func (m *Model) helpView() string {
	lines := []string{m.styles.HelpTitle.Render("csvlens keys"), ""}
	for _, b := range bindings {
		lines = append(lines, fmt.Sprintf("  %-18s %s", strings.Join(b.keys, " "), b.help))
	}
	lines = append(lines, "", m.styles.Help.Render("j/k scroll, any other key closes"))

	avail := m.termHeight
	if avail < 1 {
		avail = 1
	}
	if m.helpScroll > len(lines)-avail {
		m.helpScroll = len(lines) - avail
	}
	if m.helpScroll < 0 {
		m.helpScroll = 0
	}
	if len(lines) > avail {
		lines = lines[m.helpScroll:]
		if len(lines) > avail {
			lines = lines[:avail]
		}
	}
	return strings.Join(lines, "\n")
}
