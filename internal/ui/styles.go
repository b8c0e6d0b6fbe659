package ui

import "github.com/charmbracelet/lipgloss"

type Styles struct {
	Header       lipgloss.Style
	HeaderCursor lipgloss.Style
	Cell         lipgloss.Style
	Selected     lipgloss.Style
	Gutter       lipgloss.Style
	GutterMark   lipgloss.Style
	Match        lipgloss.Style
	MatchCursor  lipgloss.Style
	Status       lipgloss.Style
	StatusErr    lipgloss.Style
	Help         lipgloss.Style
	HelpTitle    lipgloss.Style
	Columns      []lipgloss.Style
}

func NewStyles(colorColumns bool) Styles {
	s := Styles{
		Header:       lipgloss.NewStyle().Bold(true),
		HeaderCursor: lipgloss.NewStyle().Bold(true).Underline(true),
		Cell:         lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("220")),
		Gutter:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		GutterMark:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
		Match:        lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("74")),
		MatchCursor:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("214")),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StatusErr:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Help:         lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		HelpTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
	}
	if colorColumns {
		for _, c := range []string{"45", "114", "220", "212", "75", "180"} {
			s.Columns = append(s.Columns, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
		}
	}
	return s
}

// ColumnStyle cycles the per-column palette, or the plain cell style when
// column coloring is off.
func (s Styles) ColumnStyle(col int) lipgloss.Style {
	if len(s.Columns) == 0 {
		return s.Cell
	}
	return s.Columns[col%len(s.Columns)]
}
