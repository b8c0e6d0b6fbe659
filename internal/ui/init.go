package ui

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"csvlens/internal/config"
	"csvlens/internal/util/logx"
)

func (m *Model) Init() tea.Cmd {
	return tick()
}

// Run owns the terminal until the user quits. The returned lines are what
// Enter in cell mode or Ctrl+e asked to print to stdout after the screen is
// restored.
func Run(cfg *config.Config) ([]string, error) {
	src, err := openSource(cfg)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	m := newModel(cfg, src)
	defer func() { m.sess.indexer.Stop() }()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.IsPipedStdin {
		// Stdin carries the data; keys come from the controlling terminal.
		tty, err := os.Open("/dev/tty")
		if err != nil {
			return nil, err
		}
		defer tty.Close()
		opts = append(opts, tea.WithInput(tty))
	}

	out, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return nil, err
	}
	final := out.(*Model)
	logx.Debugf("ui: exiting with %d echo lines", len(final.exitLines))
	return final.exitLines, nil
}
