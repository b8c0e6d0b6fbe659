package ui

import (
	"os"

	"github.com/charmbracelet/bubbles/textinput"

	"csvlens/internal/config"
	"csvlens/internal/filter"
	"csvlens/internal/find"
	"csvlens/internal/index"
	"csvlens/internal/source"
	"csvlens/internal/store"
	"csvlens/internal/util/logx"
	"csvlens/internal/view"
)

const rowCacheSize = 4096

func openSource(cfg *config.Config) (source.Source, error) {
	if cfg.Filename == "" {
		return source.SpillStdin(os.Stdin, !cfg.NoStreamingStdin)
	}
	if cfg.AutoReload {
		return source.OpenReload(cfg.Filename)
	}
	return source.OpenFile(cfg.Filename)
}

func newSession(src source.Source, delim byte) *session {
	idx := index.New()
	return &session{
		src:     src,
		idx:     idx,
		indexer: index.Start(src, idx),
		rows:    store.New(src, idx, delim, rowCacheSize),
	}
}

func newModel(cfg *config.Config, src source.Source) *Model {
	sess := newSession(src, cfg.DelimiterChar)
	flt := filter.NewEngine(sess.rows, nil, !cfg.NoHeaders)
	vm := view.NewModel(sess.rows, flt, nil, !cfg.NoHeaders)
	switch config.WrapSetting(cfg.Wrap) {
	case config.WrapChars:
		vm.Wrap = view.WrapChars
	case config.WrapWords:
		vm.Wrap = view.WrapWords
	}
	in := textinput.New()
	in.CharLimit = 512
	return &Model{
		cfg:      cfg,
		sess:     sess,
		vm:       vm,
		styles:   NewStyles(cfg.ColorColumns),
		input:    in,
		findHist: NewHistory(),
		colHist:  NewHistory(),
	}
}

// applyHeaders runs once per epoch, as soon as row 0 is indexed. Without
// headers the first row only fixes the initial column count.
func (m *Model) applyHeaders(first []string) {
	if m.cfg.NoHeaders {
		m.headers = make([]string, len(first))
	} else {
		m.headers = append([]string(nil), first...)
	}
	m.vm.Flt.SetHeaders(m.headers)
	m.vm.Reattach(m.sess.rows, m.vm.Flt, m.headers)
	m.headersKnown = true
}

// applyStartupOptions installs --columns, --filter and --find once headers
// are known, exactly as if the user had typed them.
func (m *Model) applyStartupOptions() {
	m.startupDone = true
	ic := m.cfg.IgnoreCase
	if p := m.cfg.Columns; p != "" {
		if err := m.vm.Flt.SetColumnFilter(p, config.SmartCase(p, ic)); err != nil {
			m.setStatus(err.Error(), true)
		}
	}
	if p := m.cfg.Filter; p != "" {
		if err := m.vm.Flt.SetRowFilter(p, filter.AnyColumn, 0, config.SmartCase(p, ic)); err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.vm.ReSort()
			m.lastSortLen = m.vm.Flt.Len()
		}
	}
	if p := m.cfg.Find; p != "" {
		f, err := find.New(p, config.SmartCase(p, ic), m.vm)
		if err != nil {
			m.setStatus(err.Error(), true)
		} else {
			m.vm.Finder = f
			m.pendingJump = true
		}
	}
	m.vm.Clamp()
}

// rebuildEpoch tears down the indexer after the source was rewritten in
// place and builds a fresh index and store over the new bytes. Filters, the
// sort spec and marks carry over; the cursor re-resolves by row id.
func (m *Model) rebuildEpoch() {
	logx.Infof("ui: source rewritten, rebuilding epoch for %s", m.sess.src.Path())
	m.sess.indexer.Stop()
	m.sess = newSession(m.sess.src, m.cfg.DelimiterChar)
	m.vm.Flt.Rebind(m.sess.rows)
	m.headersKnown = false
	m.pruned = false
	m.warnsSeen = 0
	m.lastSortLen = 0
	m.vm.Reattach(m.sess.rows, m.vm.Flt, m.headers)
	if m.vm.Finder != nil {
		m.vm.Finder.Invalidate()
	}
	m.setStatus("reloaded", false)
}
