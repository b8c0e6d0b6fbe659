package ui

import (
	"github.com/charmbracelet/bubbles/textinput"

	"csvlens/internal/config"
	"csvlens/internal/index"
	"csvlens/internal/source"
	"csvlens/internal/store"
	"csvlens/internal/view"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeFind
	modeFilter
	modeColumnFilter
	modeFreeze
	modeOption
	modeHelp
)

type tickMsg struct{}

// session is one epoch's backend: the index and row store built over the
// current byte content of the source. A rewrite of the source replaces the
// whole session.
type session struct {
	src     source.Source
	idx     *index.Index
	indexer *index.Indexer
	rows    *store.Store
}

// Model is the single bubbletea model. All backend mutation happens on its
// Update goroutine; the indexer and source watcher only communicate through
// channels drained on the tick.
type Model struct {
	cfg    *config.Config
	sess   *session
	vm     *view.Model
	styles Styles

	mode      inputMode
	input     textinput.Model
	gotoBuf   string
	freezeBuf string

	findHist  *History
	colHist   *History
	stash     string
	recalling bool

	topRow        int
	termWidth     int
	termHeight    int
	lastShownCols int

	statusMsg string
	statusErr bool

	helpScroll int

	headers      []string
	headersKnown bool
	startupDone  bool
	pruned       bool
	warnsSeen    int
	stdinFailed  bool
	lastSortLen  int
	pendingJump  bool

	exitLines []string
	quitting  bool
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusErr = isErr
}
