package ui

type action int

const (
	actNone action = iota
	actQuit
	actDown
	actUp
	actLeft
	actRight
	actHalfPageDown
	actHalfPageUp
	actPageDown
	actPageUp
	actTop
	actBottom
	actFirstCol
	actLastCol
	actPageColsLeft
	actPageColsRight
	actFind
	actFindNext
	actFindPrev
	actFindCell
	actFilter
	actFilterCell
	actColumnFilter
	actSelectCycle
	actEnter
	actCopy
	actMark
	actClearMarks
	actSortToggle
	actSortNatural
	actWiden
	actNarrow
	actOption
	actFreeze
	actReset
	actHelp
	actExitMarked
)

// binding pairs the key strings (as tea.KeyMsg.String() produces them) with
// an action and the label shown in the help overlay.
type binding struct {
	keys []string
	help string
	act  action
}

var bindings = []binding{
	{[]string{"j", "down"}, "move down", actDown},
	{[]string{"k", "up"}, "move up", actUp},
	{[]string{"h", "left"}, "move left", actLeft},
	{[]string{"l", "right"}, "move right", actRight},
	{[]string{"ctrl+f", "pgdown"}, "page down", actPageDown},
	{[]string{"ctrl+b", "pgup"}, "page up", actPageUp},
	{[]string{"ctrl+d"}, "half page down", actHalfPageDown},
	{[]string{"ctrl+u"}, "half page up", actHalfPageUp},
	{[]string{"g", "home"}, "first row, or go to buffered line", actTop},
	{[]string{"G", "end"}, "last row, or go to buffered line", actBottom},
	{[]string{"ctrl+left"}, "first column", actFirstCol},
	{[]string{"ctrl+right"}, "last column", actLastCol},
	{[]string{"ctrl+h"}, "page columns left", actPageColsLeft},
	{[]string{"ctrl+l"}, "page columns right", actPageColsRight},
	{[]string{"/"}, "find (regex)", actFind},
	{[]string{"n"}, "next match", actFindNext},
	{[]string{"N"}, "previous match", actFindPrev},
	{[]string{"#"}, "find cells equal to this one", actFindCell},
	{[]string{"&"}, "filter rows (regex or =expression)", actFilter},
	{[]string{"@"}, "filter rows whose column equals this cell", actFilterCell},
	{[]string{"*"}, "filter columns by name", actColumnFilter},
	{[]string{"tab"}, "cycle row/column/cell selection", actSelectCycle},
	{[]string{"enter"}, "go to buffered line; cell mode: print and exit", actEnter},
	{[]string{"y"}, "copy selection to clipboard", actCopy},
	{[]string{"m"}, "mark row", actMark},
	{[]string{"M"}, "clear marks", actClearMarks},
	{[]string{"J"}, "sort by column: asc, desc, off", actSortToggle},
	{[]string{"ctrl+j"}, "toggle natural sort", actSortNatural},
	{[]string{">"}, "widen column", actWiden},
	{[]string{"<"}, "narrow column", actNarrow},
	{[]string{"-"}, "option: -S wrap chars, -W wrap words", actOption},
	{[]string{"f"}, "freeze leading columns (digits, enter)", actFreeze},
	{[]string{"r"}, "reset find and filters", actReset},
	{[]string{"?", "H"}, "help", actHelp},
	{[]string{"ctrl+e"}, "print marked rows and exit", actExitMarked},
	{[]string{"q", "esc", "ctrl+c"}, "quit", actQuit},
}

func lookupAction(key string) action {
	for _, b := range bindings {
		for _, k := range b.keys {
			if k == key {
				return b.act
			}
		}
	}
	return actNone
}
