package find

import (
	"regexp"
	"sort"

	"csvlens/internal/filter"
	"csvlens/internal/store"
)

// Sequence is the logical row order the finder walks: filtered, and sorted
// when a sort is active. The view model provides it.
type Sequence interface {
	Len() int
	RowAt(logical int) (store.Row, bool)
	Complete() bool
}

// Match is one regex hit inside a cell. Start and End are byte offsets.
type Match struct {
	Logical int
	Column  int
	Start   int
	End     int
}

// Finder walks matches in (logical, column, span start) order. The match
// list grows lazily: Extend scans a bounded number of rows per call so the
// UI tick never stalls on a large file.
type Finder struct {
	re      *regexp.Regexp
	seq     Sequence
	matches []Match
	scanned int
	cursor  int
}

func New(pattern string, ignoreCase bool, seq Sequence) (*Finder, error) {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &filter.BadPatternError{Pattern: pattern, Reason: err.Error()}
	}
	return &Finder{re: re, seq: seq, cursor: -1}, nil
}

// Pattern returns the compiled pattern source.
func (f *Finder) Pattern() string { return f.re.String() }

// Extend scans up to budget more logical rows for matches. Returns the
// number of rows scanned.
func (f *Finder) Extend(budget int) int {
	n := f.seq.Len()
	done := 0
	for f.scanned < n && done < budget {
		row, ok := f.seq.RowAt(f.scanned)
		if !ok {
			break
		}
		for col, cell := range row.Cells {
			for _, span := range f.re.FindAllStringIndex(cell, -1) {
				f.matches = append(f.matches, Match{
					Logical: f.scanned,
					Column:  col,
					Start:   span[0],
					End:     span[1],
				})
			}
		}
		f.scanned++
		done++
	}
	return done
}

// Complete reports whether every logical row has been scanned.
func (f *Finder) Complete() bool {
	return f.seq.Complete() && f.scanned >= f.seq.Len()
}

// Count returns the number of matches found so far.
func (f *Finder) Count() int { return len(f.matches) }

// Current returns the match under the cursor.
func (f *Finder) Current() (Match, bool) {
	if f.cursor < 0 || f.cursor >= len(f.matches) {
		return Match{}, false
	}
	return f.matches[f.cursor], true
}

// CursorIndex is the 0-based position of the cursor, -1 when unset.
func (f *Finder) CursorIndex() int { return f.cursor }

// Next advances to the next materialized match. A false return with an
// incomplete scan means the caller should Extend and retry; with a complete
// scan it means the cursor is at the last match (wrap if desired).
func (f *Finder) Next() (Match, bool) {
	if f.cursor+1 >= len(f.matches) {
		return Match{}, false
	}
	f.cursor++
	return f.matches[f.cursor], true
}

func (f *Finder) Prev() (Match, bool) {
	if f.cursor <= 0 {
		return Match{}, false
	}
	f.cursor--
	return f.matches[f.cursor], true
}

// First moves the cursor to the first match.
func (f *Finder) First() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	f.cursor = 0
	return f.matches[0], true
}

// Last moves the cursor to the last materialized match.
func (f *Finder) Last() (Match, bool) {
	if len(f.matches) == 0 {
		return Match{}, false
	}
	f.cursor = len(f.matches) - 1
	return f.matches[f.cursor], true
}

// Seek places the cursor on the first match at or after (logical, col).
func (f *Finder) Seek(logical, col int) (Match, bool) {
	i := sort.Search(len(f.matches), func(i int) bool {
		m := f.matches[i]
		if m.Logical != logical {
			return m.Logical > logical
		}
		return m.Column >= col
	})
	if i >= len(f.matches) {
		return Match{}, false
	}
	f.cursor = i
	return f.matches[i], true
}

// RowMatches returns the materialized matches on one logical row, for
// highlight rendering.
func (f *Finder) RowMatches(logical int) []Match {
	lo := sort.Search(len(f.matches), func(i int) bool { return f.matches[i].Logical >= logical })
	hi := sort.Search(len(f.matches), func(i int) bool { return f.matches[i].Logical > logical })
	return f.matches[lo:hi]
}

// Invalidate drops all scan progress. Called when the logical sequence
// changes shape (new filter, new sort, epoch bump).
func (f *Finder) Invalidate() {
	f.matches = f.matches[:0]
	f.scanned = 0
	f.cursor = -1
}
