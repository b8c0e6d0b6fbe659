package sorter

import (
	"sort"
	"strings"

	"csvlens/internal/filter"
	"csvlens/internal/store"
)

type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

type Mode int

const (
	Lex Mode = iota
	Natural
)

func (m Mode) String() string {
	if m == Natural {
		return "natural"
	}
	return "lex"
}

// Spec names what to sort by. Column is an index into the full column set.
type Spec struct {
	Column    int
	Direction Direction
	Mode      Mode
}

// Result is a permutation of the logical sequence. Partial is set while the
// filtered sequence underneath is still being extended; the permutation then
// covers only the materialized prefix.
type Result struct {
	Perm    []int
	Partial bool
	Spec    Spec
}

// Sort orders the current logical sequence by the cell in spec.Column.
// Missing cells sort before everything when ascending and after everything
// when descending; ties keep ascending row id order regardless of direction.
type entry struct {
	logical int
	id      int
	key     string
	hasKey  bool
}

func Sort(flt *filter.Engine, rows *store.Store, spec Spec) Result {
	n := flt.Len()
	entries := make([]entry, 0, n)
	for i := 0; i < n; i++ {
		id, ok := flt.RowAt(i)
		if !ok {
			break
		}
		e := entry{logical: i, id: id}
		if row, err := rows.Row(id); err == nil && spec.Column < len(row.Cells) {
			e.key = row.Cells[spec.Column]
			e.hasKey = true
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(a, b int) bool {
		x, y := entries[a], entries[b]
		c := compareKeys(x, y, spec.Mode)
		if c != 0 {
			if spec.Direction == Desc {
				return c > 0
			}
			return c < 0
		}
		return x.id < y.id
	})

	perm := make([]int, len(entries))
	for i, e := range entries {
		perm[i] = e.logical
	}
	return Result{Perm: perm, Partial: !flt.Complete(), Spec: spec}
}

func compareKeys(x, y entry, mode Mode) int {
	if x.hasKey != y.hasKey {
		if !x.hasKey {
			return -1
		}
		return 1
	}
	if mode == Natural {
		return naturalCompare(x.key, y.key)
	}
	return strings.Compare(x.key, y.key)
}

// naturalCompare orders by alternating runs of digits and non-digits. Digit
// runs compare numerically with no magnitude limit, so "file2" < "file10".
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ar, arest, aDigit := nextRun(a)
		br, brest, bDigit := nextRun(b)
		var c int
		if aDigit && bDigit {
			c = compareNumericRuns(ar, br)
		} else {
			c = strings.Compare(ar, br)
		}
		if c != 0 {
			return c
		}
		a, b = arest, brest
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func nextRun(s string) (run, rest string, digit bool) {
	digit = s[0] >= '0' && s[0] <= '9'
	i := 1
	for i < len(s) && (s[i] >= '0' && s[i] <= '9') == digit {
		i++
	}
	return s[:i], s[i:], digit
}

// compareNumericRuns compares two digit runs as non-negative integers of
// arbitrary size: strip leading zeros, then longer wins, then lexicographic.
func compareNumericRuns(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}
