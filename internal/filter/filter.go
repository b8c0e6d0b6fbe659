package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"csvlens/internal/index"
	"csvlens/internal/store"
)

// Scope restricts which cells of a row a filter pattern is tested against.
type Scope int

const (
	AnyColumn Scope = iota
	OneColumn
	ExactCell
)

// BadPatternError reports an uncompilable pattern or expression. The input
// machine shows Reason and returns to input mode.
type BadPatternError struct {
	Pattern string
	Reason  string
}

func (e *BadPatternError) Error() string {
	return fmt.Sprintf("bad pattern %q: %s", e.Pattern, e.Reason)
}

// predicate is one compiled row filter: either a regex over cells or, when
// the input starts with "=", a govaluate expression over named columns.
type predicate struct {
	re    *regexp.Regexp
	expr  *govaluate.EvaluableExpression
	scope Scope
	col   int
	exact string
}

// compile builds a predicate. ignoreCase is the effective flag, smartcase
// already applied by the caller.
func compile(input string, scope Scope, col int, ignoreCase bool) (*predicate, error) {
	p := &predicate{scope: scope, col: col}
	if scope == ExactCell {
		p.exact = input
		return p, nil
	}
	if strings.HasPrefix(input, "=") {
		expr, err := govaluate.NewEvaluableExpression(strings.TrimPrefix(input, "="))
		if err != nil {
			return nil, &BadPatternError{Pattern: input, Reason: err.Error()}
		}
		p.expr = expr
		return p, nil
	}
	pat := input
	if ignoreCase {
		pat = "(?i)" + pat
	}
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, &BadPatternError{Pattern: input, Reason: err.Error()}
	}
	p.re = re
	return p, nil
}

func (p *predicate) match(cells []string, headers []string) bool {
	switch {
	case p.expr != nil:
		return p.evalExpr(cells, headers)
	case p.scope == ExactCell:
		return p.col < len(cells) && cells[p.col] == p.exact
	case p.scope == OneColumn:
		return p.col < len(cells) && p.re.MatchString(cells[p.col])
	default:
		for _, c := range cells {
			if p.re.MatchString(c) {
				return true
			}
		}
		return false
	}
}

// evalExpr binds each cell under its header name and a positional cN alias,
// numeric where the cell parses as a number. A non-bool or failed evaluation
// counts as no match.
func (p *predicate) evalExpr(cells []string, headers []string) bool {
	params := make(map[string]any, 2*len(cells))
	for i, c := range cells {
		var v any = c
		if f, err := strconv.ParseFloat(c, 64); err == nil {
			v = f
		}
		if i < len(headers) && headers[i] != "" {
			params[headers[i]] = v
		}
		params["c"+strconv.Itoa(i+1)] = v
	}
	res, err := p.expr.Evaluate(params)
	if err != nil {
		return false
	}
	b, ok := res.(bool)
	return ok && b
}

// Engine owns the filtered sequence: the strictly increasing list of row ids
// whose cells match the active predicate. The sequence is extended lazily in
// bounded slices so the UI tick stays responsive.
type Engine struct {
	rows      *store.Store
	headers   []string
	dataStart int

	pred *predicate
	seq  []int
	next int

	colRe *regexp.Regexp
}

func NewEngine(rows *store.Store, headers []string, hasHeaders bool) *Engine {
	e := &Engine{rows: rows, headers: headers}
	if hasHeaders {
		e.dataStart = 1
	}
	return e
}

// SetHeaders replaces the header names after a reload.
func (e *Engine) SetHeaders(headers []string) {
	e.headers = headers
}

// SetRowFilter installs a predicate and resets the filtered sequence.
func (e *Engine) SetRowFilter(input string, scope Scope, col int, ignoreCase bool) error {
	p, err := compile(input, scope, col, ignoreCase)
	if err != nil {
		return err
	}
	e.pred = p
	e.resetSeq()
	return nil
}

func (e *Engine) ClearRowFilter() {
	e.pred = nil
	e.resetSeq()
}

// SetColumnFilter restricts visible columns to headers matching pattern.
func (e *Engine) SetColumnFilter(pattern string, ignoreCase bool) error {
	if ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return &BadPatternError{Pattern: pattern, Reason: err.Error()}
	}
	e.colRe = re
	return nil
}

func (e *Engine) ClearColumnFilter() { e.colRe = nil }

func (e *Engine) ClearAll() {
	e.ClearRowFilter()
	e.ClearColumnFilter()
}

// Invalidate discards the filtered sequence, keeping the predicates. Called
// on epoch change; the new epoch rebuilds the sequence from scratch.
func (e *Engine) Invalidate() {
	e.resetSeq()
}

// Rebind points the engine at a new epoch's store, keeping the installed
// predicates but discarding the sequence built over the old one.
func (e *Engine) Rebind(rows *store.Store) {
	e.rows = rows
	e.resetSeq()
}

func (e *Engine) resetSeq() {
	e.seq = e.seq[:0]
	e.next = e.dataStart
}

// Active reports whether a row filter is installed.
func (e *Engine) Active() bool { return e.pred != nil }

// ColumnFilterActive reports whether a column filter is installed.
func (e *Engine) ColumnFilterActive() bool { return e.colRe != nil }

// Len is the current logical row count: filtered hits so far, or every
// indexed data row when no filter is active.
func (e *Engine) Len() int {
	if e.pred == nil {
		n := e.rows.Len() - e.dataStart
		if n < 0 {
			return 0
		}
		return n
	}
	return len(e.seq)
}

// RowAt maps a logical index to a row id.
func (e *Engine) RowAt(logical int) (int, bool) {
	if logical < 0 {
		return 0, false
	}
	if e.pred == nil {
		id := logical + e.dataStart
		if id >= e.rows.Len() {
			return 0, false
		}
		return id, true
	}
	if logical >= len(e.seq) {
		return 0, false
	}
	return e.seq[logical], true
}

// LogicalOf is the inverse of RowAt: the logical index currently holding row
// id, or false when the row is filtered out (or not reached yet).
func (e *Engine) LogicalOf(id int) (int, bool) {
	if e.pred == nil {
		if id < e.dataStart || id >= e.rows.Len() {
			return 0, false
		}
		return id - e.dataStart, true
	}
	lo, hi := 0, len(e.seq)
	for lo < hi {
		mid := (lo + hi) / 2
		if e.seq[mid] < id {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(e.seq) && e.seq[lo] == id {
		return lo, true
	}
	return 0, false
}

// Extend grows the filtered sequence until it holds at least target hits,
// the index is exhausted, or budget candidate rows were examined. Returns
// the number of candidates consumed.
func (e *Engine) Extend(target, budget int) int {
	if e.pred == nil {
		return 0
	}
	examined := 0
	for len(e.seq) < target && examined < budget {
		row, err := e.rows.Row(e.next)
		if err == index.ErrNotYet || err == index.ErrOutOfRange {
			break
		}
		if err == nil && e.pred.match(row.Cells, e.headers) {
			e.seq = append(e.seq, e.next)
		}
		e.next++
		examined++
	}
	return examined
}

// Complete reports whether the filtered sequence covers the whole input.
func (e *Engine) Complete() bool {
	if e.pred == nil {
		return e.rows.Complete()
	}
	return e.rows.Complete() && e.next >= e.rows.Len()
}

// VisibleColumns returns the indices of columns whose name matches the
// column filter, or all of width columns when none is set. Without headers
// the filter matches the synthetic 1-based column numbers.
func (e *Engine) VisibleColumns(width int) []int {
	out := make([]int, 0, width)
	for i := 0; i < width; i++ {
		if e.colRe == nil || e.colRe.MatchString(e.columnName(i)) {
			out = append(out, i)
		}
	}
	return out
}

func (e *Engine) columnName(i int) string {
	if e.dataStart == 1 && i < len(e.headers) {
		return e.headers[i]
	}
	return strconv.Itoa(i + 1)
}
