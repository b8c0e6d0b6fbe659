package find

import (
	"testing"

	"csvlens/internal/store"
)

// memSeq is a fixed logical sequence for finder tests.
type memSeq struct {
	rows     [][]string
	complete bool
}

func (s *memSeq) Len() int { return len(s.rows) }

func (s *memSeq) RowAt(i int) (store.Row, bool) {
	if i < 0 || i >= len(s.rows) {
		return store.Row{}, false
	}
	return store.Row{ID: i, Cells: s.rows[i]}, true
}

func (s *memSeq) Complete() bool { return s.complete }

func newFinder(t *testing.T, pattern string, rows [][]string) *Finder {
	t.Helper()
	f, err := New(pattern, false, &memSeq{rows: rows, complete: true})
	if err != nil {
		t.Fatal(err)
	}
	for !f.Complete() {
		if f.Extend(1024) == 0 {
			break
		}
	}
	return f
}

func TestFinderOrder(t *testing.T) {
	f := newFinder(t, "x", [][]string{
		{"ax", "b"},
		{"c", "xx"},
		{"nope", "nope"},
		{"x", "x"},
	})
	if f.Count() != 5 {
		t.Fatalf("Count = %d, want 5", f.Count())
	}
	want := []Match{
		{0, 0, 1, 2},
		{1, 1, 0, 1},
		{1, 1, 1, 2},
		{3, 0, 0, 1},
		{3, 1, 0, 1},
	}
	var got []Match
	for m, ok := f.First(); ok; m, ok = f.Next() {
		got = append(got, m)
	}
	if len(got) != len(want) {
		t.Fatalf("walked %d matches, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("match[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestFinderPrevStopsAtFirst(t *testing.T) {
	f := newFinder(t, "a", [][]string{{"a"}, {"a"}})
	f.Last()
	if m, ok := f.Prev(); !ok || m.Logical != 0 {
		t.Fatalf("Prev = %+v %v", m, ok)
	}
	if _, ok := f.Prev(); ok {
		t.Fatal("Prev at first match should not move")
	}
}

func TestFinderSeek(t *testing.T) {
	f := newFinder(t, "m", [][]string{
		{"m", ""},
		{"", "m"},
		{"m", "m"},
	})
	if m, ok := f.Seek(1, 0); !ok || m.Logical != 1 || m.Column != 1 {
		t.Fatalf("Seek(1,0) = %+v %v", m, ok)
	}
	if m, ok := f.Seek(2, 1); !ok || m.Logical != 2 || m.Column != 1 {
		t.Fatalf("Seek(2,1) = %+v %v", m, ok)
	}
	if _, ok := f.Seek(3, 0); ok {
		t.Fatal("Seek past the end should fail")
	}
}

func TestFinderRowMatches(t *testing.T) {
	f := newFinder(t, "q", [][]string{
		{"q"},
		{"qq", "q"},
		{"none"},
	})
	if got := f.RowMatches(1); len(got) != 3 {
		t.Fatalf("RowMatches(1) = %v", got)
	}
	if got := f.RowMatches(2); len(got) != 0 {
		t.Fatalf("RowMatches(2) = %v", got)
	}
}

func TestFinderLazyExtension(t *testing.T) {
	seq := &memSeq{rows: [][]string{{"a"}, {"a"}, {"a"}, {"a"}}, complete: false}
	f, err := New("a", false, seq)
	if err != nil {
		t.Fatal(err)
	}
	if n := f.Extend(2); n != 2 {
		t.Fatalf("Extend scanned %d rows, budget 2", n)
	}
	if f.Count() != 2 || f.Complete() {
		t.Fatalf("Count = %d Complete = %v after partial scan", f.Count(), f.Complete())
	}
	seq.complete = true
	f.Extend(100)
	if !f.Complete() || f.Count() != 4 {
		t.Fatalf("Count = %d Complete = %v", f.Count(), f.Complete())
	}
}

func TestFinderBadPattern(t *testing.T) {
	if _, err := New("(", false, &memSeq{}); err == nil {
		t.Fatal("expected compile error")
	}
}

func TestFinderInvalidate(t *testing.T) {
	f := newFinder(t, "a", [][]string{{"a"}})
	f.First()
	f.Invalidate()
	if f.Count() != 0 {
		t.Fatalf("Count after Invalidate = %d", f.Count())
	}
	if _, ok := f.Current(); ok {
		t.Fatal("cursor should be unset after Invalidate")
	}
}
