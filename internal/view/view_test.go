package view

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"csvlens/internal/filter"
	"csvlens/internal/index"
	"csvlens/internal/sorter"
	"csvlens/internal/source"
	"csvlens/internal/store"
)

func openRows(t *testing.T, content string) *store.Store {
	t.Helper()
	p := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := source.OpenFile(p)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })
	idx := index.New()
	ix := index.Start(src, idx)
	t.Cleanup(ix.Stop)
	deadline := time.Now().Add(5 * time.Second)
	for !idx.Complete() {
		if time.Now().After(deadline) {
			t.Fatal("indexing did not complete")
		}
		time.Sleep(2 * time.Millisecond)
	}
	return store.New(src, idx, ',', 64)
}

func extendAll(flt *filter.Engine) {
	for !flt.Complete() {
		if flt.Extend(1<<30, 1024) == 0 {
			break
		}
	}
}

func newFruitModel(t *testing.T) *Model {
	t.Helper()
	rows := openRows(t, "name,size\napple,10\nbanana,120\ncherry,5\ndate,30\n")
	headers := []string{"name", "size"}
	flt := filter.NewEngine(rows, headers, true)
	return NewModel(rows, flt, headers, true)
}

func TestCursorMotion(t *testing.T) {
	m := newFruitModel(t)
	if !m.CursorValid() {
		t.Fatal("cursor should be valid on non-empty data")
	}
	m.MoveRow(2)
	if r, _ := m.Cursor(); r != 2 {
		t.Fatalf("row = %d, want 2", r)
	}
	m.MoveRow(100)
	if r, _ := m.Cursor(); r != 3 {
		t.Fatalf("row = %d, motion must clamp to last", r)
	}
	m.MoveRow(-100)
	if r, _ := m.Cursor(); r != 0 {
		t.Fatalf("row = %d, motion must clamp to first", r)
	}
	m.MoveCol(1)
	if _, c := m.Cursor(); c != 1 {
		t.Fatalf("col = %d, want 1", c)
	}
	m.MoveCol(5)
	if _, c := m.Cursor(); c != 1 {
		t.Fatalf("col = %d, must clamp to last visible", c)
	}
}

func TestGotoLine(t *testing.T) {
	m := newFruitModel(t)
	m.GotoLine(3)
	if id, ok := m.CursorRowID(); !ok || id != 3 {
		t.Fatalf("CursorRowID = %d %v, line 3 is cherry (row id 3)", id, ok)
	}
	m.GotoLine(99)
	if r, _ := m.Cursor(); r != 3 {
		t.Fatalf("row = %d, overshoot must clamp", r)
	}
}

func TestGotoLineClampsOverFilter(t *testing.T) {
	m := newFruitModel(t)
	if err := m.Flt.SetRowFilter("a", filter.AnyColumn, 0, false); err != nil {
		t.Fatal(err)
	}
	extendAll(m.Flt)
	// Matches: apple(1), banana(2), date(4). Line 3 (cherry) is filtered
	// out; the cursor lands on the nearest following present row.
	m.GotoLine(3)
	if id, ok := m.CursorRowID(); !ok || id != 4 {
		t.Fatalf("CursorRowID = %d %v, want 4", id, ok)
	}
}

func TestMarksSurviveFilterChanges(t *testing.T) {
	m := newFruitModel(t)
	m.MoveRow(1) // banana
	m.ToggleMark()
	if err := m.Flt.SetRowFilter("cherry", filter.AnyColumn, 0, false); err != nil {
		t.Fatal(err)
	}
	extendAll(m.Flt)
	if !m.IsMarked(2) {
		t.Fatal("mark must persist while its row is filtered out")
	}
	m.Flt.ClearRowFilter()
	if got := m.Marks(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Marks = %v", got)
	}
	m.ClearMarks()
	if len(m.Marks()) != 0 {
		t.Fatal("ClearMarks left marks behind")
	}
}

func TestSelectionCycle(t *testing.T) {
	m := newFruitModel(t)
	modes := []SelectionMode{SelectColumn, SelectCell, SelectRow}
	for _, want := range modes {
		m.CycleSelection()
		if m.Mode != want {
			t.Fatalf("Mode = %v, want %v", m.Mode, want)
		}
	}
}

func TestToggleWrap(t *testing.T) {
	m := newFruitModel(t)
	m.ToggleWrap(WrapChars)
	if m.Wrap != WrapChars {
		t.Fatalf("Wrap = %v", m.Wrap)
	}
	m.ToggleWrap(WrapWords)
	if m.Wrap != WrapWords {
		t.Fatalf("Wrap = %v, switching target replaces mode", m.Wrap)
	}
	m.ToggleWrap(WrapWords)
	if m.Wrap != WrapOff {
		t.Fatalf("Wrap = %v, same target toggles off", m.Wrap)
	}
}

func TestFreezeClamped(t *testing.T) {
	m := newFruitModel(t)
	m.SetFrozen(10)
	if m.Frozen != 2 {
		t.Fatalf("Frozen = %d, must clamp to column count", m.Frozen)
	}
	m.SetFrozen(-1)
	if m.Frozen != 0 {
		t.Fatalf("Frozen = %d", m.Frozen)
	}
}

func TestSortCursorFollowsRow(t *testing.T) {
	m := newFruitModel(t)
	m.MoveRow(1) // banana, id 2
	m.SetSort(&sorter.Spec{Column: 1, Mode: sorter.Natural})
	// Natural by size: cherry(5) apple(10) date(30) banana(120).
	if id, ok := m.CursorRowID(); !ok || id != 2 {
		t.Fatalf("CursorRowID = %d %v, cursor must stay on banana", id, ok)
	}
	if r, _ := m.Cursor(); r != 3 {
		t.Fatalf("row = %d, banana sorts last", r)
	}
	ids := make([]int, 0, m.Len())
	for i := 0; i < m.Len(); i++ {
		id, _ := m.RowIDAt(i)
		ids = append(ids, id)
	}
	want := []int{3, 1, 4, 2}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("sorted ids = %v, want %v", ids, want)
		}
	}
}

func TestReattachKeepsMarksAndCursor(t *testing.T) {
	m := newFruitModel(t)
	m.MoveRow(2) // cherry, id 3
	m.ToggleMark()
	m.MoveRow(1) // date, id 4

	// New epoch: same shape, one row fewer.
	rows2 := openRows(t, "name,size\napple,11\nbanana,121\ncherry,6\n")
	flt2 := filter.NewEngine(rows2, []string{"name", "size"}, true)
	m.Reattach(rows2, flt2, []string{"name", "size"})

	if !m.IsMarked(3) {
		t.Fatal("mark on a surviving row id must be kept even though bytes changed")
	}
	// Row id 4 is gone; cursor clamps.
	if r, _ := m.Cursor(); r != 2 {
		t.Fatalf("row = %d, want clamp to last", r)
	}
}

func TestReattachPrunesVanishedMarks(t *testing.T) {
	m := newFruitModel(t)
	m.LastRow() // date, id 4
	m.ToggleMark()

	rows2 := openRows(t, "name,size\napple,11\n")
	flt2 := filter.NewEngine(rows2, []string{"name", "size"}, true)
	m.Reattach(rows2, flt2, []string{"name", "size"})

	if len(m.Marks()) != 0 {
		t.Fatalf("Marks = %v, id 4 does not exist in the new epoch", m.Marks())
	}
}
