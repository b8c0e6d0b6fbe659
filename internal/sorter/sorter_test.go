package sorter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"csvlens/internal/filter"
	"csvlens/internal/index"
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

func TestNaturalCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"file2", "file10", -1},
		{"file10", "file2", 1},
		{"file2", "file2", 0},
		{"a", "b", -1},
		{"a2b", "a2c", -1},
		{"x", "x1", -1},
		{"9", "10", -1},
		{"00100", "99", 1},
		{"v1.2", "v1.10", -1},
	}
	for _, c := range cases {
		if got := naturalCompare(c.a, c.b); got != c.want {
			t.Errorf("naturalCompare(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestSortLex(t *testing.T) {
	rows := openRows(t, "name\nfile10\nfile2\nfile1\n")
	flt := filter.NewEngine(rows, []string{"name"}, true)
	res := Sort(flt, rows, Spec{Column: 0, Mode: Lex})
	// Lexicographic: file1 < file10 < file2.
	want := []int{2, 0, 1}
	for i := range want {
		if res.Perm[i] != want[i] {
			t.Fatalf("Perm = %v, want %v", res.Perm, want)
		}
	}
	if res.Partial {
		t.Fatal("complete input should not be partial")
	}
}

func TestSortNatural(t *testing.T) {
	rows := openRows(t, "name\nfile10\nfile2\nfile1\n")
	flt := filter.NewEngine(rows, []string{"name"}, true)
	res := Sort(flt, rows, Spec{Column: 0, Mode: Natural})
	want := []int{2, 1, 0}
	for i := range want {
		if res.Perm[i] != want[i] {
			t.Fatalf("Perm = %v, want %v", res.Perm, want)
		}
	}
}

func TestSortDescKeepsTieOrder(t *testing.T) {
	rows := openRows(t, "v,tag\n1,a\n2,b\n1,c\n2,d\n")
	flt := filter.NewEngine(rows, []string{"v", "tag"}, true)
	res := Sort(flt, rows, Spec{Column: 0, Direction: Desc, Mode: Lex})
	// Primary key reversed, ties stay in ascending row order: 2,2 then 1,1.
	want := []int{1, 3, 0, 2}
	for i := range want {
		if res.Perm[i] != want[i] {
			t.Fatalf("Perm = %v, want %v", res.Perm, want)
		}
	}
}

func TestSortMissingCellsFirst(t *testing.T) {
	rows := openRows(t, "a,b\nx,2\nshort\ny,1\n")
	flt := filter.NewEngine(rows, []string{"a", "b"}, true)
	res := Sort(flt, rows, Spec{Column: 1, Mode: Lex})
	if res.Perm[0] != 1 {
		t.Fatalf("Perm = %v, row without the column should sort first", res.Perm)
	}
}

func TestSortOverFiltered(t *testing.T) {
	rows := openRows(t, "name,size\nb,2\nskip,9\na,1\n")
	flt := filter.NewEngine(rows, []string{"name", "size"}, true)
	if err := flt.SetRowFilter("^(a|b)$", filter.AnyColumn, 0, false); err != nil {
		t.Fatal(err)
	}
	for !flt.Complete() {
		if flt.Extend(1<<30, 1024) == 0 {
			break
		}
	}
	res := Sort(flt, rows, Spec{Column: 0, Mode: Lex})
	// Logical order after filter is [b a]; sorted by name it becomes [a b].
	if len(res.Perm) != 2 || res.Perm[0] != 1 || res.Perm[1] != 0 {
		t.Fatalf("Perm = %v, want [1 0]", res.Perm)
	}
}
