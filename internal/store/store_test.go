package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"csvlens/internal/index"
	"csvlens/internal/source"
)

func openStore(t *testing.T, content string, delim byte) *Store {
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
	return New(src, idx, delim, 64)
}

func TestStoreRow(t *testing.T) {
	s := openStore(t, "name,size\nfile1,10\nfile2,20\n", ',')
	row, err := s.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(row.Cells) != 2 || row.Cells[0] != "file1" || row.Cells[1] != "10" {
		t.Fatalf("row 1 = %v", row.Cells)
	}
	if row.ID != 1 {
		t.Fatalf("ID = %d", row.ID)
	}
}

func TestStoreIrregularArity(t *testing.T) {
	s := openStore(t, "a,b,c\n1,2\nx,y,z,w\n", ',')
	short, err := s.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(short.Cells) != 2 {
		t.Fatalf("short row arity = %d, want 2", len(short.Cells))
	}
	long, err := s.Row(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(long.Cells) != 4 {
		t.Fatalf("long row arity = %d, want 4", len(long.Cells))
	}
}

func TestStoreQuoting(t *testing.T) {
	s := openStore(t, "a,b\n\"x,1\n2\",\"he said \"\"hi\"\"\"\n", ',')
	row, err := s.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if row.Cells[0] != "x,1\n2" {
		t.Fatalf("cell 0 = %q", row.Cells[0])
	}
	if row.Cells[1] != `he said "hi"` {
		t.Fatalf("cell 1 = %q", row.Cells[1])
	}
}

func TestStoreTabDelimiter(t *testing.T) {
	s := openStore(t, "a\tb\n1\t2\n", '\t')
	row, err := s.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(row.Cells) != 2 || row.Cells[1] != "2" {
		t.Fatalf("row = %v", row.Cells)
	}
}

func TestStoreInvalidUTF8(t *testing.T) {
	s := openStore(t, "a\n\xff\xfe\n", ',')
	row, err := s.Row(1)
	if err != nil {
		t.Fatal(err)
	}
	if row.Cells[0] != "��" {
		t.Fatalf("cell = %q, want replacement runes", row.Cells[0])
	}
}

func TestStoreOutOfRange(t *testing.T) {
	s := openStore(t, "a\n1\n", ',')
	if _, err := s.Row(5); err != index.ErrOutOfRange {
		t.Fatalf("err = %v, want ErrOutOfRange", err)
	}
}

func TestLRUEviction(t *testing.T) {
	c := newLRU(2)
	c.put(1, Row{ID: 1})
	c.put(2, Row{ID: 2})
	c.get(1)
	c.put(3, Row{ID: 3})

	if _, ok := c.get(2); ok {
		t.Fatal("2 should have been evicted as least recently used")
	}
	if _, ok := c.get(1); !ok {
		t.Fatal("1 should survive, it was touched")
	}
	if _, ok := c.get(3); !ok {
		t.Fatal("3 should be present")
	}
}
