package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"csvlens/internal/filter"
	"csvlens/internal/index"
	"csvlens/internal/source"
	"csvlens/internal/store"
	"csvlens/internal/view"
)

func openModel(t *testing.T, content string) *view.Model {
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
	rows := store.New(src, idx, ',', 64)
	headers := []string{"name", "size"}
	flt := filter.NewEngine(rows, headers, true)
	return view.NewModel(rows, flt, headers, true)
}

func TestCSVLine(t *testing.T) {
	if got := CSVLine([]string{"a", "b,c", `d"e`}, ','); got != `a,"b,c","d""e"` {
		t.Fatalf("CSVLine = %q", got)
	}
	if got := CSVLine([]string{"a", "b"}, '\t'); got != "a\tb" {
		t.Fatalf("tab CSVLine = %q", got)
	}
}

func TestSelectionTextCell(t *testing.T) {
	vm := openModel(t, "name,size\napple,10\nbanana,20\n")
	vm.Mode = view.SelectCell
	vm.MoveRow(1)
	vm.MoveCol(1)
	text, status, err := SelectionText(vm, ',', 100)
	if err != nil {
		t.Fatal(err)
	}
	if text != "20" || status != "copied cell" {
		t.Fatalf("text = %q status = %q", text, status)
	}
}

func TestSelectionTextRow(t *testing.T) {
	vm := openModel(t, "name,size\napple,10\n")
	text, _, err := SelectionText(vm, ',', 100)
	if err != nil {
		t.Fatal(err)
	}
	if text != "apple,10" {
		t.Fatalf("text = %q", text)
	}
}

func TestSelectionTextColumnTruncated(t *testing.T) {
	vm := openModel(t, "name,size\na,1\nb,2\nc,3\nd,4\n")
	vm.Mode = view.SelectColumn
	text, status, err := SelectionText(vm, ',', 2)
	if err != nil {
		t.Fatal(err)
	}
	if text != "a\nb" {
		t.Fatalf("text = %q", text)
	}
	if !strings.Contains(status, "2 of 4") || !strings.Contains(status, "truncated") {
		t.Fatalf("status = %q", status)
	}
}

func TestEchoCellNamedColumn(t *testing.T) {
	vm := openModel(t, "name,size\napple,10\n")
	got, err := EchoCell(vm, "size")
	if err != nil {
		t.Fatal(err)
	}
	if got != "10" {
		t.Fatalf("EchoCell = %q", got)
	}
	if _, err := EchoCell(vm, "missing"); err == nil {
		t.Fatal("unknown column must error")
	}
}

func TestMarkedRows(t *testing.T) {
	vm := openModel(t, "name,size\na,1\nb,2\nc,3\n")
	vm.MoveRow(2)
	vm.ToggleMark()
	vm.FirstRow()
	vm.ToggleMark()
	got := MarkedRows(vm, ',')
	if len(got) != 2 || got[0] != "a,1" || got[1] != "c,3" {
		t.Fatalf("MarkedRows = %v", got)
	}
}
