package export

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"os"

	"github.com/atotto/clipboard"

	"csvlens/internal/util/logx"
	"csvlens/internal/view"
)

// ErrClipboardUnavailable is surfaced on the status line when neither a
// system clipboard nor an OSC52-capable terminal is reachable.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// CSVLine encodes one record with the given delimiter, without a trailing
// newline.
func CSVLine(cells []string, delim byte) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = rune(delim)
	w.Write(cells)
	w.Flush()
	out := buf.String()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out
}

// Copy puts text on the clipboard: the system clipboard first, then OSC52
// through the controlling terminal for remote sessions.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	} else {
		logx.Debugf("export: system clipboard failed: %v", err)
	}
	payload := fmt.Sprintf("\x1b]52;c;%s\x07", base64.StdEncoding.EncodeToString([]byte(text)))
	if f, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0); err == nil {
		defer f.Close()
		if _, err := f.WriteString(payload); err == nil {
			return nil
		}
	}
	return ErrClipboardUnavailable
}

// SelectionText builds the copy payload for the current selection mode.
// Column copies follow the display order (filter and sort applied) and stop
// at limit values; the status string reports what happened.
func SelectionText(vm *view.Model, delim byte, limit int) (string, string, error) {
	switch vm.Mode {
	case view.SelectCell:
		cell, ok := cursorCell(vm)
		if !ok {
			return "", "", errors.New("no cell selected")
		}
		return cell, "copied cell", nil
	case view.SelectColumn:
		return columnText(vm, limit)
	default:
		row, ok := vm.RowAt(cursorRow(vm))
		if !ok {
			return "", "", errors.New("no row selected")
		}
		return CSVLine(row.Cells, delim), "copied row", nil
	}
}

func cursorRow(vm *view.Model) int {
	r, _ := vm.Cursor()
	return r
}

func cursorCell(vm *view.Model) (string, bool) {
	row, ok := vm.RowAt(cursorRow(vm))
	if !ok {
		return "", false
	}
	col := vm.CursorColumn()
	if col >= len(row.Cells) {
		return "", true
	}
	return row.Cells[col], true
}

func columnText(vm *view.Model, limit int) (string, string, error) {
	col := vm.CursorColumn()
	total := vm.Len()
	n := total
	if n > limit {
		n = limit
	}
	var buf bytes.Buffer
	copied := 0
	for i := 0; i < n; i++ {
		row, ok := vm.RowAt(i)
		if !ok {
			break
		}
		if copied > 0 {
			buf.WriteByte('\n')
		}
		if col < len(row.Cells) {
			buf.WriteString(row.Cells[col])
		}
		copied++
	}
	if copied == 0 {
		return "", "", errors.New("nothing to copy")
	}
	status := fmt.Sprintf("copied %d values", copied)
	if copied < total {
		status = fmt.Sprintf("copied %d of %d values (truncated)", copied, total)
	}
	return buf.String(), status, nil
}

// EchoCell resolves what Enter in cell mode prints on exit: the selected
// cell, or the named column's value of the selected row when --echo-column
// is set.
func EchoCell(vm *view.Model, echoColumn string) (string, error) {
	row, ok := vm.RowAt(cursorRow(vm))
	if !ok {
		return "", errors.New("no row selected")
	}
	if echoColumn != "" {
		for i, name := range vm.Headers() {
			if name == echoColumn {
				if i < len(row.Cells) {
					return row.Cells[i], nil
				}
				return "", nil
			}
		}
		return "", fmt.Errorf("column %q not found", echoColumn)
	}
	col := vm.CursorColumn()
	if col >= len(row.Cells) {
		return "", nil
	}
	return row.Cells[col], nil
}

// MarkedRows renders every marked row as one CSV line, in ascending row id
// order.
func MarkedRows(vm *view.Model, delim byte) []string {
	ids := vm.Marks()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		row, err := vm.Rows.Row(id)
		if err != nil {
			continue
		}
		out = append(out, CSVLine(row.Cells, delim))
	}
	return out
}
