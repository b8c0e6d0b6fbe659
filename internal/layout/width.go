package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const tabStop = 8

// Sanitize renders a raw cell printable: tabs expand to the next multiple of
// eight, other control characters show in caret form (^A, ^?).
func Sanitize(s string) string {
	if !strings.ContainsFunc(s, func(r rune) bool { return r < 0x20 || r == 0x7f }) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	col := 0
	for _, r := range s {
		switch {
		case r == '\t':
			n := tabStop - col%tabStop
			b.WriteString(strings.Repeat(" ", n))
			col += n
		case r == 0x7f:
			b.WriteString("^?")
			col += 2
		case r < 0x20:
			b.WriteByte('^')
			b.WriteByte(byte('@' + r))
			col += 2
		default:
			b.WriteRune(r)
			col += runewidth.RuneWidth(r)
		}
	}
	return b.String()
}

// Width is the display width of a sanitized string, counting grapheme
// clusters with East Asian wide characters as two columns.
func Width(s string) int {
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		w += runewidth.StringWidth(g.Str())
	}
	return w
}

// Truncate fits s into width columns, ending with an ellipsis when anything
// was cut. Cuts happen at grapheme boundaries.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if Width(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := runewidth.StringWidth(g.Str())
		if w+cw > width-1 {
			break
		}
		b.WriteString(g.Str())
		w += cw
	}
	b.WriteString("…")
	return b.String()
}

// WrapChars hard-breaks s into lines no wider than width, at grapheme
// boundaries.
func WrapChars(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	var b strings.Builder
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		cw := runewidth.StringWidth(g.Str())
		if w+cw > width && w > 0 {
			lines = append(lines, b.String())
			b.Reset()
			w = 0
		}
		b.WriteString(g.Str())
		w += cw
	}
	lines = append(lines, b.String())
	return lines
}

// WrapWords soft-breaks on whitespace, falling back to character breaking
// for tokens wider than the line.
func WrapWords(s string, width int) []string {
	if width < 1 {
		width = 1
	}
	var lines []string
	cur := ""
	curW := 0
	flush := func() {
		lines = append(lines, cur)
		cur = ""
		curW = 0
	}
	for _, word := range strings.Fields(s) {
		ww := Width(word)
		switch {
		case curW == 0 && ww <= width:
			cur, curW = word, ww
		case curW+1+ww <= width:
			cur += " " + word
			curW += 1 + ww
		case ww > width:
			if curW > 0 {
				flush()
			}
			for _, part := range WrapChars(word, width) {
				lines = append(lines, part)
			}
			last := lines[len(lines)-1]
			lines = lines[:len(lines)-1]
			cur, curW = last, Width(last)
		default:
			flush()
			cur, curW = word, ww
		}
	}
	if curW > 0 || len(lines) == 0 {
		lines = append(lines, cur)
	}
	return lines
}

// SpanBounds maps a byte span within a raw cell to display column bounds in
// its sanitized form.
func SpanBounds(raw string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(raw) {
		end = len(raw)
	}
	if start > end {
		start = end
	}
	pre := Width(Sanitize(raw[:start]))
	return pre, pre + Width(Sanitize(raw[start:end]))
}
