package config

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"os"
)

var delimiterCandidates = []byte{',', ';', '\t', '|'}

const sniffSampleRecords = 200

// SniffDelimiter guesses the delimiter by parsing a sample of the file with
// each candidate and scoring field-count consistency. Ties prefer the
// candidate yielding more fields.
func SniffDelimiter(path string) (byte, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer f.Close()

	sample := make([]byte, 64*1024)
	n, _ := io.ReadFull(bufio.NewReader(f), sample)
	sample = sample[:n]
	if len(sample) == 0 {
		return 0, false
	}

	best := byte(0)
	bestScore := -1.0
	bestWidth := 0
	for _, cand := range delimiterCandidates {
		score, width := scoreDelimiter(sample, cand)
		if score > bestScore || (score == bestScore && width > bestWidth) {
			best, bestScore, bestWidth = cand, score, width
		}
	}
	if bestScore <= 0 || bestWidth < 2 {
		return 0, false
	}
	return best, true
}

// scoreDelimiter returns (fraction of sampled records whose arity matches the
// first record, arity of the first record).
func scoreDelimiter(sample []byte, delim byte) (float64, int) {
	r := csv.NewReader(bytes.NewReader(sample))
	r.Comma = rune(delim)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	width := 0
	matching := 0
	total := 0
	for total < sniffSampleRecords {
		rec, err := r.Read()
		if err != nil {
			break
		}
		if width == 0 {
			width = len(rec)
		}
		if len(rec) == width {
			matching++
		}
		total++
	}
	if total == 0 || width < 2 {
		return 0, width
	}
	return float64(matching) / float64(total), width
}
