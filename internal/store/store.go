package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"unicode/utf8"

	"csvlens/internal/index"
	"csvlens/internal/source"
)

// Row is one decoded record. Cells are UTF-8, invalid sequences replaced.
type Row struct {
	ID    int
	Cells []string
}

// Store fetches rows by id: offset lookup through the index, a bounded seek
// into the source, and a single-record parse. Recently decoded rows are kept
// in an LRU sized to at least one viewport.
type Store struct {
	src   source.Source
	idx   *index.Index
	delim byte

	mu    sync.Mutex
	cache *lru
}

func New(src source.Source, idx *index.Index, delim byte, cacheSize int) *Store {
	if cacheSize < 64 {
		cacheSize = 64
	}
	return &Store{src: src, idx: idx, delim: delim, cache: newLRU(cacheSize)}
}

// Row returns row id, or index.ErrNotYet while the indexer has not reached it
// yet, or index.ErrOutOfRange past the end of a fully indexed input.
func (s *Store) Row(id int) (Row, error) {
	s.mu.Lock()
	if row, ok := s.cache.get(id); ok {
		s.mu.Unlock()
		return row, nil
	}
	s.mu.Unlock()

	start, end, err := s.idx.Bounds(id, s.src.Size())
	if err != nil {
		return Row{}, err
	}
	row, err := s.parseAt(id, start, end)
	if err != nil {
		return Row{}, err
	}

	s.mu.Lock()
	s.cache.put(id, row)
	s.mu.Unlock()
	return row, nil
}

func (s *Store) parseAt(id int, start, end int64) (Row, error) {
	r := csv.NewReader(io.NewSectionReader(s.src, start, end-start))
	r.Comma = rune(s.delim)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = false

	rec, err := r.Read()
	if err == io.EOF {
		return Row{ID: id, Cells: nil}, nil
	}
	if err != nil {
		return Row{}, fmt.Errorf("parse row %d: %w", id, err)
	}
	cells := make([]string, len(rec))
	for i, c := range rec {
		if !utf8.ValidString(c) {
			// Converting through []rune turns every invalid byte into its
			// own U+FFFD.
			c = string([]rune(c))
		}
		cells[i] = c
	}
	return Row{ID: id, Cells: cells}, nil
}

// Flush empties the cache. Called on epoch change.
func (s *Store) Flush() {
	s.mu.Lock()
	s.cache = newLRU(s.cache.cap)
	s.mu.Unlock()
}

// Resize sets the cache bound. Growing keeps current entries; shrinking
// evicts the least recently used ones.
func (s *Store) Resize(n int) {
	s.mu.Lock()
	s.cache.resize(n)
	s.mu.Unlock()
}

// Len proxies the indexed row count.
func (s *Store) Len() int { return s.idx.Len() }

// Complete proxies index completion.
func (s *Store) Complete() bool { return s.idx.Complete() }

// Delimiter returns the configured field delimiter.
func (s *Store) Delimiter() byte { return s.delim }
