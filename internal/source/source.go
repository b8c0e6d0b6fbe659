package source

import (
	"io"
	"os"
	"sync/atomic"

	"csvlens/internal/util/logx"
)

// Event describes a change observed on the underlying bytes.
type Event int

const (
	// Grew means bytes were appended; previously read offsets stay valid.
	Grew Event = iota
	// Rewritten means the content was replaced; everything derived from the
	// old bytes is stale.
	Rewritten
)

func (e Event) String() string {
	if e == Rewritten {
		return "rewritten"
	}
	return "grew"
}

// Source is a random-access byte stream plus a change notifier. Size may grow
// over time; Finalized reports whether more bytes can still arrive.
type Source interface {
	io.ReaderAt
	Size() int64
	Path() string
	Finalized() bool
	Changes() <-chan Event
	Close() error
}

// send delivers ev without blocking. Grew events are droppable since the
// consumer re-checks Size; a Rewritten event displaces a queued Grew.
func send(ch chan Event, ev Event) {
	select {
	case ch <- ev:
		return
	default:
	}
	if ev != Rewritten {
		return
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- ev:
	default:
	}
}

// FileSource reads a regular file that is not expected to change.
type FileSource struct {
	f    *os.File
	path string
	size int64
	ch   chan Event
}

func OpenFile(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &FileSource{f: f, path: path, size: st.Size(), ch: make(chan Event)}, nil
}

func (s *FileSource) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }
func (s *FileSource) Size() int64                             { return s.size }
func (s *FileSource) Path() string                            { return s.path }
func (s *FileSource) Finalized() bool                         { return true }
func (s *FileSource) Changes() <-chan Event                   { return s.ch }
func (s *FileSource) Close() error                            { return s.f.Close() }

// StdinSource spills stdin to a temp file so the rest of the program can seek
// into it. Size grows while the spill goroutine copies; Finalized flips once
// stdin hits EOF.
type StdinSource struct {
	r    *os.File
	path string
	size atomic.Int64
	done atomic.Bool
	ch   chan Event

	copyErr atomic.Value
}

const spillChunk = 64 * 1024

// SpillStdin starts copying in into a temp file. When streaming is false the
// whole input is consumed before returning, so the caller sees a finalized
// source immediately.
func SpillStdin(in io.Reader, streaming bool) (*StdinSource, error) {
	tmp, err := os.CreateTemp("", "csvlens-stdin-*")
	if err != nil {
		return nil, err
	}
	r, err := os.Open(tmp.Name())
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}
	s := &StdinSource{r: r, path: tmp.Name(), ch: make(chan Event, 4)}

	if !streaming {
		s.spill(in, tmp)
		if err, _ := s.copyErr.Load().(error); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	}

	go s.spill(in, tmp)
	return s, nil
}

func (s *StdinSource) spill(in io.Reader, out *os.File) {
	buf := make([]byte, spillChunk)
	for {
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				s.copyErr.Store(werr)
				break
			}
			s.size.Add(int64(n))
			send(s.ch, Grew)
		}
		if rerr != nil {
			if rerr != io.EOF {
				s.copyErr.Store(rerr)
				logx.Warnf("source: stdin spill stopped: %v", rerr)
			}
			break
		}
	}
	out.Close()
	s.done.Store(true)
	send(s.ch, Grew)
	logx.Debugf("source: stdin spill finished, %d bytes", s.size.Load())
}

func (s *StdinSource) ReadAt(p []byte, off int64) (int, error) {
	max := s.size.Load()
	if off >= max {
		return 0, io.EOF
	}
	if int64(len(p)) > max-off {
		p = p[:max-off]
	}
	return s.r.ReadAt(p, off)
}

func (s *StdinSource) Size() int64           { return s.size.Load() }
func (s *StdinSource) Path() string          { return "<stdin>" }
func (s *StdinSource) Finalized() bool       { return s.done.Load() }
func (s *StdinSource) Changes() <-chan Event { return s.ch }

// Err reports a spill failure, if any.
func (s *StdinSource) Err() error {
	err, _ := s.copyErr.Load().(error)
	return err
}

// Close releases the read handle and unlinks the spill file. A still-running
// spill goroutine keeps writing to the unlinked file until stdin ends, which
// is harmless.
func (s *StdinSource) Close() error {
	err := s.r.Close()
	os.Remove(s.path)
	return err
}
