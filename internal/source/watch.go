package source

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"csvlens/internal/util/logx"
)

const pollInterval = 250 * time.Millisecond

// ReloadSource wraps a file and watches it for changes. Appends surface as
// Grew events; truncation, in-place rewrite or replacement surface as
// Rewritten. The watcher combines fsnotify with a metadata poll so it still
// works on filesystems without events.
type ReloadSource struct {
	path string
	ch   chan Event
	stop chan struct{}

	mu    sync.Mutex
	f     *os.File
	size  int64
	mtime time.Time
}

func OpenReload(path string) (*ReloadSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	s := &ReloadSource{
		path:  path,
		ch:    make(chan Event, 4),
		stop:  make(chan struct{}),
		f:     f,
		size:  st.Size(),
		mtime: st.ModTime(),
	}
	go s.watch()
	return s, nil
}

func (s *ReloadSource) watch() {
	// Watch the parent directory: editors and atomic writers replace the
	// file, and a watch on the old inode would go quiet.
	w, err := fsnotify.NewWatcher()
	if err == nil {
		if werr := w.Add(filepath.Dir(s.path)); werr != nil {
			logx.Debugf("source: fsnotify unavailable for %s: %v", s.path, werr)
			w.Close()
			w = nil
		}
	} else {
		logx.Debugf("source: fsnotify init failed: %v", err)
		w = nil
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	if w != nil {
		defer w.Close()
	}

	var events <-chan fsnotify.Event
	var errs <-chan error
	if w != nil {
		events = w.Events
		errs = w.Errors
	}

	for {
		select {
		case <-s.stop:
			return
		case ev := <-events:
			if filepath.Clean(ev.Name) == filepath.Clean(s.path) {
				s.check()
			}
		case err := <-errs:
			if err != nil {
				logx.Debugf("source: fsnotify error: %v", err)
			}
		case <-ticker.C:
			s.check()
		}
	}
}

// check compares on-disk metadata to the last observation and emits at most
// one event. A shrink or a same-size mtime bump means the content was
// replaced, so the handle is reopened to pick up a new inode.
func (s *ReloadSource) check() {
	st, err := os.Stat(s.path)
	if err != nil {
		// Transient during atomic replace; the next poll sees the new file.
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case st.Size() > s.size:
		s.size = st.Size()
		s.mtime = st.ModTime()
		send(s.ch, Grew)
	case st.Size() < s.size, !st.ModTime().Equal(s.mtime):
		s.size = st.Size()
		s.mtime = st.ModTime()
		if f, err := os.Open(s.path); err == nil {
			s.f.Close()
			s.f = f
		}
		send(s.ch, Rewritten)
	}
}

func (s *ReloadSource) ReadAt(p []byte, off int64) (int, error) {
	s.mu.Lock()
	f := s.f
	s.mu.Unlock()
	return f.ReadAt(p, off)
}

func (s *ReloadSource) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *ReloadSource) Path() string { return s.path }

// Finalized is always false: a watched file may grow at any time.
func (s *ReloadSource) Finalized() bool { return false }

func (s *ReloadSource) Changes() <-chan Event { return s.ch }

func (s *ReloadSource) Close() error {
	close(s.stop)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
