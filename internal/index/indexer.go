package index

import (
	"bufio"
	"io"

	"csvlens/internal/source"
	"csvlens/internal/util/logx"
)

const publishBatch = 4096

// Indexer scans the source forward and appends record-start offsets to its
// Index. It honours CSV quoting, so delimiters and newlines inside quoted
// fields never split a record. One Indexer runs per source epoch; on epoch
// change the coordinator stops it and starts a fresh one over a fresh Index.
type Indexer struct {
	src  source.Source
	idx  *Index
	kick chan struct{}
	stop chan struct{}
	done chan struct{}
}

// Start launches the scan worker. Kick it whenever the source reports growth.
func Start(src source.Source, idx *Index) *Indexer {
	ix := &Indexer{
		src:  src,
		idx:  idx,
		kick: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go ix.run()
	return ix
}

// Kick wakes the worker to scan bytes that arrived since the last pass.
func (ix *Indexer) Kick() {
	select {
	case ix.kick <- struct{}{}:
	default:
	}
}

func (ix *Indexer) Stop() {
	close(ix.stop)
	<-ix.done
}

type scanState struct {
	pos         int64 // next unread byte
	recordStart int64
	inQuotes    bool
	// tailProvisional is set when the unterminated final record was indexed
	// anyway; it must be retracted and rescanned if more bytes arrive.
	tailProvisional bool
}

func (ix *Indexer) run() {
	defer close(ix.done)
	var st scanState
	for {
		ix.scan(&st)
		select {
		case <-ix.stop:
			return
		case <-ix.kick:
		}
	}
}

// scan consumes everything available in one pass, publishing offsets in
// batches, then marks the index caught up.
func (ix *Indexer) scan(st *scanState) {
	size := ix.src.Size()
	if st.tailProvisional {
		if size <= st.pos && !ix.src.Finalized() {
			return
		}
		st.recordStart = ix.idx.retractLast()
		st.pos = st.recordStart
		st.inQuotes = false
		st.tailProvisional = false
	}
	if st.pos >= size {
		ix.finishPass(st, size, nil)
		return
	}
	ix.idx.setComplete(false)

	r := bufio.NewReaderSize(io.NewSectionReader(ix.src, st.pos, size-st.pos), 64*1024)
	var batch []int64
	started := false

	for st.pos < size {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		if !started {
			started = true
			st.recordStart = st.pos
		}
		switch b {
		case '"':
			st.inQuotes = !st.inQuotes
		case '\n':
			if !st.inQuotes {
				batch = append(batch, st.recordStart)
				started = false
				st.recordStart = st.pos + 1
			}
		}
		st.pos++
		if len(batch) >= publishBatch {
			ix.idx.publish(batch, false)
			batch = batch[:0]
		}
		if st.pos%int64(64*1024) == 0 {
			select {
			case <-ix.stop:
				ix.idx.publish(batch, false)
				return
			default:
			}
		}
	}
	ix.finishPass(st, size, batch)
}

// finishPass publishes the remaining batch and decides what to do with an
// unterminated tail record. A finalized source gets it as a real row (with a
// warning if a quote never closed); a growing source gets it provisionally so
// the reader can see the newest data, and the next pass rescans it.
func (ix *Indexer) finishPass(st *scanState, size int64, batch []int64) {
	hasTail := st.pos > st.recordStart
	if hasTail {
		batch = append(batch, st.recordStart)
		if ix.src.Finalized() {
			if st.inQuotes {
				ix.idx.warn("unterminated quote at end of input")
				logx.Warnf("index: unterminated quote at end of input (offset %d)", st.recordStart)
			}
		} else {
			st.tailProvisional = true
		}
	}
	ix.idx.publish(batch, true)
}
