package store

import "github.com/charmbracelet/log"

// DefaultWriterLimit keeps auto-flushes comfortably below HardBatchCap: one
// logical "record a match" enqueues several document writes and must never
// straddle the hard cap mid-unit.
const DefaultWriterLimit = 450

// Writer accumulates write operations and commits automatically when the
// queued count reaches its limit. It does not retry or roll back; a commit
// failure propagates to the caller, who owns retry/abort policy.
type Writer struct {
	store   Store
	limit   int
	batch   Batch
	commits int
}

// NewWriter creates a Writer flushing at limit operations. Limits outside
// (0, HardBatchCap) fall back to DefaultWriterLimit.
func NewWriter(s Store, limit int) *Writer {
	if limit <= 0 || limit >= HardBatchCap {
		limit = DefaultWriterLimit
	}
	return &Writer{store: s, limit: limit, batch: s.Batch()}
}

// Set enqueues a full document write.
func (w *Writer) Set(collection, id string, doc any) error {
	w.batch.Set(collection, id, doc)
	return w.maybeFlush()
}

// Update enqueues a partial document patch.
func (w *Writer) Update(collection, id string, patch Patch) error {
	w.batch.Update(collection, id, patch)
	return w.maybeFlush()
}

// Delete enqueues a document deletion.
func (w *Writer) Delete(collection, id string) error {
	w.batch.Delete(collection, id)
	return w.maybeFlush()
}

// Flush commits any remaining queued operations. Callers must invoke it at
// the end of every unit of work.
func (w *Writer) Flush() error {
	if w.batch.Len() == 0 {
		return nil
	}
	n := w.batch.Len()
	if err := w.batch.Commit(); err != nil {
		return err
	}
	w.commits++
	log.Debug("Committed batch", "operations", n, "totalCommits", w.commits)
	w.batch = w.store.Batch()
	return nil
}

// Commits returns how many batches have been committed so far.
func (w *Writer) Commits() int { return w.commits }

// Pending returns the number of queued, uncommitted operations.
func (w *Writer) Pending() int { return w.batch.Len() }

func (w *Writer) maybeFlush() error {
	if w.batch.Len() >= w.limit {
		return w.Flush()
	}
	return nil
}
