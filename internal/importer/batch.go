package importer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// RowState tracks one row through an import.
type RowState int

// Row states. A retry-queued row is submitted once more in the second pass.
const (
	StatePending RowState = iota
	StateSubmitting
	StateAccepted
	StateRetryQueued
	StateFailed
)

func (s RowState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSubmitting:
		return "submitting"
	case StateAccepted:
		return "accepted"
	case StateRetryQueued:
		return "retry-queued"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// RowError records a row that ended failed.
type RowError[T any] struct {
	Row     int    `json:"row"`
	Record  T      `json:"record"`
	Message string `json:"error"`
}

// Progress is a point-in-time view of a batch.
type Progress[T any] struct {
	BatchID      string        `json:"batchId"`
	FileName     string        `json:"fileName"`
	TotalRows    int           `json:"totalRows"`
	CurrentRow   int           `json:"currentRow"`
	SuccessCount int           `json:"successCount"`
	FailureCount int           `json:"failureCount"`
	RetryQueued  []int         `json:"retryQueued,omitempty"`
	Errors       []RowError[T] `json:"errors"`
	Done         bool          `json:"done"`
}

// Batch holds the progress of one import. It is safe to poll Snapshot from
// other goroutines while the import runs.
type Batch[T any] struct {
	mu        sync.Mutex
	progress  Progress[T]
	discarded bool
	done      chan struct{}
}

// NewBatch starts tracking an import of total rows from fileName.
func NewBatch[T any](fileName string, total int) *Batch[T] {
	return &Batch[T]{
		progress: Progress[T]{
			BatchID:   uuid.NewString(),
			FileName:  fileName,
			TotalRows: total,
			Errors:    []RowError[T]{},
		},
		done: make(chan struct{}),
	}
}

// Snapshot returns a copy of the current progress. It reports false once the
// batch has been discarded.
func (b *Batch[T]) Snapshot() (Progress[T], bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.discarded {
		return Progress[T]{}, false
	}
	return b.copyLocked(), true
}

// Done is closed when every row is accepted or failed.
func (b *Batch[T]) Done() <-chan struct{} {
	return b.done
}

func (b *Batch[T]) copyLocked() Progress[T] {
	p := b.progress
	p.Errors = append([]RowError[T]{}, b.progress.Errors...)
	p.RetryQueued = append([]int(nil), b.progress.RetryQueued...)
	return p
}

// update applies fn under the lock and returns the resulting snapshot.
func (b *Batch[T]) update(fn func(p *Progress[T])) Progress[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(&b.progress)
	return b.copyLocked()
}

// finish marks the batch done and discards it after hold.
func (b *Batch[T]) finish(hold time.Duration) Progress[T] {
	p := b.update(func(p *Progress[T]) {
		p.Done = true
		p.CurrentRow = p.TotalRows
		p.RetryQueued = nil
	})
	close(b.done)
	time.AfterFunc(hold, func() {
		b.mu.Lock()
		b.discarded = true
		b.mu.Unlock()
	})
	return p
}
