package importer

import (
	"context"
	"log/slog"
	"time"
)

// Default delays between passes and before a finished batch is discarded.
const (
	DefaultPassDelay = time.Second
	DefaultHoldDelay = 5 * time.Second
)

// Row is one spreadsheet line ready for submission. Rows whose normalisation
// failed carry Err and are never submitted.
type Row[T any] struct {
	Line   int
	Record T
	Err    error
}

// Orchestrator submits rows serially in file order. Rows that exhaust their
// attempts are queued and submitted once more after PassDelay; failures in
// that second pass are final.
type Orchestrator[T any] struct {
	Submit     Submitter[T]
	Retry      RetryPolicy
	PassDelay  time.Duration
	HoldDelay  time.Duration
	OnProgress func(Progress[T])
	Logger     *slog.Logger
}

// New returns an orchestrator with the default retry policy and delays.
func New[T any](submit Submitter[T]) *Orchestrator[T] {
	return &Orchestrator[T]{
		Submit:    submit,
		Retry:     DefaultRetryPolicy,
		PassDelay: DefaultPassDelay,
		HoldDelay: DefaultHoldDelay,
	}
}

func (o *Orchestrator[T]) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o *Orchestrator[T]) publish(p Progress[T]) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

// Run imports rows into b and returns the final progress. Every row ends
// accepted or failed. When ctx is cancelled, rows not yet submitted are
// recorded as failed with the context's error.
func (o *Orchestrator[T]) Run(ctx context.Context, b *Batch[T], rows []Row[T]) Progress[T] {
	start, _ := b.Snapshot()
	log := o.logger().With("batch", start.BatchID, "file", start.FileName)
	states := make([]RowState, len(rows))

	fail := func(i int, msg string) {
		states[i] = StateFailed
		log.Warn("import row failed", "row", rows[i].Line, "error", msg)
		b.update(func(p *Progress[T]) {
			p.FailureCount++
			p.Errors = append(p.Errors, RowError[T]{Row: rows[i].Line, Record: rows[i].Record, Message: msg})
		})
	}
	failRemaining := func(err error) {
		for i, s := range states {
			if s == StatePending || s == StateRetryQueued {
				fail(i, err.Error())
			}
		}
	}

	// First pass.
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			failRemaining(err)
			break
		}

		if row.Err != nil {
			fail(i, row.Err.Error())
		} else {
			states[i] = StateSubmitting
			if _, err := SubmitWithRetry(ctx, o.Retry, row.Record, o.Submit); err != nil {
				if ctx.Err() != nil {
					fail(i, ctx.Err().Error())
				} else {
					states[i] = StateRetryQueued
					log.Debug("import row queued for retry", "row", row.Line, "error", err)
					b.update(func(p *Progress[T]) { p.RetryQueued = append(p.RetryQueued, row.Line) })
				}
			} else {
				states[i] = StateAccepted
				b.update(func(p *Progress[T]) { p.SuccessCount++ })
			}
		}

		o.publish(b.update(func(p *Progress[T]) { p.CurrentRow = i + 1 }))
	}

	// Second pass.
	if hasState(states, StateRetryQueued) && ctx.Err() == nil {
		select {
		case <-ctx.Done():
		case <-time.After(o.PassDelay):
		}
	}
	for i, row := range rows {
		if states[i] != StateRetryQueued {
			continue
		}
		if err := ctx.Err(); err != nil {
			failRemaining(err)
			break
		}

		states[i] = StateSubmitting
		_, err := SubmitWithRetry(ctx, o.Retry, row.Record, o.Submit)
		b.update(func(p *Progress[T]) { p.RetryQueued = removeLine(p.RetryQueued, row.Line) })
		if err != nil {
			fail(i, err.Error())
		} else {
			states[i] = StateAccepted
			b.update(func(p *Progress[T]) { p.SuccessCount++ })
		}
		o.publish(b.update(func(p *Progress[T]) {}))
	}

	final := b.finish(o.HoldDelay)
	o.publish(final)
	log.Info("import finished",
		"rows", final.TotalRows,
		"success", final.SuccessCount,
		"failure", final.FailureCount,
	)
	return final
}

func hasState(states []RowState, want RowState) bool {
	for _, s := range states {
		if s == want {
			return true
		}
	}
	return false
}

func removeLine(lines []int, line int) []int {
	out := lines[:0]
	for _, l := range lines {
		if l != line {
			out = append(out, l)
		}
	}
	return out
}
