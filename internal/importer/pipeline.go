package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/mautomotiv/inventaire/internal/sheet"
)

// Normalizer turns one spreadsheet row into a record for branch.
type Normalizer[T any] func(row sheet.Row, m sheet.Mapping, branch string) (T, error)

// Prepare maps the columns of rows against schema and normalises every data
// row. Blank rows are dropped; line numbers refer to the file.
func Prepare[T any](rows []sheet.Row, schema sheet.Schema, branch string, normalize Normalizer[T]) []Row[T] {
	m := sheet.InferColumns(sheet.FirstRow(rows), schema)
	records := sheet.DataRows(rows, m)

	out := make([]Row[T], len(records))
	for i, rec := range records {
		record, err := normalize(rec.Cells, m, branch)
		out[i] = Row[T]{Line: rec.Line, Record: record, Err: err}
	}
	return out
}

// Job describes one file to import.
type Job[T any] struct {
	FileName  string
	Schema    sheet.Schema
	Branch    string
	Normalize Normalizer[T]
}

// Start reads and normalises the file and returns the batch that will track
// it, along with its rows. Structural problems with the file are returned
// before any row is submitted.
func Start[T any](r io.Reader, job Job[T]) (*Batch[T], []Row[T], error) {
	grid, err := sheet.Read(r, job.FileName)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", job.FileName, err)
	}
	rows := Prepare(grid, job.Schema, job.Branch, job.Normalize)
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("reading %s: %w", job.FileName, sheet.ErrEmpty)
	}
	return NewBatch[T](job.FileName, len(rows)), rows, nil
}

// Import reads r and submits its rows with o, returning the final progress.
func Import[T any](ctx context.Context, o *Orchestrator[T], r io.Reader, job Job[T]) (Progress[T], error) {
	b, rows, err := Start(r, job)
	if err != nil {
		return Progress[T]{}, err
	}
	return o.Run(ctx, b, rows), nil
}
