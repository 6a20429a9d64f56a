// Package store reads and writes inventory records in SQLite.
package store

import "errors"

// ErrInvalid wraps validation failures of records passed to the store.
var ErrInvalid = errors.New("invalid record")
