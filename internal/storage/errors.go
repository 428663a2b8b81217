package storage

import (
	"errors"
	"fmt"
)

// ErrStoreNotFound indicates the store does not exist or has never been
// loaded. Read-only consumers should surface "run the pipeline first"
// rather than crashing.
var ErrStoreNotFound = errors.New("store not found: run the pipeline first")

// SchemaError means the store could not be created or opened. Fatal to the
// run.
type SchemaError struct {
	Op  string
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema error during %s: %v", e.Op, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// LoadError means an insertion violated integrity constraints or otherwise
// failed. Fatal to the run; the run is still recorded with status "error".
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load error during %s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
