package transform

import (
	"errors"
	"fmt"
)

// Batch-level failures. Row-level problems never abort the batch; these two
// are the only fatal outcomes of a transform run.
var (
	ErrEmptyBatch  = errors.New("transform: input batch is empty")
	ErrAllRejected = errors.New("transform: every input row was rejected")
)

// ValidationError marks a single row as unusable. The row is rejected and the
// batch continues.
type ValidationError struct {
	Line   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Line, e.Field, e.Reason)
}

// Warning kinds recorded on the transform report.
const (
	WarnPriceParse = "price_parse"
)

// Warning is a recoverable row-level problem: a default was substituted and
// the row was kept.
type Warning struct {
	Line   int
	Kind   string
	Field  string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("row %d: %s: field %q: %s", w.Line, w.Kind, w.Field, w.Detail)
}

// RejectedRow captures a rejected input row for the report.
type RejectedRow struct {
	Line   int
	Raw    RawRecord
	Reason string
}
