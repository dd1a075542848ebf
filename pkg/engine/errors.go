package engine

import "fmt"

// Error is the error type for every failure reported by an analysis engine:
// open failures, read failures, and metadata-fetch failures.
//
// Callers receive it unchanged from the datamodel layer. None of the
// operations retry automatically, but a failed open or metadata fetch leaves
// the object in a state where a caller-initiated retry is safe.
//
// Usage pattern:
//
//	n, err := obj.Read(buf, off, length)
//	if err != nil {
//	    var engErr *engine.Error
//	    if errors.As(err, &engErr) {
//	        // engine-level failure, inspect engErr.Op / engErr.Err
//	    }
//	}
type Error struct {
	// Op is the engine operation that failed ("open", "read", "meta").
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}
