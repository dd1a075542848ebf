// Package casedb defines the error surface of case database implementations.
// The persistent implementation lives in pkg/casedb/badger; pkg/datamodel
// consumes it through the datamodel.Case interface.
package casedb

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested record does not exist in the
	// case database.
	ErrNotFound = errors.New("record not found")

	// ErrCaseClosed indicates the case database was already closed.
	ErrCaseClosed = errors.New("case is closed")
)

// QueryError is the error type for every failure from case and file-system
// resolution queries (parent lookup, unique path, file system and data
// source records).
//
// FsObject propagates these unchanged to the caller, except in its two
// deliberately degraded paths (IsRoot and the unique-path part of
// DiagnosticString), where the failure is logged and a fallback substituted.
type QueryError struct {
	// Op is the query that failed ("object", "parent", "unique-path",
	// "filesystem", "datasource").
	Op string

	// ObjID is the object the query was about, 0 when not applicable.
	ObjID int64

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.ObjID != 0 {
		return fmt.Sprintf("case query %s (object %d): %v", e.Op, e.ObjID, e.Err)
	}
	return fmt.Sprintf("case query %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *QueryError) Unwrap() error {
	return e.Err
}
