package datamodel

import (
	"github.com/google/uuid"

	"github.com/casetrace/casetrace/pkg/engine"
)

// Case is the slice of the case database that FsObject and FileSystem
// consume. The concrete implementation lives in pkg/casedb; this interface
// keeps the datamodel free of any storage dependency.
//
// Resolution methods may fail with a *casedb.QueryError. FsObject propagates
// those failures unchanged except in the two deliberately degraded paths
// (IsRoot and the unique-path part of DiagnosticString).
type Case interface {
	// Engine returns the analysis engine serving this case.
	Engine() engine.Engine

	// EngineContext returns the engine-level case context passed to every
	// open call. May be nil for engines that don't need one.
	EngineContext() engine.Context

	// FileSystem resolves a file system record by its object id.
	FileSystem(fsObjID int64) (*FileSystem, error)

	// DataSource resolves a data source record by its object id.
	DataSource(dsObjID int64) (*DataSource, error)

	// ResolveParent returns the parent directory of obj, or (nil, nil)
	// when the object has no recorded parent.
	ResolveParent(obj *FsObject) (*FsObject, error)

	// ResolveUniquePath computes a case-wide unique path for obj,
	// including its data source and file system components.
	ResolveUniquePath(obj *FsObject) (string, error)
}

// DataSource is a disk image or device added to a case. It is a plain record:
// all resolution happens in the case database.
type DataSource struct {
	// ObjID is the data source's object id in the case database.
	ObjID int64

	// ID is the case-assigned unique identifier for the source.
	ID uuid.UUID

	// Path is the location of the image or device the source was
	// acquired from.
	Path string

	// DeviceID is the acquisition device serial/identifier, if recorded.
	DeviceID string

	// TimeZone is the source's original time zone name (IANA format).
	TimeZone string

	// Size is the total size of the source in bytes.
	Size int64
}
