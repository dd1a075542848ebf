// Package engine defines the narrow interface through which casetrace talks
// to an analysis engine: the component that parses on-disk file system
// structures and extracts bytes and metadata for recorded objects.
//
// The engine owns all parsing. Callers identify what to open with the owning
// file system's engine-level handle, the object's meta address, and an
// attribute type/id pair selecting the data stream. The engine hands back an
// opaque file handle that stays valid until CloseFile is called.
package engine

// FileHandle is an opaque engine-level handle for an open file object.
//
// The zero value is the "not open" sentinel. Engines never issue it from a
// successful OpenFile call.
type FileHandle uint64

// FSHandle is an opaque engine-level handle for an open file system.
//
// The zero value means "no file system".
type FSHandle uint64

// AttrType selects which class of data stream is being accessed on file
// systems that support multiple streams per object. Values follow the
// attribute-type numbering used by forensic file system tooling.
type AttrType uint32

const (
	// AttrTypeNotFound marks an object with no resolvable attribute.
	AttrTypeNotFound AttrType = 0x00

	// AttrTypeDefault selects the default data stream for the file system.
	AttrTypeDefault AttrType = 0x01

	// AttrTypeNTFSData selects an NTFS $DATA attribute.
	AttrTypeNTFSData AttrType = 0x80
)

// Context is the engine-level case context supplied by the case database.
// It is opaque to everything except the engine implementation that produced
// it; engines that don't need one accept nil.
type Context any

// Engine is the contract every analysis engine backend implements.
//
// All methods block until the engine returns or fails; there is no
// cancellation or timeout at this boundary. Implementations must be safe for
// concurrent use from multiple goroutines, but callers serialize reads on a
// single FileHandle themselves (the engine keeps per-handle read state).
type Engine interface {
	// OpenFile opens the data stream identified by (metaAddr, attrType,
	// attrID) inside the file system fs and returns a handle for it.
	// A failed open returns a *Error and no handle.
	OpenFile(fs FSHandle, metaAddr uint64, attrType AttrType, attrID uint16, caseCtx Context) (FileHandle, error)

	// ReadFile copies up to length bytes starting at offset into buf and
	// returns the number of bytes placed in buf. A short read is not an
	// error; it usually means end of stream.
	ReadFile(h FileHandle, buf []byte, offset, length int64) (int, error)

	// FileMetaDataText returns a human-readable description of the
	// object's on-disk metadata record, one element per line. The content
	// differs per file system type.
	FileMetaDataText(h FileHandle) ([]string, error)

	// CloseFile releases the handle. Best-effort: close failures are not
	// reported.
	CloseFile(h FileHandle)
}
