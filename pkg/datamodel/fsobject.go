package datamodel

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/casetrace/casetrace/internal/logger"
	"github.com/casetrace/casetrace/pkg/engine"
)

// FsObjectConfig assembles an FsObject. Required fields are the identifiers
// and the size; everything else defaults sensibly (empty hashes, unknown
// known-status, no MIME type, no owner).
//
// One config struct replaces a family of positional constructors: a caller
// building an object from a case record sets exactly the fields the record
// carries.
type FsObjectConfig struct {
	// ObjID is the object id in the case database.
	ObjID int64

	// DataSourceObjID is the object id of the object's data source.
	DataSourceObjID int64

	// FSObjID is the object id of the owning file system, 0 if unknown.
	FSObjID int64

	// Name is the file or directory name.
	Name string

	// MetaAddr locates the object's on-disk metadata record.
	// MetaAddrNone means the object has no such record.
	MetaAddr uint64

	// MetaSeq is the metadata sequence number, for file systems that
	// reuse meta addresses.
	MetaSeq uint32

	// AttrType and AttrID select which data stream of the object is read.
	AttrType engine.AttrType
	AttrID   uint16

	// DirType and MetaType are the object types reported by the name and
	// metadata structures respectively.
	DirType  NameType
	MetaType MetaType

	// DirFlags and MetaFlags carry the allocation status from the name
	// and metadata structures.
	DirFlags  NameFlags
	MetaFlags MetaFlags

	// Size is the declared size of the object in bytes.
	Size int64

	// Times holds the recorded timestamps.
	Times TimeStamps

	// Mode, UID and GID carry the POSIX-style permissions and ownership.
	Mode uint32
	UID  int32
	GID  int32

	// MD5, SHA1 and SHA256 are hex-encoded content hashes, empty if not
	// yet computed.
	MD5    string
	SHA1   string
	SHA256 string

	// Known is the hash database lookup result.
	Known KnownStatus

	// ParentPath is the recorded path of the object's parent directory.
	ParentPath string

	// MIMEType is the detected MIME type, empty if not yet determined.
	MIMEType string

	// Extension is the file name extension without the dot, if any.
	Extension string

	// OwnerUID is the file-system-level owner identity, if recorded.
	OwnerUID string

	// Collected records whether content bytes were collected into the
	// case evidence store.
	Collected CollectedStatus
}

// FsObject is a file or directory recorded in a case. Its attribute fields
// are immutable after construction; the only mutable state is the lazily
// opened engine handle and the metadata text cache.
//
// Handle lifecycle: the handle starts unopened (0), is acquired from the
// engine on the first read or metadata request, and is released by Close.
// A closed object is indistinguishable from a never-opened one and reopens
// on the next request. Exactly one engine open happens even when several
// goroutines race on the first request.
//
// Close and in-flight operations: Close acquires the same locks that guard
// reads and metadata population, so it waits for the operation in flight to
// finish and never releases a handle the engine is actively using.
type FsObject struct {
	caseDB Case

	objID     int64
	dsObjID   int64
	fsObjID   int64
	name      string
	metaAddr  uint64
	metaSeq   uint32
	attrType  engine.AttrType
	attrID    uint16
	dirType   NameType
	metaType  MetaType
	dirFlags  NameFlags
	metaFlags MetaFlags
	size      int64
	times     TimeStamps
	mode      uint32
	uid       int32
	gid       int32
	md5       string
	sha1      string
	sha256    string
	known     KnownStatus
	parent    string
	mimeType  string
	extension string
	ownerUID  string
	collected CollectedStatus

	// handle is the engine file handle, 0 while unopened. Reads of the
	// raw value are lock-free; transitions happen under openMu.
	handle atomic.Uint64

	// openMu guards handle transitions and the metadata text cache.
	openMu sync.Mutex

	// ioMu serializes byte reads (and Close) on this object. The engine
	// keeps per-handle read state, so two reads on the same object must
	// not reach it concurrently.
	ioMu sync.Mutex

	// metaDataText is the cached metadata description, nil until the
	// first successful MetaDataText call. Guarded by openMu.
	metaDataText []string
}

// NewFsObject builds an FsObject owned by the given case. The case provides
// the engine, the engine context, and parent/path resolution.
func NewFsObject(c Case, cfg FsObjectConfig) *FsObject {
	attrType := cfg.AttrType
	if attrType == engine.AttrTypeNotFound {
		attrType = engine.AttrTypeDefault
	}
	return &FsObject{
		caseDB:    c,
		objID:     cfg.ObjID,
		dsObjID:   cfg.DataSourceObjID,
		fsObjID:   cfg.FSObjID,
		name:      cfg.Name,
		metaAddr:  cfg.MetaAddr,
		metaSeq:   cfg.MetaSeq,
		attrType:  attrType,
		attrID:    cfg.AttrID,
		dirType:   cfg.DirType,
		metaType:  cfg.MetaType,
		dirFlags:  cfg.DirFlags,
		metaFlags: cfg.MetaFlags,
		size:      cfg.Size,
		times:     cfg.Times,
		mode:      cfg.Mode,
		uid:       cfg.UID,
		gid:       cfg.GID,
		md5:       cfg.MD5,
		sha1:      cfg.SHA1,
		sha256:    cfg.SHA256,
		known:     cfg.Known,
		parent:    cfg.ParentPath,
		mimeType:  cfg.MIMEType,
		extension: cfg.Extension,
		ownerUID:  cfg.OwnerUID,
		collected: cfg.Collected,
	}
}

// ============================================================================
// Handle lifecycle
// ============================================================================

// ensureOpen opens the engine handle on first use.
//
// Double-checked acquisition: the lock-free load skips locking entirely once
// the object is open; the re-check under openMu guarantees a single engine
// open when first callers race.
func (f *FsObject) ensureOpen() (engine.FileHandle, error) {
	if h := engine.FileHandle(f.handle.Load()); h != 0 {
		return h, nil
	}
	f.openMu.Lock()
	defer f.openMu.Unlock()
	return f.ensureOpenLocked()
}

// ensureOpenLocked is ensureOpen for callers already holding openMu.
// On failure the handle stays unopened, so a later call retries the open.
func (f *FsObject) ensureOpenLocked() (engine.FileHandle, error) {
	if h := engine.FileHandle(f.handle.Load()); h != 0 {
		return h, nil
	}

	fs, err := f.caseDB.FileSystem(f.fsObjID)
	if err != nil {
		return 0, err
	}

	h, err := f.caseDB.Engine().OpenFile(fs.EngineHandle(), f.metaAddr, f.attrType, f.attrID, f.caseDB.EngineContext())
	if err != nil {
		return 0, err
	}

	f.handle.Store(uint64(h))
	return h, nil
}

// Handle returns the current raw engine handle, 0 if the object is not open.
// Diagnostic use only: the value may be stale the moment it is returned and
// must not be used to bypass the lifecycle.
func (f *FsObject) Handle() engine.FileHandle {
	return engine.FileHandle(f.handle.Load())
}

// Close releases the engine handle. Idempotent: closing a never-opened or
// already-closed object is a no-op. Close is best-effort and never fails;
// the object can be reopened by a subsequent read or metadata request.
//
// Close waits for an in-flight read or metadata population on this object to
// drain before releasing the handle.
func (f *FsObject) Close() {
	f.ioMu.Lock()
	defer f.ioMu.Unlock()
	f.openMu.Lock()
	defer f.openMu.Unlock()

	if h := engine.FileHandle(f.handle.Load()); h != 0 {
		f.caseDB.Engine().CloseFile(h)
		f.handle.Store(0)
	}
}

// ============================================================================
// Read delegation
// ============================================================================

// Read copies up to length bytes of the object's selected data stream,
// starting at offset, into buf, and returns the number of bytes placed there.
//
// A short read is not an error; it usually means end of stream. Reads on the
// same object are serialized; reads on distinct objects proceed in parallel.
// Fails with a *engine.Error if the handle cannot be opened or the engine
// reports a read failure.
func (f *FsObject) Read(buf []byte, offset, length int64) (int, error) {
	// Zero-size objects never need a handle.
	if offset == 0 && f.size == 0 {
		return 0, nil
	}

	f.ioMu.Lock()
	defer f.ioMu.Unlock()

	h, err := f.ensureOpen()
	if err != nil {
		return 0, err
	}

	return f.caseDB.Engine().ReadFile(h, buf, offset, length)
}

// ============================================================================
// Metadata text cache
// ============================================================================

// MetaDataText returns a human-readable description of the object's on-disk
// metadata record, one element per line. The content differs per file system
// type (the same information istat-style tooling prints).
//
// The description is computed at most once per object and cached for the
// object's lifetime; objects with no metadata record get a single empty line
// without an engine call. A failed fetch leaves the cache empty so a later
// call can retry.
func (f *FsObject) MetaDataText() ([]string, error) {
	f.openMu.Lock()
	defer f.openMu.Unlock()

	if f.metaDataText != nil {
		return f.metaDataText, nil
	}

	if f.metaAddr == MetaAddrNone {
		f.metaDataText = []string{""}
		return f.metaDataText, nil
	}

	h, err := f.ensureOpenLocked()
	if err != nil {
		return nil, err
	}

	lines, err := f.caseDB.Engine().FileMetaDataText(h)
	if err != nil {
		return nil, err
	}

	f.metaDataText = lines
	return f.metaDataText, nil
}

// ============================================================================
// Path and context resolution
// ============================================================================

// FileSystemID returns the object id of the owning file system, 0 if unknown.
func (f *FsObject) FileSystemID() int64 {
	return f.fsObjID
}

// ParentDirectory returns the object's parent directory, or (nil, nil) when
// it has none. Fails when the case query fails.
func (f *FsObject) ParentDirectory() (*FsObject, error) {
	return f.caseDB.ResolveParent(f)
}

// DataSource resolves the data source (image or device) the object belongs
// to, via the owning file system.
func (f *FsObject) DataSource() (*DataSource, error) {
	fs, err := f.caseDB.FileSystem(f.fsObjID)
	if err != nil {
		return nil, err
	}
	return fs.DataSource()
}

// IsRoot reports whether this object is its file system's root directory.
//
// IsRoot never fails: when the owning file system cannot be resolved the
// failure is logged at error level and the object is treated as not root.
// Root-ness is consumed by display and traversal code where an error would
// break the whole listing over one object's metadata glitch.
func (f *FsObject) IsRoot() bool {
	fs, err := f.caseDB.FileSystem(f.fsObjID)
	if err != nil {
		logger.Error("resolving file system %d for object %d: %v", f.fsObjID, f.objID, err)
		return false
	}
	return fs.RootRecordAddress() == f.metaAddr
}

// DiagnosticString returns a one-line summary of the object for logs and
// debugging, always including the raw handle value. With includeState it also
// appends whether the metadata text cache is populated.
//
// DiagnosticString never fails: a failed unique-path lookup is logged and an
// empty path substituted.
func (f *FsObject) DiagnosticString(includeState bool) string {
	path := ""
	if p, err := f.caseDB.ResolveUniquePath(f); err != nil {
		logger.Error("resolving unique path for object %d: %v", f.objID, err)
	} else {
		path = p
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FsObject [objId %d fsObjId %d name %q metaAddr %d uniquePath %q handle %d",
		f.objID, f.fsObjID, f.name, f.metaAddr, path, f.handle.Load())
	if includeState {
		f.openMu.Lock()
		cached := f.metaDataText != nil
		f.openMu.Unlock()
		fmt.Fprintf(&b, " metaCached %t", cached)
	}
	b.WriteString("]")
	return b.String()
}

// ============================================================================
// Attribute accessors
// ============================================================================

// ID returns the object id in the case database.
func (f *FsObject) ID() int64 { return f.objID }

// DataSourceID returns the object id of the object's data source.
func (f *FsObject) DataSourceID() int64 { return f.dsObjID }

// Name returns the file or directory name.
func (f *FsObject) Name() string { return f.name }

// Size returns the declared size in bytes.
func (f *FsObject) Size() int64 { return f.size }

// MetaAddr returns the object's metadata record address.
func (f *FsObject) MetaAddr() uint64 { return f.metaAddr }

// MetaSeq returns the metadata sequence number.
func (f *FsObject) MetaSeq() uint32 { return f.metaSeq }

// AttrType returns the attribute type of the selected data stream.
func (f *FsObject) AttrType() engine.AttrType { return f.attrType }

// AttrID returns the attribute id of the selected data stream.
func (f *FsObject) AttrID() uint16 { return f.attrID }

// DirType returns the type reported by the name structure.
func (f *FsObject) DirType() NameType { return f.dirType }

// MetaType returns the type reported by the metadata structure.
func (f *FsObject) MetaType() MetaType { return f.metaType }

// DirFlags returns the allocation flags from the name structure.
func (f *FsObject) DirFlags() NameFlags { return f.dirFlags }

// MetaFlags returns the allocation flags from the metadata structure.
func (f *FsObject) MetaFlags() MetaFlags { return f.metaFlags }

// Times returns the recorded timestamps.
func (f *FsObject) Times() TimeStamps { return f.times }

// Mode returns the POSIX-style permission bits.
func (f *FsObject) Mode() uint32 { return f.mode }

// UID returns the recorded owner uid.
func (f *FsObject) UID() int32 { return f.uid }

// GID returns the recorded group id.
func (f *FsObject) GID() int32 { return f.gid }

// MD5 returns the hex MD5 hash, empty if not computed.
func (f *FsObject) MD5() string { return f.md5 }

// SHA1 returns the hex SHA-1 hash, empty if not computed.
func (f *FsObject) SHA1() string { return f.sha1 }

// SHA256 returns the hex SHA-256 hash, empty if not computed.
func (f *FsObject) SHA256() string { return f.sha256 }

// Known returns the hash database lookup status.
func (f *FsObject) Known() KnownStatus { return f.known }

// ParentPath returns the recorded path of the parent directory.
func (f *FsObject) ParentPath() string { return f.parent }

// MIMEType returns the detected MIME type, empty if undetermined.
func (f *FsObject) MIMEType() string { return f.mimeType }

// Extension returns the file name extension without the dot.
func (f *FsObject) Extension() string { return f.extension }

// OwnerUID returns the file-system-level owner identity.
func (f *FsObject) OwnerUID() string { return f.ownerUID }

// Collected returns the content collection status.
func (f *FsObject) Collected() CollectedStatus { return f.collected }

// IsDir reports whether the object is a directory according to its metadata
// structure, falling back to the name structure when the metadata type is
// undefined.
func (f *FsObject) IsDir() bool {
	if f.metaType != MetaTypeUndef {
		return f.metaType == MetaTypeDir
	}
	return f.dirType == NameTypeDir
}
