package datamodel

import "github.com/casetrace/casetrace/pkg/engine"

// FileSystemConfig assembles a FileSystem record. Fields mirror what the case
// database stores for a discovered file system.
type FileSystemConfig struct {
	// ObjID is the file system's object id in the case database.
	ObjID int64

	// DataSourceObjID is the object id of the data source the file system
	// was found in.
	DataSourceObjID int64

	// Type is the detected file system type.
	Type FSType

	// EngineHandle is the engine-level handle for the opened file system.
	EngineHandle engine.FSHandle

	// RootAddr is the meta address of the file system's root directory
	// record.
	RootAddr uint64

	// BlockSize is the file system block size in bytes.
	BlockSize uint64

	// BlockCount is the number of blocks in the file system.
	BlockCount uint64

	// ByteOffset is where the file system starts inside its data source.
	ByteOffset int64
}

// FileSystem is a file system discovered in a data source and recorded in the
// case. It is immutable after construction.
type FileSystem struct {
	caseDB Case

	objID        int64
	dsObjID      int64
	fsType       FSType
	engineHandle engine.FSHandle
	rootAddr     uint64
	blockSize    uint64
	blockCount   uint64
	byteOffset   int64
}

// NewFileSystem builds a FileSystem owned by the given case.
func NewFileSystem(c Case, cfg FileSystemConfig) *FileSystem {
	return &FileSystem{
		caseDB:       c,
		objID:        cfg.ObjID,
		dsObjID:      cfg.DataSourceObjID,
		fsType:       cfg.Type,
		engineHandle: cfg.EngineHandle,
		rootAddr:     cfg.RootAddr,
		blockSize:    cfg.BlockSize,
		blockCount:   cfg.BlockCount,
		byteOffset:   cfg.ByteOffset,
	}
}

// ObjID returns the file system's object id in the case database.
func (fs *FileSystem) ObjID() int64 {
	return fs.objID
}

// Type returns the detected file system type.
func (fs *FileSystem) Type() FSType {
	return fs.fsType
}

// EngineHandle returns the engine-level handle used to open objects inside
// this file system.
func (fs *FileSystem) EngineHandle() engine.FSHandle {
	return fs.engineHandle
}

// RootRecordAddress returns the meta address of the root directory record.
func (fs *FileSystem) RootRecordAddress() uint64 {
	return fs.rootAddr
}

// BlockSize returns the file system block size in bytes.
func (fs *FileSystem) BlockSize() uint64 {
	return fs.blockSize
}

// BlockCount returns the number of blocks in the file system.
func (fs *FileSystem) BlockCount() uint64 {
	return fs.blockCount
}

// ByteOffset returns where the file system starts inside its data source.
func (fs *FileSystem) ByteOffset() int64 {
	return fs.byteOffset
}

// DataSource resolves the data source this file system was found in.
func (fs *FileSystem) DataSource() (*DataSource, error) {
	return fs.caseDB.DataSource(fs.dsObjID)
}
