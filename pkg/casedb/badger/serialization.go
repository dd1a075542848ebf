package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/casetrace/casetrace/pkg/datamodel"
	"github.com/casetrace/casetrace/pkg/engine"
)

// objectRecord is the stored form of an FsObject's immutable attributes.
// Field order is the wire layout; append new fields at the end only.
type objectRecord struct {
	ObjID           int64
	DataSourceObjID int64
	FSObjID         int64
	Name            string
	MetaAddr        uint64
	MetaSeq         uint32
	AttrType        uint32
	AttrID          uint32
	DirType         uint32
	MetaType        uint32
	DirFlags        uint32
	MetaFlags       uint32
	Size            int64
	Created         int64
	Modified        int64
	Changed         int64
	Accessed        int64
	Mode            uint32
	UID             int32
	GID             int32
	MD5             string
	SHA1            string
	SHA256          string
	Known           uint32
	ParentPath      string
	MIMEType        string
	Extension       string
	OwnerUID        string
	Collected       uint32
}

// fsRecord is the stored form of a file system record.
type fsRecord struct {
	ObjID           int64
	DataSourceObjID int64
	Type            uint32
	EngineHandle    uint64
	RootAddr        uint64
	BlockSize       uint64
	BlockCount      uint64
	ByteOffset      int64
}

// dsRecord is the stored form of a data source record.
type dsRecord struct {
	ObjID    int64
	ID       string
	Path     string
	DeviceID string
	TimeZone string
	Size     int64
}

func encodeRecord(v any) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, v); err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeRecord(data []byte, v any) error {
	if _, err := xdr.Unmarshal(bytes.NewReader(data), v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	return nil
}

func encodeParentLink(parentObjID int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(parentObjID))
	return b[:]
}

func decodeParentLink(data []byte) (int64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("parent link: expected 8 bytes, got %d", len(data))
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

func objectRecordFromConfig(cfg datamodel.FsObjectConfig) objectRecord {
	return objectRecord{
		ObjID:           cfg.ObjID,
		DataSourceObjID: cfg.DataSourceObjID,
		FSObjID:         cfg.FSObjID,
		Name:            cfg.Name,
		MetaAddr:        cfg.MetaAddr,
		MetaSeq:         cfg.MetaSeq,
		AttrType:        uint32(cfg.AttrType),
		AttrID:          uint32(cfg.AttrID),
		DirType:         uint32(cfg.DirType),
		MetaType:        uint32(cfg.MetaType),
		DirFlags:        uint32(cfg.DirFlags),
		MetaFlags:       uint32(cfg.MetaFlags),
		Size:            cfg.Size,
		Created:         cfg.Times.Created,
		Modified:        cfg.Times.Modified,
		Changed:         cfg.Times.Changed,
		Accessed:        cfg.Times.Accessed,
		Mode:            cfg.Mode,
		UID:             cfg.UID,
		GID:             cfg.GID,
		MD5:             cfg.MD5,
		SHA1:            cfg.SHA1,
		SHA256:          cfg.SHA256,
		Known:           uint32(cfg.Known),
		ParentPath:      cfg.ParentPath,
		MIMEType:        cfg.MIMEType,
		Extension:       cfg.Extension,
		OwnerUID:        cfg.OwnerUID,
		Collected:       uint32(cfg.Collected),
	}
}

func (r objectRecord) config() datamodel.FsObjectConfig {
	return datamodel.FsObjectConfig{
		ObjID:           r.ObjID,
		DataSourceObjID: r.DataSourceObjID,
		FSObjID:         r.FSObjID,
		Name:            r.Name,
		MetaAddr:        r.MetaAddr,
		MetaSeq:         r.MetaSeq,
		AttrType:        engine.AttrType(r.AttrType),
		AttrID:          uint16(r.AttrID),
		DirType:         datamodel.NameType(r.DirType),
		MetaType:        datamodel.MetaType(r.MetaType),
		DirFlags:        datamodel.NameFlags(r.DirFlags),
		MetaFlags:       datamodel.MetaFlags(r.MetaFlags),
		Size:            r.Size,
		Times: datamodel.TimeStamps{
			Created:  r.Created,
			Modified: r.Modified,
			Changed:  r.Changed,
			Accessed: r.Accessed,
		},
		Mode:       r.Mode,
		UID:        r.UID,
		GID:        r.GID,
		MD5:        r.MD5,
		SHA1:       r.SHA1,
		SHA256:     r.SHA256,
		Known:      datamodel.KnownStatus(r.Known),
		ParentPath: r.ParentPath,
		MIMEType:   r.MIMEType,
		Extension:  r.Extension,
		OwnerUID:   r.OwnerUID,
		Collected:  datamodel.CollectedStatus(r.Collected),
	}
}

func fsRecordFromConfig(cfg datamodel.FileSystemConfig) fsRecord {
	return fsRecord{
		ObjID:           cfg.ObjID,
		DataSourceObjID: cfg.DataSourceObjID,
		Type:            uint32(cfg.Type),
		EngineHandle:    uint64(cfg.EngineHandle),
		RootAddr:        cfg.RootAddr,
		BlockSize:       cfg.BlockSize,
		BlockCount:      cfg.BlockCount,
		ByteOffset:      cfg.ByteOffset,
	}
}

func (r fsRecord) config() datamodel.FileSystemConfig {
	return datamodel.FileSystemConfig{
		ObjID:           r.ObjID,
		DataSourceObjID: r.DataSourceObjID,
		Type:            datamodel.FSType(r.Type),
		EngineHandle:    engine.FSHandle(r.EngineHandle),
		RootAddr:        r.RootAddr,
		BlockSize:       r.BlockSize,
		BlockCount:      r.BlockCount,
		ByteOffset:      r.ByteOffset,
	}
}

func dsRecordFromDataSource(ds *datamodel.DataSource) dsRecord {
	return dsRecord{
		ObjID:    ds.ObjID,
		ID:       ds.ID.String(),
		Path:     ds.Path,
		DeviceID: ds.DeviceID,
		TimeZone: ds.TimeZone,
		Size:     ds.Size,
	}
}

func (r dsRecord) dataSource() (*datamodel.DataSource, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("data source %d: bad id %q: %w", r.ObjID, r.ID, err)
	}
	return &datamodel.DataSource{
		ObjID:    r.ObjID,
		ID:       id,
		Path:     r.Path,
		DeviceID: r.DeviceID,
		TimeZone: r.TimeZone,
		Size:     r.Size,
	}, nil
}
