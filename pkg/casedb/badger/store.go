// Package badger implements the case database on BadgerDB.
//
// A case holds the records produced by ingest (data sources, file systems,
// objects, parent links) plus a registry of live FsObject instances, one per
// object id, so every consumer of the case shares the same handle lifecycle
// for a given object. Closing the case closes every live object
// deterministically; nothing relies on garbage collection timing.
package badger

import (
	"errors"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/casetrace/casetrace/internal/logger"
	"github.com/casetrace/casetrace/pkg/casedb"
	"github.com/casetrace/casetrace/pkg/datamodel"
	"github.com/casetrace/casetrace/pkg/engine"
)

// Config configures a case database.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string

	// InMemory runs BadgerDB without persistence. Tests use this.
	InMemory bool

	// Engine is the analysis engine serving this case's objects.
	Engine engine.Engine

	// EngineContext is passed to every engine open call. May be nil.
	EngineContext engine.Context
}

// CaseDB is a persistent case database. It implements datamodel.Case.
type CaseDB struct {
	db     *badger.DB
	id     uuid.UUID
	eng    engine.Engine
	engCtx engine.Context

	mu          sync.Mutex
	closed      bool
	objects     map[int64]*datamodel.FsObject
	fileSystems map[int64]*datamodel.FileSystem
}

// Open opens (or creates) a case database. A new case gets a fresh case id;
// reopening an existing one loads the stored id.
func Open(cfg Config) (*CaseDB, error) {
	if cfg.Engine == nil {
		return nil, fmt.Errorf("case database: engine is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("case database: path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open case database: %w", err)
	}

	c := &CaseDB{
		db:          db,
		eng:         cfg.Engine,
		engCtx:      cfg.EngineContext,
		objects:     make(map[int64]*datamodel.FsObject),
		fileSystems: make(map[int64]*datamodel.FileSystem),
	}

	if err := c.loadOrCreateID(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

// ID returns the case's unique identifier.
func (c *CaseDB) ID() uuid.UUID {
	return c.id
}

// Engine returns the analysis engine serving this case.
func (c *CaseDB) Engine() engine.Engine {
	return c.eng
}

// EngineContext returns the engine-level case context.
func (c *CaseDB) EngineContext() engine.Context {
	return c.engCtx
}

// Close closes every live object, then the database. Safe to call more than
// once. Object close is best-effort; a failure to close one object never
// blocks closing the rest or the database.
func (c *CaseDB) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	objects := c.objects
	c.objects = nil
	c.fileSystems = nil
	c.mu.Unlock()

	for _, obj := range objects {
		obj.Close()
	}
	logger.Debug("case %s: closed %d live objects", c.id, len(objects))

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close case database: %w", err)
	}
	return nil
}

// Object returns the live FsObject for objID, loading it from the database
// on first request. Every caller sees the same instance, so the handle
// lifecycle and metadata cache are shared case-wide.
func (c *CaseDB) Object(objID int64) (*datamodel.FsObject, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &casedb.QueryError{Op: "object", ObjID: objID, Err: casedb.ErrCaseClosed}
	}
	if obj, ok := c.objects[objID]; ok {
		return obj, nil
	}

	var rec objectRecord
	if err := c.get(objectKey(objID), &rec); err != nil {
		return nil, &casedb.QueryError{Op: "object", ObjID: objID, Err: err}
	}

	obj := datamodel.NewFsObject(c, rec.config())
	c.objects[objID] = obj
	return obj, nil
}

// loadOrCreateID reads the stored case id, creating one for a fresh case.
func (c *CaseDB) loadOrCreateID() error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(caseIDKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			id, err := uuid.Parse(string(val))
			if err != nil {
				return fmt.Errorf("stored case id %q: %w", val, err)
			}
			c.id = id
			return nil
		})
	})
	if err == nil {
		return nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("load case id: %w", err)
	}

	c.id = uuid.New()
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(caseIDKey, []byte(c.id.String()))
	})
	if err != nil {
		return fmt.Errorf("store case id: %w", err)
	}
	return nil
}

// get reads and decodes one record. Missing keys surface as
// casedb.ErrNotFound.
func (c *CaseDB) get(key []byte, v any) error {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return decodeRecord(val, v)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return casedb.ErrNotFound
	}
	return err
}

func (c *CaseDB) set(key, value []byte) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// ============================================================================
// Ingest writers
// ============================================================================
//
// These populate the case from ingest tooling. They write records only; live
// FsObject instances are built lazily by Object.

// PutDataSource stores a data source record.
func (c *CaseDB) PutDataSource(ds *datamodel.DataSource) error {
	data, err := encodeRecord(dsRecordFromDataSource(ds))
	if err != nil {
		return fmt.Errorf("put data source %d: %w", ds.ObjID, err)
	}
	return c.set(dsKey(ds.ObjID), data)
}

// PutFileSystem stores a file system record.
func (c *CaseDB) PutFileSystem(cfg datamodel.FileSystemConfig) error {
	data, err := encodeRecord(fsRecordFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("put file system %d: %w", cfg.ObjID, err)
	}
	return c.set(fsKey(cfg.ObjID), data)
}

// PutObject stores an object record and its parent link. parentObjID 0 means
// the object has no parent (a file system root).
func (c *CaseDB) PutObject(cfg datamodel.FsObjectConfig, parentObjID int64) error {
	data, err := encodeRecord(objectRecordFromConfig(cfg))
	if err != nil {
		return fmt.Errorf("put object %d: %w", cfg.ObjID, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(objectKey(cfg.ObjID), data); err != nil {
			return err
		}
		if parentObjID != 0 {
			return txn.Set(parentKey(cfg.ObjID), encodeParentLink(parentObjID))
		}
		return nil
	})
}
