package badger

import (
	"errors"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/casetrace/casetrace/pkg/casedb"
	"github.com/casetrace/casetrace/pkg/datamodel"
)

// maxPathDepth bounds the parent walk so a corrupted parent chain cannot
// loop forever.
const maxPathDepth = 4096

// FileSystem resolves a file system record by object id. Instances are
// cached so every object of one file system shares the same record.
func (c *CaseDB) FileSystem(fsObjID int64) (*datamodel.FileSystem, error) {
	if fsObjID == 0 {
		return nil, &casedb.QueryError{Op: "filesystem", Err: fmt.Errorf("object has no file system: %w", casedb.ErrNotFound)}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, &casedb.QueryError{Op: "filesystem", ObjID: fsObjID, Err: casedb.ErrCaseClosed}
	}
	if fs, ok := c.fileSystems[fsObjID]; ok {
		return fs, nil
	}

	var rec fsRecord
	if err := c.get(fsKey(fsObjID), &rec); err != nil {
		return nil, &casedb.QueryError{Op: "filesystem", ObjID: fsObjID, Err: err}
	}

	fs := datamodel.NewFileSystem(c, rec.config())
	c.fileSystems[fsObjID] = fs
	return fs, nil
}

// DataSource resolves a data source record by object id.
func (c *CaseDB) DataSource(dsObjID int64) (*datamodel.DataSource, error) {
	var rec dsRecord
	if err := c.get(dsKey(dsObjID), &rec); err != nil {
		return nil, &casedb.QueryError{Op: "datasource", ObjID: dsObjID, Err: err}
	}

	ds, err := rec.dataSource()
	if err != nil {
		return nil, &casedb.QueryError{Op: "datasource", ObjID: dsObjID, Err: err}
	}
	return ds, nil
}

// ResolveParent returns the parent directory of obj, or (nil, nil) when the
// object has no parent link (file system roots, orphan placeholders).
func (c *CaseDB) ResolveParent(obj *datamodel.FsObject) (*datamodel.FsObject, error) {
	parentID, ok, err := c.parentLink(obj.ID())
	if err != nil {
		return nil, &casedb.QueryError{Op: "parent", ObjID: obj.ID(), Err: err}
	}
	if !ok {
		return nil, nil
	}
	return c.Object(parentID)
}

// ResolveUniquePath computes a case-wide unique path for obj by walking its
// parent links to the file system root and prefixing the file system id.
func (c *CaseDB) ResolveUniquePath(obj *datamodel.FsObject) (string, error) {
	names := []string{obj.Name()}

	id := obj.ID()
	for depth := 0; ; depth++ {
		if depth >= maxPathDepth {
			return "", &casedb.QueryError{Op: "unique-path", ObjID: obj.ID(), Err: fmt.Errorf("parent chain exceeds %d levels", maxPathDepth)}
		}

		parentID, ok, err := c.parentLink(id)
		if err != nil {
			return "", &casedb.QueryError{Op: "unique-path", ObjID: obj.ID(), Err: err}
		}
		if !ok {
			break
		}

		var rec objectRecord
		if err := c.get(objectKey(parentID), &rec); err != nil {
			return "", &casedb.QueryError{Op: "unique-path", ObjID: obj.ID(), Err: err}
		}
		if rec.Name != "" {
			names = append(names, rec.Name)
		}
		id = parentID
	}

	// Reverse into root-first order.
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}

	return fmt.Sprintf("/fs-%d/%s", obj.FileSystemID(), strings.Join(names, "/")), nil
}

// parentLink reads the parent object id for objID. The second return value
// is false when no link exists.
func (c *CaseDB) parentLink(objID int64) (int64, bool, error) {
	var parentID int64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(parentKey(objID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decodeErr error
			parentID, decodeErr = decodeParentLink(val)
			return decodeErr
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return parentID, true, nil
}
