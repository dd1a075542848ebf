package badger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casetrace/casetrace/pkg/casedb"
	"github.com/casetrace/casetrace/pkg/datamodel"
	"github.com/casetrace/casetrace/pkg/engine"
	"github.com/casetrace/casetrace/pkg/engine/enginetest"
)

const (
	fsObjID  = int64(7)
	fsHandle = engine.FSHandle(700)
	rootAddr = uint64(5)
)

// seedCase populates a case with one data source, one file system, and a
// small tree: root (100) / docs (101) / report.pdf (102).
func seedCase(t *testing.T, c *CaseDB) {
	t.Helper()

	require.NoError(t, c.PutDataSource(&datamodel.DataSource{
		ObjID:    1,
		ID:       uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Path:     "/evidence/disk.img",
		TimeZone: "America/New_York",
		Size:     1 << 30,
	}))

	require.NoError(t, c.PutFileSystem(datamodel.FileSystemConfig{
		ObjID:           fsObjID,
		DataSourceObjID: 1,
		Type:            datamodel.FSTypeNTFS,
		EngineHandle:    fsHandle,
		RootAddr:        rootAddr,
		BlockSize:       4096,
		BlockCount:      262144,
	}))

	require.NoError(t, c.PutObject(datamodel.FsObjectConfig{
		ObjID:    100,
		FSObjID:  fsObjID,
		MetaAddr: rootAddr,
		MetaType: datamodel.MetaTypeDir,
	}, 0))

	require.NoError(t, c.PutObject(datamodel.FsObjectConfig{
		ObjID:    101,
		FSObjID:  fsObjID,
		Name:     "docs",
		MetaAddr: 40,
		MetaType: datamodel.MetaTypeDir,
	}, 100))

	require.NoError(t, c.PutObject(datamodel.FsObjectConfig{
		ObjID:      102,
		FSObjID:    fsObjID,
		Name:       "report.pdf",
		MetaAddr:   48,
		MetaType:   datamodel.MetaTypeFile,
		Size:       11,
		MD5:        "d41d8cd98f00b204e9800998ecf8427e",
		Known:      datamodel.KnownGood,
		ParentPath: "/docs/",
		MIMEType:   "application/pdf",
		Extension:  "pdf",
	}, 101))
}

func openTestCase(t *testing.T) (*CaseDB, *enginetest.Engine) {
	t.Helper()

	eng := enginetest.New()
	eng.AddStream(enginetest.StreamKey{
		FS:       fsHandle,
		MetaAddr: 48,
		AttrType: engine.AttrTypeDefault,
		AttrID:   0,
	}, []byte("pdf content"), []string{"inode: 48"})

	c, err := Open(Config{InMemory: true, Engine: eng})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	seedCase(t, c)
	return c, eng
}

func TestObjectRoundTrip(t *testing.T) {
	c, _ := openTestCase(t)

	obj, err := c.Object(102)
	require.NoError(t, err)

	assert.Equal(t, int64(102), obj.ID())
	assert.Equal(t, fsObjID, obj.FileSystemID())
	assert.Equal(t, "report.pdf", obj.Name())
	assert.Equal(t, uint64(48), obj.MetaAddr())
	assert.Equal(t, int64(11), obj.Size())
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", obj.MD5())
	assert.Equal(t, datamodel.KnownGood, obj.Known())
	assert.Equal(t, "/docs/", obj.ParentPath())
	assert.Equal(t, "application/pdf", obj.MIMEType())
	assert.Equal(t, "pdf", obj.Extension())
	assert.Equal(t, datamodel.MetaTypeFile, obj.MetaType())
	assert.False(t, obj.IsDir())
}

func TestObjectSharedInstance(t *testing.T) {
	c, _ := openTestCase(t)

	first, err := c.Object(102)
	require.NoError(t, err)
	second, err := c.Object(102)
	require.NoError(t, err)

	assert.Same(t, first, second, "one live instance per object id")
}

func TestObjectNotFound(t *testing.T) {
	c, _ := openTestCase(t)

	_, err := c.Object(9999)
	var qerr *casedb.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.ErrorIs(t, err, casedb.ErrNotFound)
}

func TestResolveParent(t *testing.T) {
	c, _ := openTestCase(t)

	file, err := c.Object(102)
	require.NoError(t, err)

	dir, err := c.ResolveParent(file)
	require.NoError(t, err)
	require.NotNil(t, dir)
	assert.Equal(t, "docs", dir.Name())

	root, err := c.ResolveParent(dir)
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, int64(100), root.ID())

	none, err := c.ResolveParent(root)
	require.NoError(t, err)
	assert.Nil(t, none, "roots have no parent")
}

func TestResolveUniquePath(t *testing.T) {
	c, _ := openTestCase(t)

	file, err := c.Object(102)
	require.NoError(t, err)

	path, err := c.ResolveUniquePath(file)
	require.NoError(t, err)
	assert.Equal(t, "/fs-7/docs/report.pdf", path)
}

func TestFileSystemResolution(t *testing.T) {
	c, _ := openTestCase(t)

	fs, err := c.FileSystem(fsObjID)
	require.NoError(t, err)
	assert.Equal(t, fsHandle, fs.EngineHandle())
	assert.Equal(t, rootAddr, fs.RootRecordAddress())
	assert.Equal(t, datamodel.FSTypeNTFS, fs.Type())
	assert.Equal(t, uint64(4096), fs.BlockSize())

	again, err := c.FileSystem(fsObjID)
	require.NoError(t, err)
	assert.Same(t, fs, again, "file system records are cached")

	_, err = c.FileSystem(0)
	assert.ErrorIs(t, err, casedb.ErrNotFound)

	_, err = c.FileSystem(999)
	assert.ErrorIs(t, err, casedb.ErrNotFound)
}

func TestDataSourceResolution(t *testing.T) {
	c, _ := openTestCase(t)

	fs, err := c.FileSystem(fsObjID)
	require.NoError(t, err)

	ds, err := fs.DataSource()
	require.NoError(t, err)
	assert.Equal(t, "/evidence/disk.img", ds.Path)
	assert.Equal(t, "America/New_York", ds.TimeZone)
	assert.Equal(t, uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"), ds.ID)
}

func TestIsRootThroughCase(t *testing.T) {
	c, _ := openTestCase(t)

	root, err := c.Object(100)
	require.NoError(t, err)
	assert.True(t, root.IsRoot())

	file, err := c.Object(102)
	require.NoError(t, err)
	assert.False(t, file.IsRoot())
}

func TestReadThroughCase(t *testing.T) {
	c, _ := openTestCase(t)

	obj, err := c.Object(102)
	require.NoError(t, err)

	buf := make([]byte, 11)
	n, err := obj.Read(buf, 0, 11)
	require.NoError(t, err)
	assert.Equal(t, "pdf content", string(buf[:n]))
}

func TestCloseClosesLiveObjects(t *testing.T) {
	eng := enginetest.New()
	eng.AddStream(enginetest.StreamKey{
		FS:       fsHandle,
		MetaAddr: 48,
		AttrType: engine.AttrTypeDefault,
		AttrID:   0,
	}, []byte("pdf content"), nil)

	c, err := Open(Config{InMemory: true, Engine: eng})
	require.NoError(t, err)
	seedCase(t, c)

	obj, err := c.Object(102)
	require.NoError(t, err)

	buf := make([]byte, 4)
	_, err = obj.Read(buf, 0, 4)
	require.NoError(t, err)
	require.NotEqual(t, engine.FileHandle(0), obj.Handle())

	require.NoError(t, c.Close())
	assert.Equal(t, engine.FileHandle(0), obj.Handle(), "case close releases live handles")
	assert.Equal(t, int64(1), eng.Closes.Load())

	// Close is idempotent; queries after close fail.
	require.NoError(t, c.Close())
	_, err = c.Object(102)
	assert.ErrorIs(t, err, casedb.ErrCaseClosed)
}

func TestCasePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	eng := enginetest.New()

	c, err := Open(Config{Path: dir, Engine: eng})
	require.NoError(t, err)
	seedCase(t, c)
	caseID := c.ID()
	require.NoError(t, c.Close())

	c, err = Open(Config{Path: dir, Engine: eng})
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	assert.Equal(t, caseID, c.ID(), "case id survives reopen")

	obj, err := c.Object(102)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", obj.Name())

	path, err := c.ResolveUniquePath(obj)
	require.NoError(t, err)
	assert.Equal(t, "/fs-7/docs/report.pdf", path)
}

func TestOpenRequiresEngine(t *testing.T) {
	_, err := Open(Config{InMemory: true})
	require.Error(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{Engine: enginetest.New()})
	require.Error(t, err)
}
