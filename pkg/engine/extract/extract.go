// Package extract implements the analysis engine contract over evidence that
// was previously extracted to a local directory.
//
// Layout:
//
//	<root>/<fsHandle>/<metaAddr>-<attrType>-<attrID>            content bytes
//	<root>/<fsHandle>/<metaAddr>-<attrType>-<attrID>.meta.yaml  metadata lines
//
// The content file is optional (directories and metadata-only records have
// none); the sidecar is optional for objects whose metadata was never
// extracted. An open fails only when neither exists.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/casetrace/casetrace/pkg/engine"
)

// Config configures an extract engine.
type Config struct {
	// Root is the directory holding the extracted evidence tree.
	Root string
}

// Engine serves object bytes and metadata descriptions from an extracted
// evidence tree. Safe for concurrent use; each open object gets its own
// *os.File, so reads on distinct handles don't contend.
type Engine struct {
	root string

	// next allocates handle values. Starts at 1 so the unopened sentinel
	// (0) is never issued.
	next atomic.Uint64

	mu   sync.Mutex
	open map[engine.FileHandle]*openFile
}

type openFile struct {
	// file is the content file, nil for metadata-only objects.
	file *os.File

	// metaPath is the sidecar location, read lazily by FileMetaDataText.
	metaPath string
}

// New creates an extract engine rooted at cfg.Root. The root must exist.
func New(cfg Config) (*Engine, error) {
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("extract engine root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("extract engine root %s: not a directory", cfg.Root)
	}

	return &Engine{
		root: cfg.Root,
		open: make(map[engine.FileHandle]*openFile),
	}, nil
}

// OpenFile opens the extracted stream for (metaAddr, attrType, attrID) inside
// file system fs. The engine context is unused by this backend.
func (e *Engine) OpenFile(fs engine.FSHandle, metaAddr uint64, attrType engine.AttrType, attrID uint16, _ engine.Context) (engine.FileHandle, error) {
	base := e.streamPath(fs, metaAddr, attrType, attrID)
	metaPath := base + ".meta.yaml"

	file, err := os.Open(base)
	if err != nil {
		if !os.IsNotExist(err) {
			return 0, &engine.Error{Op: "open", Err: err}
		}
		// Metadata-only object: fine as long as the sidecar exists.
		if _, statErr := os.Stat(metaPath); statErr != nil {
			return 0, &engine.Error{Op: "open", Err: fmt.Errorf("no extracted data for meta %d: %w", metaAddr, err)}
		}
		file = nil
	}

	h := engine.FileHandle(e.next.Add(1))

	e.mu.Lock()
	e.open[h] = &openFile{file: file, metaPath: metaPath}
	e.mu.Unlock()

	return h, nil
}

// CloseFile releases the handle. Unknown handles are ignored; close errors
// are swallowed (best-effort contract).
func (e *Engine) CloseFile(h engine.FileHandle) {
	e.mu.Lock()
	of, ok := e.open[h]
	delete(e.open, h)
	e.mu.Unlock()

	if ok && of.file != nil {
		_ = of.file.Close()
	}
}

// OpenCount returns how many handles are currently open. Diagnostic use.
func (e *Engine) OpenCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}

func (e *Engine) lookup(h engine.FileHandle) (*openFile, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	of, ok := e.open[h]
	return of, ok
}

func (e *Engine) streamPath(fs engine.FSHandle, metaAddr uint64, attrType engine.AttrType, attrID uint16) string {
	return filepath.Join(e.root,
		fmt.Sprintf("%d", fs),
		fmt.Sprintf("%d-%d-%d", metaAddr, attrType, attrID))
}
