// Package enginetest provides an instrumented in-memory analysis engine for
// tests. It counts every engine call, supports scripted failures, and traps
// overlapping reads so tests can assert the serialization contract at the
// engine boundary.
package enginetest

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/casetrace/casetrace/pkg/engine"
)

// StreamKey identifies one registered data stream, matching the open
// parameters an FsObject produces.
type StreamKey struct {
	FS       engine.FSHandle
	MetaAddr uint64
	AttrType engine.AttrType
	AttrID   uint16
}

// Stream is the registered content and metadata for a key.
type Stream struct {
	Content   []byte
	MetaLines []string
}

// Engine is the mock. Counters are exported atomics so tests read them
// directly; failure knobs and the read trap are set through methods.
type Engine struct {
	mu      sync.Mutex
	streams map[StreamKey]*Stream
	handles map[engine.FileHandle]StreamKey

	next atomic.Uint64

	// Call counters.
	Opens     atomic.Int64
	Reads     atomic.Int64
	MetaCalls atomic.Int64
	Closes    atomic.Int64

	failOpens atomic.Int32
	failReads atomic.Bool
	failMeta  atomic.Bool

	inRead    atomic.Int32
	reentrant atomic.Bool

	// ReadDelay widens the window the re-entrancy trap observes.
	ReadDelay time.Duration

	// BeforeRead, when set, runs at the start of every ReadFile call,
	// after the trap has registered the read. Tests use it to build
	// rendezvous points.
	BeforeRead func(h engine.FileHandle)
}

// New creates an empty mock engine.
func New() *Engine {
	return &Engine{
		streams: make(map[StreamKey]*Stream),
		handles: make(map[engine.FileHandle]StreamKey),
	}
}

// AddStream registers content and metadata lines under a key.
func (e *Engine) AddStream(key StreamKey, content []byte, metaLines []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.streams[key] = &Stream{Content: content, MetaLines: metaLines}
}

// FailNextOpens makes the next n OpenFile calls fail.
func (e *Engine) FailNextOpens(n int32) {
	e.failOpens.Store(n)
}

// SetFailReads makes every ReadFile call fail while enabled.
func (e *Engine) SetFailReads(fail bool) {
	e.failReads.Store(fail)
}

// SetFailMeta makes every FileMetaDataText call fail while enabled.
func (e *Engine) SetFailMeta(fail bool) {
	e.failMeta.Store(fail)
}

// Reentrant reports whether two reads ever overlapped on this engine.
func (e *Engine) Reentrant() bool {
	return e.reentrant.Load()
}

// OpenHandles returns the number of handles currently open.
func (e *Engine) OpenHandles() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handles)
}

// OpenFile implements engine.Engine.
func (e *Engine) OpenFile(fs engine.FSHandle, metaAddr uint64, attrType engine.AttrType, attrID uint16, _ engine.Context) (engine.FileHandle, error) {
	e.Opens.Add(1)

	if e.failOpens.Load() > 0 {
		e.failOpens.Add(-1)
		return 0, &engine.Error{Op: "open", Err: fmt.Errorf("scripted open failure")}
	}

	key := StreamKey{FS: fs, MetaAddr: metaAddr, AttrType: attrType, AttrID: attrID}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.streams[key]; !ok {
		return 0, &engine.Error{Op: "open", Err: fmt.Errorf("no stream registered for %+v", key)}
	}

	h := engine.FileHandle(e.next.Add(1))
	e.handles[h] = key
	return h, nil
}

// ReadFile implements engine.Engine. Overlapping calls trip the re-entrancy
// trap regardless of which handles they target.
func (e *Engine) ReadFile(h engine.FileHandle, buf []byte, offset, length int64) (int, error) {
	e.Reads.Add(1)

	if e.inRead.Add(1) > 1 {
		e.reentrant.Store(true)
	}
	defer e.inRead.Add(-1)

	if e.BeforeRead != nil {
		e.BeforeRead(h)
	}
	if e.ReadDelay > 0 {
		time.Sleep(e.ReadDelay)
	}

	if e.failReads.Load() {
		return 0, &engine.Error{Op: "read", Err: fmt.Errorf("scripted read failure")}
	}

	stream, err := e.stream(h, "read")
	if err != nil {
		return 0, err
	}

	if offset >= int64(len(stream.Content)) || length == 0 {
		return 0, nil
	}
	if length > int64(len(buf)) {
		length = int64(len(buf))
	}
	n := copy(buf[:min(length, int64(len(stream.Content))-offset)], stream.Content[offset:])
	return n, nil
}

// FileMetaDataText implements engine.Engine.
func (e *Engine) FileMetaDataText(h engine.FileHandle) ([]string, error) {
	e.MetaCalls.Add(1)

	if e.failMeta.Load() {
		return nil, &engine.Error{Op: "meta", Err: fmt.Errorf("scripted metadata failure")}
	}

	stream, err := e.stream(h, "meta")
	if err != nil {
		return nil, err
	}

	lines := make([]string, len(stream.MetaLines))
	copy(lines, stream.MetaLines)
	return lines, nil
}

// CloseFile implements engine.Engine.
func (e *Engine) CloseFile(h engine.FileHandle) {
	e.Closes.Add(1)

	e.mu.Lock()
	delete(e.handles, h)
	e.mu.Unlock()
}

func (e *Engine) stream(h engine.FileHandle, op string) (*Stream, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	key, ok := e.handles[h]
	if !ok {
		return nil, &engine.Error{Op: op, Err: fmt.Errorf("unknown handle %d", h)}
	}
	return e.streams[key], nil
}
