package extract

import (
	"errors"
	"fmt"
	"io"

	"github.com/casetrace/casetrace/pkg/engine"
)

// ReadFile copies up to length bytes starting at offset into buf.
//
// Reads past the end of the stream return fewer bytes than requested (or 0);
// that is a short read, not an error. Metadata-only objects read as empty.
func (e *Engine) ReadFile(h engine.FileHandle, buf []byte, offset, length int64) (int, error) {
	if offset < 0 || length < 0 {
		return 0, &engine.Error{Op: "read", Err: fmt.Errorf("negative offset or length (%d, %d)", offset, length)}
	}

	of, ok := e.lookup(h)
	if !ok {
		return 0, &engine.Error{Op: "read", Err: fmt.Errorf("unknown handle %d", h)}
	}

	if of.file == nil || length == 0 {
		return 0, nil
	}

	if length > int64(len(buf)) {
		length = int64(len(buf))
	}

	n, err := of.file.ReadAt(buf[:length], offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &engine.Error{Op: "read", Err: err}
	}
	return n, nil
}
