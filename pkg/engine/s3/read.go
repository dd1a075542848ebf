package s3

import (
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/casetrace/casetrace/pkg/engine"
)

// ReadFile copies up to length bytes starting at offset into buf using an S3
// byte-range request.
//
// Reads at or past the end of the content return 0 bytes; reads crossing the
// end return the available tail. Both are short reads, not errors.
func (e *Engine) ReadFile(h engine.FileHandle, buf []byte, offset, length int64) (int, error) {
	if offset < 0 || length < 0 {
		return 0, &engine.Error{Op: "read", Err: fmt.Errorf("negative offset or length (%d, %d)", offset, length)}
	}

	obj, ok := e.lookup(h)
	if !ok {
		return 0, &engine.Error{Op: "read", Err: fmt.Errorf("unknown handle %d", h)}
	}

	if !obj.hasContent || length == 0 || offset >= obj.size {
		return 0, nil
	}

	if length > int64(len(buf)) {
		length = int64(len(buf))
	}
	end := offset + length
	if end > obj.size {
		end = obj.size
	}

	result, err := e.client.GetObject(e.ctx, &awss3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(obj.key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, end-1)),
	})
	if err != nil {
		return 0, &engine.Error{Op: "read", Err: err}
	}
	defer result.Body.Close()

	n, err := io.ReadFull(result.Body, buf[:end-offset])
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return n, &engine.Error{Op: "read", Err: err}
	}
	return n, nil
}
