// Package s3 implements the analysis engine contract over extracted evidence
// stored in an S3 (or S3-compatible) bucket.
//
// Object keys mirror the local extract layout:
//
//	<prefix><fsHandle>/<metaAddr>-<attrType>-<attrID>            content bytes
//	<prefix><fsHandle>/<metaAddr>-<attrType>-<attrID>.meta.yaml  metadata lines
//
// Reads use S3 byte-range requests, so only the requested slice of a large
// evidence object is ever downloaded.
package s3

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/casetrace/casetrace/pkg/engine"
)

// Config configures an S3 engine.
type Config struct {
	// Client is the configured S3 client.
	Client *awss3.Client

	// Bucket is the bucket holding the extracted evidence.
	Bucket string

	// KeyPrefix is an optional prefix for all evidence keys
	// (e.g. "cases/acme-2026/").
	KeyPrefix string
}

// Engine serves object bytes and metadata descriptions from S3.
//
// The engine contract has no per-call context (calls run to completion or
// failure), so S3 requests use the base context given to New. Cancelling that
// context fails every in-flight and future call.
type Engine struct {
	ctx    context.Context
	client *awss3.Client
	bucket string
	prefix string

	// next allocates handle values, starting at 1 so 0 is never issued.
	next atomic.Uint64

	mu   sync.Mutex
	open map[engine.FileHandle]*openObject
}

type openObject struct {
	// key is the content object key; metaKey the sidecar key.
	key     string
	metaKey string

	// size is the content length reported at open time; 0 when the
	// object is metadata-only.
	size int64

	// hasContent is false for metadata-only objects.
	hasContent bool
}

// New creates an S3 engine and verifies bucket access. The bucket must
// already exist.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("s3 engine: client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 engine: bucket is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &awss3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 engine: bucket %s not accessible: %w", cfg.Bucket, err)
	}

	return &Engine{
		ctx:    ctx,
		client: cfg.Client,
		bucket: cfg.Bucket,
		prefix: cfg.KeyPrefix,
		open:   make(map[engine.FileHandle]*openObject),
	}, nil
}

// OpenFile resolves the evidence keys for (metaAddr, attrType, attrID) inside
// file system fs and records the content size. The engine context is unused
// by this backend.
func (e *Engine) OpenFile(fs engine.FSHandle, metaAddr uint64, attrType engine.AttrType, attrID uint16, _ engine.Context) (engine.FileHandle, error) {
	key := e.streamKey(fs, metaAddr, attrType, attrID)
	metaKey := key + ".meta.yaml"

	obj := &openObject{key: key, metaKey: metaKey}

	head, err := e.client.HeadObject(e.ctx, &awss3.HeadObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(key),
	})
	switch {
	case err == nil:
		obj.hasContent = true
		obj.size = aws.ToInt64(head.ContentLength)
	case isNotFound(err):
		// Metadata-only object: fine as long as the sidecar exists.
		_, metaErr := e.client.HeadObject(e.ctx, &awss3.HeadObjectInput{
			Bucket: aws.String(e.bucket),
			Key:    aws.String(metaKey),
		})
		if metaErr != nil {
			return 0, &engine.Error{Op: "open", Err: fmt.Errorf("no extracted data for meta %d: %w", metaAddr, err)}
		}
	default:
		return 0, &engine.Error{Op: "open", Err: err}
	}

	h := engine.FileHandle(e.next.Add(1))

	e.mu.Lock()
	e.open[h] = obj
	e.mu.Unlock()

	return h, nil
}

// CloseFile releases the handle. S3 keeps no per-object server state, so this
// only drops the handle table entry.
func (e *Engine) CloseFile(h engine.FileHandle) {
	e.mu.Lock()
	delete(e.open, h)
	e.mu.Unlock()
}

func (e *Engine) lookup(h engine.FileHandle) (*openObject, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	obj, ok := e.open[h]
	return obj, ok
}

func (e *Engine) streamKey(fs engine.FSHandle, metaAddr uint64, attrType engine.AttrType, attrID uint16) string {
	return fmt.Sprintf("%s%d/%d-%d-%d", e.prefix, fs, metaAddr, attrType, attrID)
}

// isNotFound matches the two shapes S3 uses for missing objects (HeadObject
// reports NotFound, GetObject reports NoSuchKey).
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
