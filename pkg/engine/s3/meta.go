package s3

import (
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"

	"github.com/casetrace/casetrace/pkg/engine"
)

// sidecar mirrors the extract engine's sidecar format so the same extraction
// tooling can target either backend.
type sidecar struct {
	Source string   `yaml:"source"`
	Lines  []string `yaml:"lines"`
}

// FileMetaDataText downloads and parses the metadata sidecar for the handle.
func (e *Engine) FileMetaDataText(h engine.FileHandle) ([]string, error) {
	obj, ok := e.lookup(h)
	if !ok {
		return nil, &engine.Error{Op: "meta", Err: fmt.Errorf("unknown handle %d", h)}
	}

	result, err := e.client.GetObject(e.ctx, &awss3.GetObjectInput{
		Bucket: aws.String(e.bucket),
		Key:    aws.String(obj.metaKey),
	})
	if err != nil {
		return nil, &engine.Error{Op: "meta", Err: err}
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, &engine.Error{Op: "meta", Err: err}
	}

	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &engine.Error{Op: "meta", Err: fmt.Errorf("parse sidecar %s: %w", obj.metaKey, err)}
	}

	if sc.Lines == nil {
		sc.Lines = []string{}
	}
	return sc.Lines, nil
}
