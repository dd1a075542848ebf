package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/casetrace/casetrace/pkg/engine"
)

// sidecar is the on-disk format of a metadata sidecar file. Lines carries the
// istat-style description exactly as the extraction tool produced it.
type sidecar struct {
	// Source names the tool that produced the description.
	Source string `yaml:"source"`

	// Lines is the description, one element per output line.
	Lines []string `yaml:"lines"`
}

// FileMetaDataText returns the extracted metadata description for the handle,
// one element per line.
func (e *Engine) FileMetaDataText(h engine.FileHandle) ([]string, error) {
	of, ok := e.lookup(h)
	if !ok {
		return nil, &engine.Error{Op: "meta", Err: fmt.Errorf("unknown handle %d", h)}
	}

	data, err := os.ReadFile(of.metaPath)
	if err != nil {
		return nil, &engine.Error{Op: "meta", Err: err}
	}

	var sc sidecar
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &engine.Error{Op: "meta", Err: fmt.Errorf("parse sidecar %s: %w", of.metaPath, err)}
	}

	if sc.Lines == nil {
		sc.Lines = []string{}
	}
	return sc.Lines, nil
}
