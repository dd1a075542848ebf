package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casetrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
case:
  path: /cases/acme-2026
engine:
  type: extract
  extract:
    root: /evidence/extracted
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level is normalized to uppercase")
	assert.Equal(t, "/cases/acme-2026", cfg.Case.Path)
	assert.Equal(t, "extract", cfg.Engine.Type)
	assert.Equal(t, "/evidence/extracted", cfg.Engine.Extract["root"])
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CASETRACE_CASE_PATH", "/cases/env-case")
	t.Setenv("CASETRACE_ENGINE_EXTRACT_ROOT", "/evidence/env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "extract", cfg.Engine.Type)
	assert.Equal(t, "/cases/env-case", cfg.Case.Path)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "casetrace.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: info
case:
  path: /cases/file-case
engine:
  type: extract
  extract:
    root: /evidence/extracted
`), 0o644))

	t.Setenv("CASETRACE_LOGGING_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ERROR", cfg.Logging.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/casetrace.yaml")
	require.Error(t, err)
}

func TestValidateRejectsMissingCasePath(t *testing.T) {
	cfg := Default()
	cfg.Engine.Extract = map[string]any{"root": "/evidence"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case.path")
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := Default()
	cfg.Case.Path = "/cases/x"
	cfg.Logging.Level = "LOUD"
	cfg.Engine.Extract = map[string]any{"root": "/evidence"}

	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateRejectsUnknownEngineType(t *testing.T) {
	cfg := Default()
	cfg.Case.Path = "/cases/x"
	cfg.Engine.Type = "magnetic-tape"

	err := Validate(cfg)
	require.Error(t, err)
}

func TestValidateExtractRequiresRoot(t *testing.T) {
	cfg := Default()
	cfg.Case.Path = "/cases/x"

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root is required")
}

func TestValidateS3RequiresBucketAndRegion(t *testing.T) {
	cfg := Default()
	cfg.Case.Path = "/cases/x"
	cfg.Engine.Type = "s3"
	cfg.Engine.S3 = map[string]any{"bucket": "evidence"}

	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region is required")
}

func TestBuildEngineUnknownType(t *testing.T) {
	_, err := BuildEngine(context.Background(), EngineConfig{Type: "magnetic-tape"})
	require.Error(t, err)
}

func TestBuildExtractEngine(t *testing.T) {
	root := t.TempDir()

	eng, err := BuildEngine(context.Background(), EngineConfig{
		Type:    "extract",
		Extract: map[string]any{"root": root},
	})
	require.NoError(t, err)
	assert.NotNil(t, eng)
}
