// Package config loads and validates the casetrace configuration.
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (CASETRACE_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
//
// Engine selection follows the type-plus-section pattern: Engine.Type picks
// the backend and only the matching type-specific section is decoded.
package config

// Config is the complete casetrace configuration.
type Config struct {
	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging"`

	// Case locates the case database.
	Case CaseConfig `mapstructure:"case"`

	// Engine selects and configures the analysis engine backend.
	Engine EngineConfig `mapstructure:"engine"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive).
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error"`
}

// CaseConfig locates the case database.
type CaseConfig struct {
	// Path is the BadgerDB directory holding the case.
	Path string `mapstructure:"path" validate:"required"`
}

// EngineConfig specifies the analysis engine backend.
//
// The Type field determines which backend is used; only the corresponding
// type-specific section is decoded.
type EngineConfig struct {
	// Type specifies which engine backend to use.
	// Valid values: extract, s3.
	Type string `mapstructure:"type" validate:"required,oneof=extract s3"`

	// Extract contains extract-engine settings.
	// Only used when Type = "extract".
	Extract map[string]any `mapstructure:"extract"`

	// S3 contains S3-engine settings.
	// Only used when Type = "s3".
	S3 map[string]any `mapstructure:"s3"`
}
