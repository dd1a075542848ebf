package config

import "strings"

// Default creates a configuration with default values. The result is not
// valid on its own: the case path has no sensible default and must come from
// a file, the environment, or a flag.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Engine: EngineConfig{
			Type: "extract",
		},
	}
}

// ApplyDefaults fills unset fields and normalizes values after loading.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	cfg.Logging.Level = strings.ToUpper(cfg.Logging.Level)

	if cfg.Engine.Type == "" {
		cfg.Engine.Type = "extract"
	}
}
