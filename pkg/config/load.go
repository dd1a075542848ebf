package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envBoundKeys are the keys exposed through CASETRACE_* environment
// variables. AutomaticEnv only resolves keys viper already knows about, so
// each is bound explicitly.
var envBoundKeys = []string{
	"logging.level",
	"case.path",
	"engine.type",
	"engine.extract.root",
	"engine.s3.bucket",
	"engine.s3.region",
	"engine.s3.key_prefix",
	"engine.s3.endpoint",
	"engine.s3.access_key_id",
	"engine.s3.secret_access_key",
}

// Load reads configuration from the given YAML file (optional), the
// CASETRACE_* environment, and defaults, then validates the result.
//
// An empty path skips the file source entirely; environment variables and
// defaults must then supply everything required.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "INFO")
	v.SetDefault("engine.type", "extract")

	v.SetEnvPrefix("CASETRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envBoundKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
