package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags plus the custom
// rules that tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	switch cfg.Engine.Type {
	case "extract":
		if root, _ := cfg.Engine.Extract["root"].(string); root == "" {
			return fmt.Errorf("engine.extract: root is required")
		}
	case "s3":
		if bucket, _ := cfg.Engine.S3["bucket"].(string); bucket == "" {
			return fmt.Errorf("engine.s3: bucket is required")
		}
		if region, _ := cfg.Engine.S3["region"].(string); region == "" {
			return fmt.Errorf("engine.s3: region is required")
		}
	}

	return nil
}

// formatValidationError turns validator's error list into one readable
// message naming each failed field and rule.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q validation (value %v)",
			strings.ToLower(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
