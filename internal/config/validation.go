package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags and custom rules
// that cannot be expressed in tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	info, err := os.Stat(cfg.Server.Root)
	if err != nil {
		return fmt.Errorf("server.root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("server.root: %q is not a directory", cfg.Server.Root)
	}

	if cfg.Server.MaxBodySize < cfg.Server.MaxFrameSize {
		return fmt.Errorf("server.max_body_size must be at least server.max_frame_size")
	}

	return nil
}

func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
