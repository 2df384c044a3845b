package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ParseConfigYAML parses a Config from YAML bytes, applies defaults and
// validates it. This is used for APIs where config is provided as
// payload (not via filesystem).
func ParseConfigYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// ParseConfigYAMLString parses a Config from a YAML string and
// validates it.
func ParseConfigYAMLString(yamlText string) (*Config, error) {
	return ParseConfigYAML([]byte(yamlText))
}

// ParseWorkerConfigYAML parses a WorkerConfig from YAML bytes, applies
// defaults and validates it.
func ParseWorkerConfigYAML(data []byte) (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse worker config yaml: %w", err)
	}
	cfg.applyDefaults()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid worker config: %w", err)
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return err
	}
	// Cross-field checks the struct tags cannot express.
	if cfg.Run.Benchmark == "srn" && cfg.Run.NumVars != 0 {
		return fmt.Errorf("num_vars is only meaningful for zdt1")
	}
	seen := make(map[string]bool, len(cfg.Objectives))
	for _, o := range cfg.Objectives {
		if seen[o.Name] {
			return fmt.Errorf("duplicate objective override: %s", o.Name)
		}
		seen[o.Name] = true
	}
	if cfg.Dispatch.Backoff != "" && cfg.Dispatch.BackoffBaseMs == 0 {
		return fmt.Errorf("backoff %s requires backoff_base_ms", cfg.Dispatch.Backoff)
	}
	return nil
}
