package config

import (
	"fmt"
	"os"
)

// LoadConfig loads and parses a run configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadWorkerConfig loads and parses a worker configuration file.
func LoadWorkerConfig(path string) (*WorkerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read worker config file %s: %w", path, err)
	}
	cfg, err := ParseWorkerConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse worker config file %s: %w", path, err)
	}
	return cfg, nil
}
