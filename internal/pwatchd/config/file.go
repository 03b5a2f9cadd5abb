package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// allowedExtensions lists the allowed config file extensions
var allowedExtensions = []string{".yaml", ".yml"}

// validateConfigPath ensures the config file path is usable
func validateConfigPath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("invalid config path: %w", err)
	}

	cleanPath := filepath.Clean(absPath)

	realPath, err := filepath.EvalSymlinks(cleanPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("error resolving config path: %w", err)
		}
		realPath = cleanPath
	}

	validExt := false
	for _, ext := range allowedExtensions {
		if strings.HasSuffix(strings.ToLower(realPath), ext) {
			validExt = true
			break
		}
	}
	if !validExt {
		return "", fmt.Errorf("config file must have .yaml or .yml extension")
	}

	return realPath, nil
}

// safeReadFile reads a file that has been validated as safe
func safeReadFile(path string) ([]byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing config file: %w", err)
	}
	if !fi.Mode().IsRegular() {
		return nil, fmt.Errorf("config path must be a regular file")
	}

	// #nosec G304 -- path has been validated by validateConfigPath
	return os.ReadFile(path)
}

// LoadFile loads configuration from a YAML file
func LoadFile(path string) (*Config, error) {
	validPath, err := validateConfigPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := safeReadFile(validPath)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Overlay environment variables
	cfg.overlayEnv()

	return cfg, cfg.validate()
}
