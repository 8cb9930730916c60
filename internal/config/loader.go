package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".jobguard"

var (
	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrUnknownProfile is returned when the requested profile is not in the file.
	ErrUnknownProfile = errors.New("unknown profile")
)

// LoadConfigFile loads profiles from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cf.Profiles == nil {
		cf.Profiles = make(map[string]Profile)
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .jobguard in the current directory
// 3. Look for .jobguard in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err == nil {
		cwdConfig := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(cwdConfig); err == nil {
			return cwdConfig
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		homeConfig := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(homeConfig); err == nil {
			return homeConfig
		}
	}

	return ""
}

// Load finds the config file for c.ConfigFilePath and applies c.Profile
// from it. A missing file is only an error when a path was given explicitly.
// It returns the path that was loaded, or "" when none was.
func (c *Config) Load() (string, error) {
	path := FindConfigFile(c.ConfigFilePath)
	if path == "" {
		if c.ConfigFilePath != "" {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, c.ConfigFilePath)
		}
		if c.Profile != "" {
			return "", fmt.Errorf("%w: %s", ErrUnknownProfile, c.Profile)
		}
		return "", nil
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}

	p, ok := cf.GetProfile(c.Profile)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProfile, c.Profile)
	}
	c.Apply(p)

	return path, nil
}
