// Package config loads client configuration: REST base URL, realtime socket
// URL, and the location of the persisted session token. Values come from
// built-in defaults, an optional YAML config file, an optional .env file, and
// process environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default name of the config file.
const DefaultConfigFile = "config.yaml"

// Documented defaults for a local development backend.
const (
	DefaultAPIURL = "http://localhost:8080/api/v1"
	DefaultWSURL  = "ws://localhost:8080/ws"
)

// Environment variable overrides.
const (
	EnvAPIURL    = "TASKMATE_API_URL"
	EnvWSURL     = "TASKMATE_WS_URL"
	EnvTokenPath = "TASKMATE_TOKEN_PATH"
)

// Config holds the client configuration.
type Config struct {
	// Version of the configuration file format
	Version string `yaml:"version"`
	// APIURL is the base URL of the task-manager REST API
	APIURL string `yaml:"api_url"`
	// WSURL is the realtime socket endpoint
	WSURL string `yaml:"ws_url"`
	// TokenPath overrides where the session token is persisted
	TokenPath string `yaml:"token_path,omitempty"`
}

// DefaultConfigPath returns the default path for the config file.
// Uses the OS-specific config directory (e.g., ~/.config/taskmate on Linux).
func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "taskmate", DefaultConfigFile), nil
}

// Load builds a Config from defaults, the given config file (optional), a
// .env file in the working directory (optional), and environment variables.
// A missing config file is not an error; a malformed one is.
func Load(file string) (*Config, error) {
	c := &Config{
		Version: "v1",
		APIURL:  DefaultAPIURL,
		WSURL:   DefaultWSURL,
	}

	if file == "" {
		var err error
		file, err = DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	yamlStr, err := os.ReadFile(file)
	if err == nil {
		if err := yaml.Unmarshal(yamlStr, c); err != nil {
			return nil, fmt.Errorf("unable to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	// .env is a developer convenience; ignore when absent
	_ = godotenv.Load()

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := os.Getenv(EnvWSURL); v != "" {
		c.WSURL = v
	}
	if v := os.Getenv(EnvTokenPath); v != "" {
		c.TokenPath = v
	}

	c.APIURL = strings.TrimRight(c.APIURL, "/")
	c.WSURL = strings.TrimRight(c.WSURL, "/")

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks required fields and URL schemes.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("api_url is required")
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return errors.New("api_url must start with http:// or https://")
	}
	if c.WSURL == "" {
		return errors.New("ws_url is required")
	}
	if !strings.HasPrefix(c.WSURL, "ws://") && !strings.HasPrefix(c.WSURL, "wss://") {
		return errors.New("ws_url must start with ws:// or wss://")
	}
	return nil
}

// Write persists the configuration to the specified file.
// If no file is specified, it uses the default config location.
func (c *Config) Write(file string) error {
	if file == "" {
		var err error
		file, err = DefaultConfigPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(file), os.ModePerm); err != nil {
		return fmt.Errorf("unable to create config directory: %w", err)
	}

	yamlStr, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("unable to generate configuration: %w", err)
	}

	if err := os.WriteFile(file, yamlStr, os.FileMode(0600)); err != nil {
		return fmt.Errorf("unable to write config file: %w", err)
	}
	return nil
}

// TokenFile returns the path where the session token is persisted. Defaults
// to a file named "token" next to the config file.
func (c *Config) TokenFile() (string, error) {
	if c.TokenPath != "" {
		return c.TokenPath, nil
	}
	cfgPath, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cfgPath), "token"), nil
}
