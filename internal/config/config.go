package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Port numbers must avoid the reserved system range and stay below 64001.
const (
	MinPort = 1024
	MaxPort = 64000
)

// Config represents the complete service configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	HTTP    HTTPConfig    `yaml:"http"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains the UDP dispatcher configuration: one port per
// response language plus socket parameters.
type ServerConfig struct {
	BindAddress string `yaml:"bind_address"`
	EnglishPort int    `yaml:"english_port"`
	MaoriPort   int    `yaml:"maori_port"`
	GermanPort  int    `yaml:"german_port"`
	BufferSize  int    `yaml:"buffer_size"`
}

// HTTPConfig contains the monitoring API server configuration
type HTTPConfig struct {
	Port    int    `yaml:"port"`
	Address string `yaml:"address"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a configuration with sensible defaults, used when the
// server is started with ports on the command line and no config file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress: "0.0.0.0",
			EnglishPort: 4001,
			MaoriPort:   4002,
			GermanPort:  4003,
			BufferSize:  1024,
		},
		HTTP: HTTPConfig{
			Port:    8080,
			Address: "127.0.0.1",
			Enabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate performs validation of the complete configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("http config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// ValidPort reports whether port lies in the range the protocol permits.
func ValidPort(port int) bool {
	return port >= MinPort && port <= MaxPort
}

// Validate validates the dispatcher configuration
func (s *ServerConfig) Validate() error {
	if s.BindAddress == "" {
		return fmt.Errorf("bind_address cannot be empty")
	}

	ports := map[string]int{
		"english_port": s.EnglishPort,
		"maori_port":   s.MaoriPort,
		"german_port":  s.GermanPort,
	}
	for name, port := range ports {
		if !ValidPort(port) {
			return fmt.Errorf("%s must be between %d and %d, got %d", name, MinPort, MaxPort, port)
		}
	}

	if s.EnglishPort == s.MaoriPort || s.EnglishPort == s.GermanPort || s.MaoriPort == s.GermanPort {
		return fmt.Errorf("language ports must be distinct, got %d/%d/%d",
			s.EnglishPort, s.MaoriPort, s.GermanPort)
	}

	if s.BufferSize < 1024 {
		return fmt.Errorf("buffer_size must be at least 1024 bytes, got %d", s.BufferSize)
	}

	return nil
}

// Validate validates the monitoring API configuration
func (h *HTTPConfig) Validate() error {
	if h.Enabled {
		if h.Port < 1 || h.Port > 65535 {
			return fmt.Errorf("http port must be between 1 and 65535, got %d", h.Port)
		}

		if h.Address == "" {
			return fmt.Errorf("http address cannot be empty when HTTP is enabled")
		}
	}

	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
