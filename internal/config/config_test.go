package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	return Config{
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

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid configuration",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "english port below range",
			mutate:      func(c *Config) { c.Server.EnglishPort = 1023 },
			expectError: true,
			errorMsg:    "english_port",
		},
		{
			name:        "german port above range",
			mutate:      func(c *Config) { c.Server.GermanPort = 64001 },
			expectError: true,
			errorMsg:    "german_port",
		},
		{
			name: "duplicate ports",
			mutate: func(c *Config) {
				c.Server.MaoriPort = c.Server.EnglishPort
			},
			expectError: true,
			errorMsg:    "distinct",
		},
		{
			name:        "buffer too small",
			mutate:      func(c *Config) { c.Server.BufferSize = 512 },
			expectError: true,
			errorMsg:    "buffer_size",
		},
		{
			name:        "empty bind address",
			mutate:      func(c *Config) { c.Server.BindAddress = "" },
			expectError: true,
			errorMsg:    "bind_address",
		},
		{
			name:        "bad log level",
			mutate:      func(c *Config) { c.Logging.Level = "verbose" },
			expectError: true,
			errorMsg:    "level",
		},
		{
			name:        "bad log format",
			mutate:      func(c *Config) { c.Logging.Format = "xml" },
			expectError: true,
			errorMsg:    "format",
		},
		{
			name: "http enabled without address",
			mutate: func(c *Config) {
				c.HTTP.Enabled = true
				c.HTTP.Address = ""
			},
			expectError: true,
			errorMsg:    "address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error but got none")
				}
				if tt.errorMsg != "" && !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("expected error to contain %q, got %q", tt.errorMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("expected no error but got: %v", err)
			}
		})
	}
}

func TestValidPort(t *testing.T) {
	tests := []struct {
		port  int
		valid bool
	}{
		{1023, false},
		{1024, true},
		{4001, true},
		{64000, true},
		{64001, false},
	}

	for _, tt := range tests {
		if got := ValidPort(tt.port); got != tt.valid {
			t.Errorf("ValidPort(%d): expected %v, got %v", tt.port, tt.valid, got)
		}
	}
}

func TestLoad(t *testing.T) {
	content := `
server:
  bind_address: "127.0.0.1"
  english_port: 5001
  maori_port: 5002
  german_port: 5003
  buffer_size: 2048
logging:
  level: "debug"
  format: "json"
  output: "stderr"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.EnglishPort != 5001 || cfg.Server.MaoriPort != 5002 || cfg.Server.GermanPort != 5003 {
		t.Errorf("ports not loaded: %+v", cfg.Server)
	}
	if cfg.Server.BufferSize != 2048 {
		t.Errorf("expected buffer_size 2048, got %d", cfg.Server.BufferSize)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Sections absent from the file keep their defaults.
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.HTTP.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

func TestLoadInvalidPorts(t *testing.T) {
	content := `
server:
  bind_address: "127.0.0.1"
  english_port: 80
  maori_port: 5002
  german_port: 5003
  buffer_size: 1024
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Errorf("expected validation error for out-of-range port")
	}
}
