// Package config loads and validates the service configuration from a YAML
// file. Port numbers are checked against the range the DT protocol allows
// before any socket is opened.
package config
