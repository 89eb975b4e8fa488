// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the isnad workspace configuration, loaded from an
// optional .isnad/config.toml in the workspace root.
type Config struct {
	Board     BoardConfig     `toml:"board"`
	Server    ServerConfig    `toml:"server"`
	Signaling SignalingConfig `toml:"signaling"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// BoardConfig contains defaults for directives that the HTTP board UI
// (`isnad serve`) writes to control.jsonl on a human's behalf. The
// append-directive command does not read it; it uses its own --author flag.
type BoardConfig struct {
	Author string `toml:"author"` // default: "human"
	Via    string `toml:"via"`    // default: "board-ui"
}

// ServerConfig contains defaults for `isnad serve`.
type ServerConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	NoOpen bool   `toml:"no_open"`
}

// SignalingConfig contains defaults for the WebSocket signaling relay.
type SignalingConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	TTLSeconds int    `toml:"ttl_seconds"`
}

// TelemetryConfig controls optional OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

// New returns a config populated with the same defaults the CLI flags use.
func New() *Config {
	return &Config{
		Board: BoardConfig{
			Author: "human",
			Via:    "board-ui",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Signaling: SignalingConfig{
			Host:       "127.0.0.1",
			Port:       9002,
			TTLSeconds: 3600,
		},
	}
}

// Default returns a default configuration.
func Default() *Config {
	return New()
}

// LoadFile loads configuration from a TOML file, merging onto defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadWorkspace loads .isnad/config.toml under root if present, otherwise
// returns defaults. A missing file is not an error.
func LoadWorkspace(root string) (*Config, error) {
	path := filepath.Join(root, ".isnad", "config.toml")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return LoadFile(path)
}
