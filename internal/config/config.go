// Package config provides configuration management for the keyring.
package config

import (
	"os"
	"path/filepath"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/pkg/vaulterr"
	"gopkg.in/yaml.v3"
)

// Config represents the recognized configuration options. Only these
// top-level keys are accepted; any other top-level key in a loaded file is
// rejected. Unknown keys nested under argon2 or logging are ignored.
type Config struct {
	Home            string        `yaml:"home"`
	AutoLockMinutes float64       `yaml:"auto_lock_minutes"`
	Argon2          Argon2Config  `yaml:"argon2"`
	DefaultChain    chainkit.ID   `yaml:"default_chain"`
	Logging         LoggingConfig `yaml:"logging"`
}

// Argon2Config holds the Argon2id cost parameters used by vault crypto.
type Argon2Config struct {
	MemoryKiB   uint32 `yaml:"memory_kib"`
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

var recognizedKeys = map[string]bool{
	"home": true, "auto_lock_minutes": true, "argon2": true,
	"default_chain": true, "logging": true,
}

// Defaults returns the default configuration, per the recognized option
// list: auto_lock_minutes=15, argon2_memory_kib=65536, argon2_iterations=3,
// argon2_parallelism=1, default_chain=Solana.
func Defaults() *Config {
	return &Config{
		Home:            DefaultHome(),
		AutoLockMinutes: 15,
		Argon2: Argon2Config{
			MemoryKiB:   65536,
			Iterations:  3,
			Parallelism: 1,
		},
		DefaultChain: chainkit.Solana,
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.duskvault/duskvault.log",
		},
	}
}

// Load reads configuration from the specified file, rejecting unknown
// top-level keys.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	for key := range raw {
		if !recognizedKeys[key] {
			return nil, vaulterr.New(vaulterr.KindUnknownConfigKey, "unknown config key %q", key)
		}
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if !chainkit.Known(cfg.DefaultChain) {
		return nil, vaulterr.New(vaulterr.KindUnknownConfigKey, "unknown default_chain %q", cfg.DefaultChain)
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// DefaultHome returns the default duskvault home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".duskvault"
	}
	return filepath.Join(home, ".duskvault")
}
