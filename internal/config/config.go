// Package config loads clprng settings from a config file and the
// environment. Zero values mean "not set" and leave the built-in defaults
// in place.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/samcharles93/clprng/internal/prng"
	"github.com/samcharles93/clprng/internal/stream"
)

type Config struct {
	Device        string `json:"device" yaml:"device" toml:"device"`
	DeviceIndex   int    `json:"device_index" yaml:"device_index" toml:"device_index"`
	MemoryLimitMB int64  `json:"memory_limit_mb" yaml:"memory_limit_mb" toml:"memory_limit_mb"`

	Algorithm      string  `json:"algorithm" yaml:"algorithm" toml:"algorithm"`
	Precision      string  `json:"precision" yaml:"precision" toml:"precision"`
	Seed           *uint64 `json:"seed" yaml:"seed" toml:"seed"`
	WorkgroupSize  int     `json:"workgroup_size" yaml:"workgroup_size" toml:"workgroup_size"`
	WorkgroupCount int     `json:"workgroup_count" yaml:"workgroup_count" toml:"workgroup_count"`
	BufferEntries  int     `json:"buffer_entries" yaml:"buffer_entries" toml:"buffer_entries"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format"`

	ServerAddress string  `json:"server_address" yaml:"server_address" toml:"server_address"`
	RateLimit     float64 `json:"rate_limit" yaml:"rate_limit" toml:"rate_limit"`
	RateBurst     int     `json:"rate_burst" yaml:"rate_burst" toml:"rate_burst"`
	MaxStreams    int     `json:"max_streams" yaml:"max_streams" toml:"max_streams"`
}

// DefaultPath is ~/.config/clprng/config.yaml or its platform equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "clprng", "config.yaml")
}

// Load reads a config file, choosing the decoder from its extension:
// .yaml/.yml, .json or .toml.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDefault reads DefaultPath. A missing file yields a zero Config.
func LoadDefault() (Config, error) {
	path := DefaultPath()
	if path == "" {
		return Config{}, nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, nil
	}
	return cfg, err
}

// Stream converts the generator settings into a stream configuration.
func (c Config) Stream() (stream.Config, error) {
	sc := stream.DefaultConfig()
	if c.Precision != "" {
		p, err := prng.ParsePrecision(c.Precision)
		if err != nil {
			return sc, err
		}
		sc.Precision = p
	}
	if c.Seed != nil {
		sc.Seed = *c.Seed
	}
	if c.WorkgroupSize > 0 {
		sc.Launch.WorkgroupSize = c.WorkgroupSize
	}
	if c.WorkgroupCount > 0 {
		sc.Launch.WorkgroupCount = c.WorkgroupCount
	}
	if c.BufferEntries > 0 {
		sc.BufferEntries = c.BufferEntries
	}
	return sc, nil
}

// MemoryLimit is MemoryLimitMB in bytes, or 0 when unset.
func (c Config) MemoryLimit() int64 {
	if c.MemoryLimitMB <= 0 {
		return 0
	}
	return c.MemoryLimitMB << 20
}
