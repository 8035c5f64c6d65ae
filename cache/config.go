package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size" yaml:"size"`
	// Associativity (number of ways)
	Associativity int `json:"associativity" yaml:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size" yaml:"block_size"`
}

// DefaultL1IConfig returns default configuration for L1 instruction cache.
// Based on Apple M2 specifications:
// - 192KB per performance core (6-way, 64B line)
func DefaultL1IConfig() Config {
	return Config{
		Size:          192 * 1024, // 192KB
		Associativity: 6,          // 6-way
		BlockSize:     64,         // 64B cache line
	}
}

// DefaultL1DConfig returns default configuration for L1 data cache.
// Based on Apple M2 specifications:
// - 128KB per performance core (8-way, 64B line)
func DefaultL1DConfig() Config {
	return Config{
		Size:          128 * 1024, // 128KB
		Associativity: 8,          // 8-way
		BlockSize:     64,         // 64B cache line
	}
}

// DefaultL2Config returns a per-core L2 configuration.
// The M2's shared 24MB, 16-way, 128B-line L2 has 12288 sets, which cannot be
// indexed by a bit slice of the address, so the per-core variant is used.
func DefaultL2Config() Config {
	return Config{
		Size:          512 * 1024, // 512KB per core
		Associativity: 8,          // 8-way
		BlockSize:     128,        // 128B cache line
	}
}

var presets = map[string]func() Config{
	"l1i": DefaultL1IConfig,
	"l1d": DefaultL1DConfig,
	"l2":  DefaultL2Config,
}

// Preset returns a named default configuration (l1i, l1d or l2).
func Preset(name string) (Config, error) {
	f, ok := presets[strings.ToLower(name)]
	if !ok {
		return Config{}, fmt.Errorf("unknown cache preset %q (have %s)",
			name, strings.Join(PresetNames(), ", "))
	}

	return f(), nil
}

// PresetNames lists the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// LoadConfig loads a Config from a JSON or, for .yaml and .yml files, YAML
// file. Fields missing from the file keep their L1D defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read cache config file: %w", err)
	}

	config := DefaultL1DConfig()
	if isYAML(path) {
		err = yaml.Unmarshal(data, &config)
	} else {
		err = json.Unmarshal(data, &config)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse cache config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// SaveConfig writes a Config to a file, as YAML for .yaml and .yml paths and
// as JSON otherwise.
func (c Config) SaveConfig(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to serialize cache config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a valid geometry.
func (c Config) Validate() error {
	_, err := c.Geometry()
	return err
}

// Geometry derives the geometry of the configured cache.
func (c Config) Geometry() (Geometry, error) {
	return NewGeometry(c.Size, c.Associativity, c.BlockSize)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}

	return false
}
