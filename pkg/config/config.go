// Package config provides configuration management for the meshfec CLI tool
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/Davincible/meshfec/pkg/chunk"
	"github.com/Davincible/meshfec/pkg/gf256"
	"github.com/Davincible/meshfec/pkg/reedsolomon"
	"github.com/Davincible/meshfec/pkg/storage"
)

var ErrInvalidConfig = errors.New("config: invalid configuration")

// Output formats understood by the encode and decode commands.
const (
	FormatBase64 = "base64"
	FormatHex    = "hex"
	FormatRaw    = "raw"
)

// Config represents the main configuration structure
type Config struct {
	Codec    CodecSettings      `yaml:"codec" json:"codec"`
	Chunking ChunkingSettings   `yaml:"chunking" json:"chunking"`
	Output   OutputSettings     `yaml:"output" json:"output"`
	Profiles map[string]Profile `yaml:"profiles,omitempty" json:"profiles,omitempty"`
}

// CodecSettings selects the Reed-Solomon code
type CodecSettings struct {
	N                   int    `yaml:"n" json:"n"`                                       // Default: 255
	K                   int    `yaml:"k" json:"k"`                                       // Default: 223
	PrimitivePolynomial uint16 `yaml:"primitive_polynomial" json:"primitive_polynomial"` // Default: 0x11D
}

// ChunkingSettings controls how payloads are framed
type ChunkingSettings struct {
	ChunkSize   int    `yaml:"chunk_size" json:"chunk_size"`   // 0 means k
	Compression string `yaml:"compression" json:"compression"` // none, lz4, zstd
}

// OutputSettings contains CLI output settings
type OutputSettings struct {
	Format   string `yaml:"format" json:"format"`       // base64, hex, raw
	UseColor bool   `yaml:"use_color" json:"use_color"` // Enable colored output
}

// Profile is a named codec and chunking preset, typically one per radio
// link type.
type Profile struct {
	Description string           `yaml:"description" json:"description"`
	Codec       CodecSettings    `yaml:"codec" json:"codec"`
	Chunking    ChunkingSettings `yaml:"chunking" json:"chunking"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Codec: CodecSettings{
			N:                   reedsolomon.DefaultN,
			K:                   reedsolomon.DefaultK,
			PrimitivePolynomial: gf256.DefaultPolynomial,
		},
		Chunking: ChunkingSettings{
			ChunkSize:   0,
			Compression: chunk.CompressionNone.String(),
		},
		Output: OutputSettings{
			Format:   FormatBase64,
			UseColor: true,
		},
		Profiles: map[string]Profile{
			"lora": {
				Description: "Short LoRa frames, t=8",
				Codec:       CodecSettings{N: 64, K: 48, PrimitivePolynomial: gf256.DefaultPolynomial},
				Chunking:    ChunkingSettings{Compression: chunk.CompressionZstd.String()},
			},
			"robust": {
				Description: "Half the codeword is parity, t=64",
				Codec:       CodecSettings{N: 255, K: 127, PrimitivePolynomial: gf256.DefaultPolynomial},
				Chunking:    ChunkingSettings{Compression: chunk.CompressionNone.String()},
			},
		},
	}
}

// Validate checks that the codec, chunking and output sections describe a
// usable pipeline.
func (c *Config) Validate() error {
	if err := c.CodecConfig().Validate(); err != nil {
		return fmt.Errorf("%w: codec: %w", ErrInvalidConfig, err)
	}
	if c.Chunking.ChunkSize < 0 || c.Chunking.ChunkSize > c.Codec.K {
		return fmt.Errorf("%w: chunking: chunk_size %d must be between 0 and k=%d",
			ErrInvalidConfig, c.Chunking.ChunkSize, c.Codec.K)
	}
	if _, err := chunk.ParseCompressionTag(c.Chunking.Compression); err != nil {
		return fmt.Errorf("%w: chunking: %w", ErrInvalidConfig, err)
	}
	switch c.Output.Format {
	case FormatBase64, FormatHex, FormatRaw:
	default:
		return fmt.Errorf("%w: output: unknown format %q", ErrInvalidConfig, c.Output.Format)
	}
	return nil
}

// CodecConfig converts the codec section for reedsolomon.New.
func (c *Config) CodecConfig() reedsolomon.Config {
	return reedsolomon.Config{
		N:             c.Codec.N,
		K:             c.Codec.K,
		PrimitivePoly: c.Codec.PrimitivePolynomial,
	}
}

// ChunkOptions converts the chunking section for chunk.NewManager.
func (c *Config) ChunkOptions(logger *slog.Logger) (chunk.Options, error) {
	tag, err := chunk.ParseCompressionTag(c.Chunking.Compression)
	if err != nil {
		return chunk.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return chunk.Options{
		ChunkSize:   c.Chunking.ChunkSize,
		Compression: tag,
		Logger:      logger,
	}, nil
}

// WithProfile returns a copy of the configuration with the named profile's
// codec and chunking sections applied.
func (c *Config) WithProfile(name string) (*Config, error) {
	profile, exists := c.Profiles[name]
	if !exists {
		return nil, fmt.Errorf("profile '%s' not found", name)
	}

	out := *c
	out.Codec = profile.Codec
	if out.Codec.PrimitivePolynomial == 0 {
		out.Codec.PrimitivePolynomial = c.Codec.PrimitivePolynomial
	}
	out.Chunking = profile.Chunking
	return &out, nil
}

// ProfileNames returns the configured profile names in sorted order.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ConfigManager manages configuration loading and saving
type ConfigManager struct {
	config     *Config
	configPath string
}

// NewConfigManager creates a configuration manager for the default path.
// A missing file yields the default configuration; nothing is written
// until SaveConfig is called.
func NewConfigManager() (*ConfigManager, error) {
	configPath, err := ResolvePath()
	if err != nil {
		return nil, err
	}
	return NewConfigManagerAt(configPath)
}

// NewConfigManagerWith returns a manager for configPath holding cfg. The
// file is neither read nor validated, so a broken file can be replaced.
func NewConfigManagerWith(configPath string, cfg *Config) *ConfigManager {
	return &ConfigManager{config: cfg, configPath: configPath}
}

// NewConfigManagerAt is NewConfigManager for an explicit file path.
func NewConfigManagerAt(configPath string) (*ConfigManager, error) {
	cm := &ConfigManager{configPath: configPath}
	if err := cm.LoadConfig(); err != nil {
		return nil, err
	}
	return cm, nil
}

// LoadConfig loads the configuration from disk. Keys absent from the file
// keep their default values.
func (cm *ConfigManager) LoadConfig() error {
	config := DefaultConfig()

	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cm.config = config
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", cm.configPath, err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", cm.configPath, err)
	}

	cm.config = config
	return nil
}

// SaveConfig saves the configuration to disk
func (cm *ConfigManager) SaveConfig() error {
	if err := cm.config.Validate(); err != nil {
		return err
	}

	data, err := yaml.Marshal(cm.config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := storage.NewFileStorage(cm.configPath, 0600).Save(data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// GetConfig returns the current configuration
func (cm *ConfigManager) GetConfig() *Config {
	return cm.config
}

// SetConfig updates the configuration
func (cm *ConfigManager) SetConfig(config *Config) {
	cm.config = config
}

// Path returns the file the manager reads and writes.
func (cm *ConfigManager) Path() string {
	return cm.configPath
}

// ResolvePath returns the default configuration file path: MESHFEC_CONFIG,
// then $XDG_CONFIG_HOME/meshfec/config.yaml, then ~/.config/meshfec/config.yaml.
func ResolvePath() (string, error) {
	// Check for custom config path
	if customPath := os.Getenv("MESHFEC_CONFIG"); customPath != "" {
		return customPath, nil
	}

	// Use XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "meshfec", "config.yaml"), nil
	}

	// Default to ~/.config/meshfec/config.yaml
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "meshfec", "config.yaml"), nil
}
