package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/meshfec/pkg/chunk"
	"github.com/Davincible/meshfec/pkg/reedsolomon"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, reedsolomon.DefaultConfig(), cfg.CodecConfig())

	opts, err := cfg.ChunkOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, opts.ChunkSize)
	assert.Equal(t, chunk.CompressionNone, opts.Compression)

	for _, name := range cfg.ProfileNames() {
		profiled, err := cfg.WithProfile(name)
		require.NoError(t, err)
		assert.NoError(t, profiled.Validate(), name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "k exceeds n", mutate: func(c *Config) { c.Codec.K = 256 }},
		{name: "odd parity", mutate: func(c *Config) { c.Codec.K = 222 }},
		{name: "n too large", mutate: func(c *Config) { c.Codec.N = 300 }},
		{name: "chunk size above k", mutate: func(c *Config) { c.Chunking.ChunkSize = 224 }},
		{name: "negative chunk size", mutate: func(c *Config) { c.Chunking.ChunkSize = -1 }},
		{name: "unknown compression", mutate: func(c *Config) { c.Chunking.Compression = "brotli" }},
		{name: "unknown format", mutate: func(c *Config) { c.Output.Format = "base32" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestWithProfile(t *testing.T) {
	cfg := DefaultConfig()

	lora, err := cfg.WithProfile("lora")
	require.NoError(t, err)
	assert.Equal(t, 64, lora.Codec.N)
	assert.Equal(t, 48, lora.Codec.K)
	assert.Equal(t, "zstd", lora.Chunking.Compression)
	assert.Equal(t, cfg.Output, lora.Output)

	// The receiver is left untouched.
	assert.Equal(t, 255, cfg.Codec.N)

	_, err = cfg.WithProfile("missing")
	assert.Error(t, err)
}

func TestConfigManagerMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshfec", "config.yaml")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cm.GetConfig())
	assert.Equal(t, path, cm.Path())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "loading must not create the file")
}

func TestConfigManagerSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meshfec", "config.yaml")

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	cfg.Codec.N, cfg.Codec.K = 100, 80
	cfg.Chunking.Compression = "lz4"
	cfg.Output.Format = FormatHex
	cm.SetConfig(cfg)
	require.NoError(t, cm.SaveConfig())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, reloaded.GetConfig())
}

func TestConfigManagerPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
codec:
  n: 40
  k: 20
  primitive_polynomial: 0x11D
chunking:
  compression: zstd
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0600))

	cm, err := NewConfigManagerAt(path)
	require.NoError(t, err)

	cfg := cm.GetConfig()
	assert.Equal(t, reedsolomon.Config{N: 40, K: 20, PrimitivePoly: 0x11D}, cfg.CodecConfig())
	assert.Equal(t, "zstd", cfg.Chunking.Compression)
	assert.Equal(t, FormatBase64, cfg.Output.Format, "unset keys keep defaults")
	assert.True(t, cfg.Output.UseColor)
}

func TestConfigManagerRejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{name: "Malformed YAML", content: "codec: [n: 1"},
		{name: "Invalid code", content: "codec:\n  n: 10\n  k: 20\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, err := NewConfigManagerAt(path)
			assert.Error(t, err)
		})
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("MESHFEC_CONFIG", "/tmp/custom.yaml")
	path, err := ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.yaml", path)

	t.Setenv("MESHFEC_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err = ResolvePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "meshfec", "config.yaml"), path)
}

func TestConfigManagerWithReplacesInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("codec: {n: 255, k: 222}\n"), 0600))

	_, err := NewConfigManagerAt(path)
	require.ErrorIs(t, err, ErrInvalidConfig)

	cm := NewConfigManagerWith(path, DefaultConfig())
	assert.Equal(t, path, cm.Path())
	require.NoError(t, cm.SaveConfig())

	reloaded, err := NewConfigManagerAt(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), reloaded.GetConfig())
}
