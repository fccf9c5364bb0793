package viper

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type packerSection struct {
	MaxMessageSize int  `mapstructure:"max-message-size"`
	Strict         bool `mapstructure:"strict"`
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("packer:\n  max-message-size: 1024\n  strict: true\nserializer: json\n"), 0o600))

	cfg := New()
	require.NoError(t, cfg.LoadFile(path))

	var p packerSection
	require.NoError(t, cfg.UnmarshalKey("packer", &p))
	assert.Equal(t, 1024, p.MaxMessageSize)
	assert.True(t, p.Strict)
	assert.Equal(t, "json", cfg.GetString("serializer"))
	assert.True(t, cfg.IsSet("packer.strict"))

	assert.Error(t, cfg.LoadFile(filepath.Join(dir, "missing.yaml")))
}

func TestLoadReaderAndDefaults(t *testing.T) {
	cfg := New()
	cfg.SetDefault("serializer", "packer")
	require.NoError(t, cfg.LoadReader("json", strings.NewReader(`{"packer":{"strict":false}}`)))

	assert.Equal(t, "packer", cfg.GetString("serializer"))
	assert.False(t, cfg.IsSet("missing"))

	p := packerSection{MaxMessageSize: 7}
	require.NoError(t, cfg.UnmarshalKey("missing", &p))
	assert.Equal(t, 7, p.MaxMessageSize)
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("DANMU_SERIALIZER", "proto")

	cfg := New()
	require.NoError(t, cfg.LoadReader("yaml", strings.NewReader("serializer: packer\n")))
	assert.Equal(t, "proto", cfg.GetString("serializer"))
}

func TestZeroValueConfig(t *testing.T) {
	var cfg Config
	cfg.SetDefault("serializer", "json")
	assert.Equal(t, "json", cfg.GetString("serializer"))
}
