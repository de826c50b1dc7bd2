package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/chainkit"
	"github.com/duskvault/duskvault/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := config.Defaults()
	cfg.AutoLockMinutes = 30
	cfg.DefaultChain = chainkit.Ethereum
	cfg.Logging.Level = "debug"

	err := config.Save(cfg, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.AutoLockMinutes, loaded.AutoLockMinutes)
	assert.Equal(t, cfg.DefaultChain, loaded.DefaultChain)
	assert.Equal(t, cfg.Logging.Level, loaded.Logging.Level)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.InDelta(t, 15, cfg.AutoLockMinutes, 0)
	assert.Equal(t, uint32(65536), cfg.Argon2.MemoryKiB)
	assert.Equal(t, uint32(3), cfg.Argon2.Iterations)
	assert.Equal(t, uint8(1), cfg.Argon2.Parallelism)
	assert.Equal(t, chainkit.Solana, cfg.DefaultChain)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("home: /tmp/wallet\nmystery_option: true\n"), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery_option")
}

func TestLoad_RejectsUnknownChain(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("default_chain: dogecoin\n"), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dogecoin")
}

func TestSave_CreatesDirectory(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := config.Defaults()
	err := config.Save(cfg, path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	path := config.Path("/home/user/.duskvault")
	assert.Equal(t, "/home/user/.duskvault/config.yaml", path)
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	home := config.DefaultHome()
	assert.Contains(t, home, ".duskvault")
}
