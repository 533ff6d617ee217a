package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allcode-tools/allcode/internal/logging"
)

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringP("dir", "C", ".", "")
	fs.Bool("atomic", false, "")
	fs.Bool("contain", false, "")
	fs.BoolP("dry-run", "n", false, "")
	fs.Bool("hash", false, "")
	fs.BoolP("verbose", "v", false, "")
	fs.BoolP("quiet", "q", false, "")
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, logging.Normal, cfg.LogLevel())
}

func TestLoadFlags(t *testing.T) {
	cfg, err := Load(testFlags(t, "-C", "out", "--atomic", "-n", "-v"), "")
	require.NoError(t, err)
	assert.Equal(t, &Config{
		Dir:     "out",
		Atomic:  true,
		DryRun:  true,
		Verbose: true,
	}, cfg)
	assert.Equal(t, logging.Verbose, cfg.LogLevel())
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("ALLCODE_DRY_RUN", "true")
	t.Setenv("ALLCODE_DIR", "from-env")
	t.Setenv("ALLCODE_QUIET", "1")

	cfg, err := Load(testFlags(t), "")
	require.NoError(t, err)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "from-env", cfg.Dir)
	assert.Equal(t, logging.Quiet, cfg.LogLevel())

	// Flags override the environment.
	cfg, err = Load(testFlags(t, "--dir", "from-flag"), "")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", cfg.Dir)
}

func TestLoadFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "allcode.yaml")
	require.NoError(t, os.WriteFile(file, []byte("dir: src\ncontain: true\nhash: true\n"), 0o666))

	cfg, err := Load(testFlags(t), file)
	require.NoError(t, err)
	assert.Equal(t, "src", cfg.Dir)
	assert.True(t, cfg.Contain)
	assert.True(t, cfg.Hash)
	assert.False(t, cfg.Atomic)

	cfg, err = Load(testFlags(t, "-C", "elsewhere"), file)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Dir)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
