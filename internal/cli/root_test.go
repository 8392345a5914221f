package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keypulse/internal/config"
)

func parse(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()
	cmd, opts := newRootCommand("test")
	require.NoError(t, cmd.ParseFlags(args))
	return buildConfig(cmd, opts)
}

func TestBuildConfigSingleKey(t *testing.T) {
	cfg, err := parse(t, "--process", "notepad", "--key", "ctrl+s", "--interval", "500ms")
	require.NoError(t, err)

	assert.Equal(t, "notepad", cfg.ProcessName)
	require.Len(t, cfg.KeySequence, 1)
	assert.Equal(t, "ctrl+s", cfg.KeySequence[0].Key)
	assert.Equal(t, 500*time.Millisecond, cfg.KeySequence[0].IntervalAfter.Std())
	assert.Equal(t, config.ModeSequential, cfg.Mode())
}

func TestBuildConfigSequence(t *testing.T) {
	cfg, err := parse(t, "-p", "game.exe", "--sequence", "r:1000,space:500")
	require.NoError(t, err)

	require.Len(t, cfg.KeySequence, 2)
	assert.Equal(t, "space", cfg.KeySequence[1].Key)
	assert.Empty(t, cfg.IndependentKeys)
}

func TestBuildConfigIndependent(t *testing.T) {
	cfg, err := parse(t, "-p", "game.exe", "--independent-keys", "r:1000;a:5s")
	require.NoError(t, err)

	require.Len(t, cfg.IndependentKeys, 2)
	assert.Equal(t, 5*time.Second, cfg.IndependentKeys[1].Interval.Std())
	assert.Equal(t, config.ModeIndependent, cfg.Mode())
}

func TestBuildConfigRejectsBothModes(t *testing.T) {
	_, err := parse(t, "-p", "x", "--sequence", "r:1000", "--independent-keys", "a:500")
	assert.Error(t, err)

	_, err = parse(t, "-p", "x", "--key", "r", "--sequence", "r:1000")
	assert.Error(t, err)
}

func TestBuildConfigRequiresProcess(t *testing.T) {
	_, err := parse(t, "--key", "r")
	assert.ErrorIs(t, err, config.ErrNoProcess)
}

func TestBuildConfigRequiresKeys(t *testing.T) {
	_, err := parse(t, "-p", "notepad")
	assert.ErrorIs(t, err, config.ErrNoKeys)
}

func TestBuildConfigFileWithOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
		"process_name": "notepad",
		"key_sequence": [{"key": "r", "interval_after": "1s"}],
		"max_retries": 3
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := parse(t, "--config", path, "--max-retries", "7", "--repeat-count", "2")
	require.NoError(t, err)

	assert.Equal(t, "notepad", cfg.ProcessName)
	assert.Equal(t, 7, cfg.MaxRetries)
	assert.Equal(t, 2, cfg.RepeatCount)
	assert.True(t, cfg.LoopSequence)
}

func TestBuildConfigCLIModeReplacesFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
		"process_name": "notepad",
		"independent_keys": [{"key": "r", "interval": "1s"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0644))

	cfg, err := parse(t, "--config", path, "--sequence", "a:100")
	require.NoError(t, err)

	assert.Empty(t, cfg.IndependentKeys)
	require.Len(t, cfg.KeySequence, 1)
	assert.Equal(t, "a", cfg.KeySequence[0].Key)
}

func TestBuildConfigInvalidKey(t *testing.T) {
	_, err := parse(t, "-p", "x", "--key", "bogus")
	assert.Error(t, err)
}

func TestBuildConfigMissingFile(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "nope.json"), "--key", "r", "-p", "x")
	assert.Error(t, err)
}
