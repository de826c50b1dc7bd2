package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskvault/duskvault/internal/config"
	"github.com/duskvault/duskvault/internal/output"
)

func TestRunConfigInit_CreatesFile(t *testing.T) {
	cmd, buf := newTestCommand(t, output.FormatText)
	home := t.TempDir()
	ctx := GetCmdContext(cmd)
	ctx.Cfg = &config.Config{Home: home}

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, buf.String(), "initialized")

	_, err := config.Load(config.Path(home))
	require.NoError(t, err)
}

func TestRunConfigInit_RefusesOverwriteWithoutForce(t *testing.T) {
	cmd, _ := newTestCommand(t, output.FormatText)
	home := t.TempDir()
	ctx := GetCmdContext(cmd)
	ctx.Cfg = &config.Config{Home: home}

	require.NoError(t, runConfigInit(cmd, nil))
	err := runConfigInit(cmd, nil)
	require.Error(t, err)
}

func TestRunConfigInit_ForceOverwrites(t *testing.T) {
	cmd, _ := newTestCommand(t, output.FormatText)
	home := t.TempDir()
	ctx := GetCmdContext(cmd)
	ctx.Cfg = &config.Config{Home: home}

	require.NoError(t, runConfigInit(cmd, nil))

	origForce := configForce
	configForce = true
	defer func() { configForce = origForce }()

	require.NoError(t, runConfigInit(cmd, nil))
}

func TestRunConfigShow_Text(t *testing.T) {
	cmd, buf := newTestCommand(t, output.FormatText)
	ctx := GetCmdContext(cmd)
	ctx.Cfg = config.Defaults()

	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration:")
}

func TestRunConfigPath(t *testing.T) {
	cmd, buf := newTestCommand(t, output.FormatText)
	home := t.TempDir()
	ctx := GetCmdContext(cmd)
	ctx.Cfg = &config.Config{Home: home}

	require.NoError(t, runConfigPath(cmd, nil))
	assert.Contains(t, buf.String(), filepath.Clean(config.Path(home)))
}
