package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sfckit/sfcc/internal/cmdtypes"
	oerrors "github.com/sfckit/sfcc/internal/errors"
)

func run(t *testing.T, c *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	c.SetOut(&out)
	c.SetErr(&errOut)
	c.SetArgs(args)
	err := c.Execute()
	return out.String(), errOut.String(), err
}

func TestNewConfigCmd(t *testing.T) {
	c := NewConfigCmd(&cmdtypes.GlobalConfig{})

	assert.Equal(t, "config", c.Use)
	assert.Len(t, c.Commands(), 2)
	assert.NotNil(t, NewConfigInitCmd(&cmdtypes.GlobalConfig{}).Flags().Lookup("force"))
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("SFCC_CONFIG", "")

	out, _, err := run(t, NewConfigInitCmd(&cmdtypes.GlobalConfig{}))
	require.NoError(t, err)

	path := filepath.Join(home, ".sfcc", "config.yaml")
	assert.Contains(t, out, path)

	dirInfo, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# sfcc configuration")
	assert.Contains(t, string(data), "outDir: dist")

	t.Run("existing file", func(t *testing.T) {
		_, _, err := run(t, NewConfigInitCmd(&cmdtypes.GlobalConfig{}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--force")
		assert.Equal(t, oerrors.ExitGeneralError, oerrors.ExitCodeFromError(err))
	})

	t.Run("force", func(t *testing.T) {
		_, _, err := run(t, NewConfigInitCmd(&cmdtypes.GlobalConfig{}), "--force")
		assert.NoError(t, err)
	})

	t.Run("initialized file is valid", func(t *testing.T) {
		out, _, err := run(t, NewConfigVetCmd(&cmdtypes.GlobalConfig{}))
		require.NoError(t, err)
		assert.Contains(t, out, "Config file is valid")
	})
}

func TestConfigInit_ConfigFlag(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "sfcc.yaml")

	_, _, err := run(t, NewConfigInitCmd(&cmdtypes.GlobalConfig{ConfigFlag: path}))
	require.NoError(t, err)
	assert.FileExists(t, path)
}

func TestConfigVet(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
		return p
	}

	t.Run("missing file", func(t *testing.T) {
		_, _, err := run(t, NewConfigVetCmd(&cmdtypes.GlobalConfig{ConfigFlag: filepath.Join(dir, "none.yaml")}))
		require.Error(t, err)
		assert.Equal(t, oerrors.ExitNotFound, oerrors.ExitCodeFromError(err))
	})

	t.Run("valid", func(t *testing.T) {
		p := write("ok.yaml", "root: src\ndev:\n  addr: \":8080\"\n")
		out, _, err := run(t, NewConfigVetCmd(&cmdtypes.GlobalConfig{ConfigFlag: p}))
		require.NoError(t, err)
		assert.Contains(t, out, p)
	})

	t.Run("unknown key", func(t *testing.T) {
		p := write("unknown.yaml", "rot: src\n")
		_, errOut, err := run(t, NewConfigVetCmd(&cmdtypes.GlobalConfig{ConfigFlag: p}))
		require.Error(t, err)
		assert.Equal(t, oerrors.ExitCompileError, oerrors.ExitCodeFromError(err))
		assert.Contains(t, errOut, "config validation failed")
		assert.Contains(t, errOut, "rot")
	})

	t.Run("bad value", func(t *testing.T) {
		p := write("bad.yaml", "dev:\n  cacheSize: 0\n")
		_, errOut, err := run(t, NewConfigVetCmd(&cmdtypes.GlobalConfig{ConfigFlag: p}))
		require.Error(t, err)
		assert.Contains(t, errOut, "dev.cacheSize")
	})
}
