package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sho7650/forge-install/internal/cli"
	"github.com/sho7650/forge-install/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cli.NewReporter(&out, &out), io.Discard)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestInstallCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, "--workspace", dir, "--mode", "standalone")
	require.NoError(t, err)
	assert.Contains(t, out, "Installing FORGE (standalone)...")
	assert.Contains(t, out, "FORGE installation complete!")
	assert.FileExists(t, filepath.Join(dir, ".claude", "settings.json"))

	out, err = run(t, "check", "--workspace", dir, "--mode", "standalone")
	require.NoError(t, err)
	assert.Contains(t, out, "FORGE is installed and healthy.")

	out, err = run(t, "uninstall", "--workspace", dir, "--mode", "standalone")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 6 FORGE hook(s)")

	out, err = run(t, "uninstall", "--workspace", dir, "--mode", "standalone")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing to do")
}

func TestInvalidMode(t *testing.T) {
	_, err := run(t, "--workspace", t.TempDir(), "--mode", "cloud")
	assert.ErrorIs(t, err, config.ErrInvalidMode)
}

func TestHelp(t *testing.T) {
	out, err := run(t, "-h")
	require.NoError(t, err)
	assert.Contains(t, out, "--workspace")
	assert.Contains(t, out, "--mode")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "forge-install dev\n", out)
}

func TestRejectsArguments(t *testing.T) {
	_, err := run(t, "somewhere")
	assert.Error(t, err)
	_, statErr := os.Stat("somewhere")
	assert.True(t, os.IsNotExist(statErr))
}
