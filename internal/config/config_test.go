package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noGit(string) (string, error) { return "", errors.New("not a git repository") }

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve(
		WithGetwd(func() (string, error) { return dir, nil }),
		WithGitTopLevel(noGit),
		WithEnv(env(nil)),
	)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Workspace)
	assert.Equal(t, dir, cfg.Root)
	assert.Equal(t, ModeAO, cfg.Mode)
	assert.False(t, cfg.Notify)
	assert.Nil(t, cfg.SettingsOverlay)
	assert.Equal(t, filepath.Join(dir, ".claude", "settings.json"), cfg.SettingsPath())
	assert.Equal(t, filepath.Join(dir, ".claude", "forge", "hooks"), cfg.HooksDir())
	assert.Equal(t, filepath.Join(dir, "docs", "forge"), cfg.DocsDir())
}

func TestResolvePrefersGitTopLevel(t *testing.T) {
	top := t.TempDir()
	sub := filepath.Join(top, "pkg", "deep")

	var asked string
	cfg, err := Resolve(
		WithWorkspace(sub),
		WithGitTopLevel(func(dir string) (string, error) {
			asked = dir
			return top + "/", nil
		}),
		WithEnv(env(nil)),
	)
	require.NoError(t, err)

	assert.Equal(t, sub, asked)
	assert.Equal(t, sub, cfg.Workspace)
	assert.Equal(t, top, cfg.Root)
}

func TestResolveMode(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		envMode  string
		fileMode string
		want     Mode
		wantErr  bool
	}{
		{name: "default is ao", want: ModeAO},
		{name: "env selects standalone", envMode: "standalone", want: ModeStandalone},
		{name: "flag beats env", flag: "ao", envMode: "standalone", want: ModeAO},
		{name: "file used without flag or env", fileMode: "standalone", want: ModeStandalone},
		{name: "env beats file", envMode: "AO", fileMode: "standalone", want: ModeAO},
		{name: "invalid flag", flag: "cloud", wantErr: true},
		{name: "invalid env", envMode: "both", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.fileMode != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, FileConfigName), []byte("mode: "+tt.fileMode+"\n"), 0o644))
			}

			cfg, err := Resolve(
				WithWorkspace(dir),
				WithMode(tt.flag),
				WithGitTopLevel(noGit),
				WithEnv(env(map[string]string{ModeEnvVar: tt.envMode})),
			)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Mode)
		})
	}
}

func TestResolveReadsFileConfig(t *testing.T) {
	dir := t.TempDir()
	content := `
notify: true
settings:
  env:
    FORGE_STRICT: "1"
  permissions:
    deny: ["Read(./.env)"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileConfigName), []byte(content), 0o644))

	fixed := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	cfg, err := Resolve(
		WithWorkspace(dir),
		WithGitTopLevel(noGit),
		WithEnv(env(nil)),
		WithClock(func() time.Time { return fixed }),
	)
	require.NoError(t, err)

	assert.True(t, cfg.Notify)
	assert.Equal(t, fixed, cfg.Now())
	require.NotNil(t, cfg.SettingsOverlay)
	assert.Equal(t, []string{"env", "permissions"}, cfg.SettingsOverlay.Keys())
}

func TestResolveRejectsBadFileConfig(t *testing.T) {
	tests := map[string]string{
		"invalid yaml":        "mode: [unterminated\n",
		"settings not a map":  "settings: [1, 2]\n",
		"non-finite settings": "settings:\n  ratio: .nan\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileConfigName), []byte(content), 0o644))

			_, err := Resolve(WithWorkspace(dir), WithGitTopLevel(noGit), WithEnv(env(nil)))
			assert.Error(t, err)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Standalone ")
	require.NoError(t, err)
	assert.Equal(t, ModeStandalone, m)

	_, err = ParseMode("")
	assert.ErrorIs(t, err, ErrInvalidMode)
}
