package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"hooks/_lib/common.sh":                 {Data: []byte("# lib\n")},
		"hooks/SessionStart/forge-init.sh":     {Data: []byte("#!/bin/sh\necho init\n")},
		"hooks/PreToolUse/block-env-edits.sh":  {Data: []byte("#!/bin/sh\n")},
		"hooks/PreToolUse/nested/helper.sh":    {Data: []byte("#!/bin/sh\n")},
		"integrations/agent-orchestrator/a.md": {Data: []byte("rules\n")},
	}
}

func TestCopyHookDirs(t *testing.T) {
	dest := t.TempDir()

	n, err := CopyHookDirs(testFS(), "hooks", dest, []string{"_lib", "SessionStart", "PreToolUse", "PreCompact"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, rel := range []string{
		"_lib/common.sh",
		"SessionStart/forge-init.sh",
		"PreToolUse/block-env-edits.sh",
		"PreToolUse/nested/helper.sh",
	} {
		info, err := os.Stat(filepath.Join(dest, rel))
		require.NoError(t, err, rel)
		assert.Equal(t, ScriptPerm, info.Mode().Perm(), rel)
	}
	assert.NoDirExists(t, filepath.Join(dest, "PreCompact"))

	data, err := os.ReadFile(filepath.Join(dest, "SessionStart", "forge-init.sh"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho init\n", string(data))
}

func TestCopyHookDirsRestoresExecutableBit(t *testing.T) {
	dest := t.TempDir()
	script := filepath.Join(dest, "SessionStart", "forge-init.sh")
	require.NoError(t, os.MkdirAll(filepath.Dir(script), 0o755))
	require.NoError(t, os.WriteFile(script, []byte("old"), 0o644))

	_, err := CopyHookDirs(testFS(), "hooks", dest, []string{"SessionStart"}, nil)
	require.NoError(t, err)

	info, err := os.Stat(script)
	require.NoError(t, err)
	assert.Equal(t, ScriptPerm, info.Mode().Perm())
}

type unreadableFS struct {
	fstest.MapFS
	bad string
}

func (f unreadableFS) Open(name string) (fs.File, error) {
	if name == f.bad {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.Open(name)
}

func (f unreadableFS) ReadFile(name string) ([]byte, error) {
	if name == f.bad {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	return f.MapFS.ReadFile(name)
}

func TestCopyHookDirsSkipsUnreadableFiles(t *testing.T) {
	dest := t.TempDir()
	fsys := unreadableFS{MapFS: testFS(), bad: "hooks/PreToolUse/block-env-edits.sh"}

	var skipped []string
	n, err := CopyHookDirs(fsys, "hooks", dest, []string{"SessionStart", "PreToolUse"}, func(src string, err error) {
		assert.ErrorIs(t, err, fs.ErrPermission)
		skipped = append(skipped, src)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"hooks/PreToolUse/block-env-edits.sh"}, skipped)
	assert.NoFileExists(t, filepath.Join(dest, "PreToolUse", "block-env-edits.sh"))
	assert.FileExists(t, filepath.Join(dest, "PreToolUse", "nested", "helper.sh"))
}

func TestCopyFileReportsUnreadableSource(t *testing.T) {
	fsys := unreadableFS{MapFS: testFS(), bad: "integrations/agent-orchestrator/a.md"}
	dest := filepath.Join(t.TempDir(), "a.md")

	ok, err := CopyFile(fsys, "integrations/agent-orchestrator/a.md", dest, 0o644)
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrUnreadable)
	assert.NoFileExists(t, dest)
}

func TestCopyFileSkipsMissingSource(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing.md")

	ok, err := CopyFile(testFS(), "integrations/agent-orchestrator/missing.md", dest, 0o644)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoFileExists(t, dest)

	ok, err = CopyFile(testFS(), "integrations/agent-orchestrator/a.md", dest, 0o644)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.FileExists(t, dest)
}

func TestWriteStateOnlyWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active-workflow.md")

	created, err := WriteState(path)
	require.NoError(t, err)
	assert.True(t, created)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "workflow: forge\nversion: \"0.4.0\"\n")
	assert.Contains(t, string(data), "`/forge:start`")

	require.NoError(t, os.WriteFile(path, []byte("phase: build\n"), 0o644))
	created, err = WriteState(path)
	require.NoError(t, err)
	assert.False(t, created)

	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "phase: build\n", string(data))
}

func TestWriteKnowledge(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs", "forge", "knowledge")
	now := time.Date(2026, 10, 17, 23, 30, 0, 0, time.UTC)

	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risks.md"), []byte("my risks\n"), 0o644))

	created, err := WriteKnowledge(dir, now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"brief.md", "assumptions.md", "decisions.md", "constraints.md", "glossary.md", "traceability.md",
	}, created)

	brief, err := os.ReadFile(filepath.Join(dir, "brief.md"))
	require.NoError(t, err)
	assert.Equal(t, `# Project Brief

High-level project overview, goals, and scope.

## Overview

<!-- Add high-level information here -->

---

*Last updated: 2026-10-17*
`, string(brief))

	risks, err := os.ReadFile(filepath.Join(dir, "risks.md"))
	require.NoError(t, err)
	assert.Equal(t, "my risks\n", string(risks))

	created, err = WriteKnowledge(dir, now)
	require.NoError(t, err)
	assert.Empty(t, created)
}
