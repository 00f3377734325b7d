//go:build linux

package fsutil

import (
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// limitFileSize caps the size of files the process may write.
func limitFileSize(t *testing.T, max uint64) {
	t.Helper()
	var old syscall.Rlimit
	require.NoError(t, syscall.Getrlimit(syscall.RLIMIT_FSIZE, &old))
	require.NoError(t, syscall.Setrlimit(syscall.RLIMIT_FSIZE, &syscall.Rlimit{Cur: max, Max: old.Max}))
	t.Cleanup(func() {
		syscall.Setrlimit(syscall.RLIMIT_FSIZE, &old)
	})
}

func TestCreateExclusiveRemovesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "active-workflow.md")

	limitFileSize(t, 4)
	created, err := CreateExclusive(path, []byte("workflow: forge\n"), 0o644)
	require.Error(t, err)
	assert.False(t, created)
	assert.NoFileExists(t, path)
}
