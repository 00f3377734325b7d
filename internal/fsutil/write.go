// Package fsutil holds the file writing primitives shared by the settings
// and scaffold packages.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"
)

// WriteFileAtomic writes data to path through a temporary file that is
// synced and renamed into place, so readers see either the old or the new
// content. An existing file keeps its permissions; a new one gets perm.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	pending, err := renameio.NewPendingFile(path,
		renameio.WithPermissions(perm),
		renameio.WithExistingPermissions(),
	)
	if err != nil {
		return fmt.Errorf("create pending file for %s: %w", path, err)
	}
	defer pending.Cleanup()

	if _, err := pending.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// CreateExclusive writes data to path only if nothing exists there yet. It
// reports whether the file was created. A failed write removes the file
// again so a later call can retry.
func CreateExclusive(path string, data []byte, perm os.FileMode) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, err
	}

	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}
