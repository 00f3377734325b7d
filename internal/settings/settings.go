// Package settings reads and writes the Claude settings.json document.
package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sho7650/forge-install/internal/fsutil"
	"github.com/sho7650/forge-install/internal/jsonval"
)

// BackupSuffix is appended to the settings path to name the backup copy.
const BackupSuffix = ".forge-backup"

// Load reads the settings document at path.
//
// A missing file yields an empty document. A file that is not a JSON
// object is reported as a warning and also yields an empty document so a
// reinstall can proceed; the previous content is still on disk until
// Write replaces it. Any other read error is returned.
func Load(path string, log logrus.FieldLogger) (*jsonval.Object, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return jsonval.NewObject(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return jsonval.NewObject(), nil
	}

	doc, err := jsonval.DecodeObject(data)
	if err != nil {
		log.WithError(err).
			WithField("settings_path", path).
			Warnf("Could not parse %s, starting fresh", path)
		return jsonval.NewObject(), nil
	}

	return doc, nil
}

// Write replaces the file at path with doc, formatted with two-space
// indentation. The replacement is atomic: readers see either the old or
// the new document. Existing permissions are kept; new files get 0644.
func Write(path string, doc *jsonval.Object) error {
	data, err := jsonval.MarshalIndent(doc)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// BackupPath returns where Backup stores the copy of path.
func BackupPath(path string) string {
	return path + BackupSuffix
}

// Backup copies the current settings file next to itself. It reports
// whether a backup was written; a missing settings file is not an error.
func Backup(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, RemoveBackup(path)
		}
		return false, err
	}

	if err := fsutil.WriteFileAtomic(BackupPath(path), data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// Restore puts the backup written by Backup back in place. When no backup
// exists the settings file is removed, returning the workspace to the
// state before the first install.
func Restore(path string) error {
	data, err := os.ReadFile(BackupPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		}
		return err
	}

	return fsutil.WriteFileAtomic(path, data, 0o644)
}

// RemoveBackup deletes the backup copy, if any.
func RemoveBackup(path string) error {
	if err := os.Remove(BackupPath(path)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
