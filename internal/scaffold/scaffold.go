// Package scaffold creates the FORGE directory tree in a workspace and
// fills it with assets and template documents.
package scaffold

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/sho7650/forge-install/internal/fsutil"
)

// ScriptPerm is applied to every copied hook and helper script.
const ScriptPerm os.FileMode = 0o755

// ErrUnreadable marks a source asset that exists but could not be read.
var ErrUnreadable = errors.New("asset unreadable")

// SkipFunc is called for each source asset that could not be read.
type SkipFunc func(src string, err error)

// EnsureDirs creates each directory and any missing parents.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// CopyFile copies src from fsys to dest and sets perm on the result. A
// missing src is skipped and reported as false. A src that cannot be read
// returns an error wrapping ErrUnreadable and leaves dest untouched.
func CopyFile(fsys fs.FS, src, dest string, perm os.FileMode) (bool, error) {
	data, err := fs.ReadFile(fsys, src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s: %w", ErrUnreadable, src, err)
	}

	if err := fsutil.WriteFileAtomic(dest, data, perm); err != nil {
		return false, err
	}
	if err := os.Chmod(dest, perm); err != nil {
		return false, fmt.Errorf("failed to chmod %s: %w", dest, err)
	}
	return true, nil
}

// CopyTree copies every file below src in fsys into dest, keeping the
// relative layout. Files get perm. It returns the number of files copied;
// a missing src copies nothing. Files and directories that cannot be read
// are passed to skip and left out.
func CopyTree(fsys fs.FS, src, dest string, perm os.FileMode, skip SkipFunc) (int, error) {
	if _, err := fs.Stat(fsys, src); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			skip.call(src, err)
		}
		return 0, nil
	}

	copied := 0
	err := fs.WalkDir(fsys, src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			skip.call(p, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		rel := p[len(src):]
		target := filepath.Join(dest, filepath.FromSlash(rel))

		if d.IsDir() {
			return EnsureDirs(target)
		}
		ok, err := CopyFile(fsys, p, target, perm)
		if errors.Is(err, ErrUnreadable) {
			skip.call(p, err)
			return nil
		}
		if ok {
			copied++
		}
		return err
	})
	return copied, err
}

func (f SkipFunc) call(src string, err error) {
	if f != nil {
		f(src, err)
	}
}

// CopyHookDirs copies each named directory under root in fsys to the same
// name under dest, marking every file executable. Names absent from fsys
// are skipped, and so are unreadable files, which are reported to skip.
func CopyHookDirs(fsys fs.FS, root, dest string, names []string, skip SkipFunc) (int, error) {
	total := 0
	for _, name := range names {
		n, err := CopyTree(fsys, path.Join(root, name), filepath.Join(dest, name), ScriptPerm, skip)
		total += n
		if err != nil {
			return total, fmt.Errorf("failed to install %s hooks: %w", name, err)
		}
	}
	return total, nil
}
