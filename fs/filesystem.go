// Package fs provides file-based storage for mirrored pages.
package fs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fwojciec/pagemirror"
)

// Ensure FileSystem implements pagemirror.FileSystem at compile time.
var _ pagemirror.FileSystem = (*FileSystem)(nil)

// FileSystem implements pagemirror.FileSystem on the local disk.
// Files are written to a temporary name in the target directory and renamed
// into place, so a crash never leaves a half-written file under the final name.
type FileSystem struct {
	dirPerm  os.FileMode
	filePerm os.FileMode
}

// NewFileSystem creates a new FileSystem.
func NewFileSystem() *FileSystem {
	return &FileSystem{
		dirPerm:  0755,
		filePerm: 0644,
	}
}

func (s *FileSystem) MkdirAll(path string) error {
	if err := os.MkdirAll(path, s.dirPerm); err != nil {
		return pagemirror.WrapError(pagemirror.EFILESYSTEM, err, "cannot create directory %q", path)
	}
	return nil
}

func (s *FileSystem) WriteFile(path string, data []byte) error {
	if err := writeFileAtomic(path, data, s.filePerm, os.Rename); err != nil {
		return pagemirror.WrapError(pagemirror.EFILESYSTEM, err, "cannot write %q", path)
	}
	return nil
}

// CreateFile publishes the temporary file with a hard link, which fails
// instead of replacing a file that appeared after any earlier existence check.
func (s *FileSystem) CreateFile(path string, data []byte) error {
	err := writeFileAtomic(path, data, s.filePerm, linkNoClobber)
	if errors.Is(err, fs.ErrExist) {
		return pagemirror.Errorf(pagemirror.ECONFLICT, "%s already exists", path)
	}
	if err != nil {
		return pagemirror.WrapError(pagemirror.EFILESYSTEM, err, "cannot write %q", path)
	}
	return nil
}

func (s *FileSystem) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, pagemirror.WrapError(pagemirror.EFILESYSTEM, err, "cannot stat %q", path)
}

func (s *FileSystem) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return pagemirror.WrapError(pagemirror.EFILESYSTEM, err, "cannot remove %q", path)
	}
	return nil
}

// linkNoClobber moves tmp to path unless path exists. Filesystems without
// hard links fall back to an exclusive create of path followed by a rename
// over the empty placeholder.
func linkNoClobber(tmp, path string) error {
	err := os.Link(tmp, path)
	if err == nil {
		_ = os.Remove(tmp)
		return nil
	}
	if errors.Is(err, fs.ErrExist) {
		return err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode, publish func(tmp, path string) error) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure below.
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	if err := publish(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
