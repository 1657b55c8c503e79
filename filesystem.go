package pagemirror

// FileSystem is the subset of filesystem operations a mirror run needs.
type FileSystem interface {
	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path string) error

	// WriteFile writes data so that a reader never observes a partial file.
	WriteFile(path string, data []byte) error

	// CreateFile is WriteFile that never replaces an existing file.
	// It returns ECONFLICT when path already exists.
	CreateFile(path string, data []byte) error

	// Exists reports whether anything exists at path.
	Exists(path string) (bool, error)

	// RemoveAll removes path and anything below it.
	RemoveAll(path string) error
}
