package mock

import "github.com/fwojciec/pagemirror"

var _ pagemirror.FileSystem = (*FileSystem)(nil)

// FileSystem is a mock implementation of pagemirror.FileSystem.
type FileSystem struct {
	MkdirAllFn   func(path string) error
	WriteFileFn  func(path string, data []byte) error
	CreateFileFn func(path string, data []byte) error
	ExistsFn     func(path string) (bool, error)
	RemoveAllFn  func(path string) error
}

func (s *FileSystem) MkdirAll(path string) error {
	return s.MkdirAllFn(path)
}

func (s *FileSystem) WriteFile(path string, data []byte) error {
	return s.WriteFileFn(path, data)
}

func (s *FileSystem) CreateFile(path string, data []byte) error {
	return s.CreateFileFn(path, data)
}

func (s *FileSystem) Exists(path string) (bool, error) {
	return s.ExistsFn(path)
}

func (s *FileSystem) RemoveAll(path string) error {
	return s.RemoveAllFn(path)
}
