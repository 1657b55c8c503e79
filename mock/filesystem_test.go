package mock_test

import (
	"testing"

	"github.com/fwojciec/pagemirror"
	"github.com/fwojciec/pagemirror/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSystem_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where FileSystem is expected
	var _ pagemirror.FileSystem = &mock.FileSystem{}
}

func TestFileSystem_WriteFile(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteFileFn", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		var gotData []byte
		fs := &mock.FileSystem{
			WriteFileFn: func(path string, data []byte) error {
				gotPath = path
				gotData = data
				return nil
			},
		}

		err := fs.WriteFile("/out/example-com.html", []byte("<html></html>"))

		require.NoError(t, err)
		assert.Equal(t, "/out/example-com.html", gotPath)
		assert.Equal(t, []byte("<html></html>"), gotData)
	})
}

func TestFileSystem_CreateFile(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CreateFileFn", func(t *testing.T) {
		t.Parallel()

		var gotPath string
		fs := &mock.FileSystem{
			CreateFileFn: func(path string, _ []byte) error {
				gotPath = path
				return pagemirror.Errorf(pagemirror.ECONFLICT, "exists")
			},
		}

		err := fs.CreateFile("/out/example-com.html", []byte("<html></html>"))

		assert.Equal(t, pagemirror.ECONFLICT, pagemirror.ErrorCode(err))
		assert.Equal(t, "/out/example-com.html", gotPath)
	})
}
