package pagemirror

import (
	"net/url"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// PageTarget identifies one page to mirror and where to put it.
type PageTarget struct {
	SourceURL string `validate:"required,http_url"`

	// OutputDir is the directory receiving the document and its assets
	// directory. Empty means the current working directory.
	OutputDir string
}

// Validate returns an error if the target contains invalid fields.
func (t *PageTarget) Validate() error {
	if err := validate.Struct(t); err != nil {
		return Errorf(EINVALID, "source URL must be an absolute http(s) URL: %q", t.SourceURL)
	}
	return nil
}

// ResolvedPaths holds every local path derived from a PageTarget.
// DocumentPath never equals AssetsDirPath.
type ResolvedPaths struct {
	OutputDir     string
	DocumentPath  string
	AssetsDirName string
	AssetsDirPath string
}

// ResolvePaths validates the target and computes its local paths.
// Relative output directories are resolved against the working directory.
func ResolvePaths(target *PageTarget) (*ResolvedPaths, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	u, err := url.Parse(target.SourceURL)
	if err != nil {
		return nil, Errorf(EINVALID, "invalid source URL: %v", err)
	}

	dir := target.OutputDir
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, WrapError(EFILESYSTEM, err, "cannot resolve output directory %q", dir)
	}
	if _, err := SanitizeOutputDir(abs); err != nil {
		return nil, err
	}

	src := SlugSource(u)
	paths := &ResolvedPaths{
		OutputDir:     abs,
		DocumentPath:  filepath.Join(abs, FileName(src, DefaultExtension)),
		AssetsDirName: DirName(src, DefaultDirSuffix),
	}
	paths.AssetsDirPath = filepath.Join(abs, paths.AssetsDirName)

	if paths.DocumentPath == paths.AssetsDirPath {
		return nil, Errorf(EINVALID, "document and assets directory both map to %q", paths.DocumentPath)
	}
	return paths, nil
}
