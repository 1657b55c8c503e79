package pagemirror

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Naming defaults for mirrored files.
const (
	DefaultExtension = ".html"
	DefaultDirSuffix = "_files"
)

const slugSeparator = '-'

// restrictedDirs may never be used as an output directory.
var restrictedDirs = []string{
	"/bin",
	"/boot",
	"/dev",
	"/etc",
	"/lib",
	"/proc",
	"/sbin",
	"/sys",
	"/usr",
}

// FileName maps a URL-derived string to a flat, filesystem-safe file name.
// Example: example.com/blog → example-com-blog.html (with defaultExt ".html").
//
// The mapping is lossy: distinct inputs may share a name, so callers that
// write files must detect collisions themselves.
func FileName(s, defaultExt string) string {
	dir, name, ext := splitPath(s)
	if ext == "" {
		ext = defaultExt
	}
	return slugify(joinSlash(dir, name)) + ext
}

// DirName maps a URL-derived string to a flat, filesystem-safe directory name.
// The extension, if any, is folded into the slug.
// Example: example.com/blog → example-com-blog_files.
func DirName(s, suffix string) string {
	dir, name, ext := splitPath(s)
	return slugify(joinSlash(dir, name)+ext) + suffix
}

// SlugSource returns the host and path of u, the string from which local
// names are derived. An empty path is treated as "/".
func SlugSource(u *url.URL) string {
	p := u.Path
	if p == "" {
		p = "/"
	}
	return u.Host + p
}

// SanitizeOutputDir rejects system directories as output locations.
// All other paths are returned unchanged.
func SanitizeOutputDir(dir string) (string, error) {
	cleaned := filepath.Clean(dir)
	for _, restricted := range restrictedDirs {
		if cleaned == restricted {
			return "", Errorf(ERESTRICTED, "cannot use restricted directory %q", dir)
		}
	}
	return dir, nil
}

// SameOrigin reports whether a and b share scheme, host and port.
// Default ports are made explicit before comparing.
func SameOrigin(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	if !strings.EqualFold(a.Scheme, b.Scheme) {
		return false
	}
	if !strings.EqualFold(a.Hostname(), b.Hostname()) {
		return false
	}
	return effectivePort(a) == effectivePort(b)
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "http":
		return "80"
	case "https":
		return "443"
	}
	return ""
}

// splitPath splits s into directory, base name and extension the way a
// filesystem path is parsed. Only a purely alphanumeric extension following a
// non-empty name is recognized.
func splitPath(s string) (dir, name, ext string) {
	dir, base := "", s
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		dir, base = s[:i], s[i+1:]
	}
	e := path.Ext(base)
	if len(e) > 1 && len(e) < len(base) && isAlnum(e[1:]) {
		return dir, strings.TrimSuffix(base, e), e
	}
	return dir, base, ""
}

func joinSlash(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// slugify replaces every run of non-alphanumeric characters with a single
// separator and trims separators from both ends.
func slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isAlnumByte(c) {
			if pending && b.Len() > 0 {
				b.WriteByte(slugSeparator)
			}
			pending = false
			b.WriteByte(c)
			continue
		}
		pending = true
	}
	if b.Len() == 0 {
		return "index"
	}
	return b.String()
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isAlnumByte(s[i]) {
			return false
		}
	}
	return true
}

func isAlnumByte(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
