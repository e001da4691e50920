// Package normpath provides Path, the opaque forward-slash, absolute,
// case-preserving path key used throughout the graph, workspace and
// merge-view packages.
package normpath

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Path is an absolute, forward-slash-normalized path. The zero value is not
// valid; construct one with New, FromURL, or Join.
type Path struct {
	slashed string
}

// New normalizes an OS path (absolute or relative) into a Path.
func New(p string) Path {
	abs := p
	if !filepath.IsAbs(p) {
		if wd, err := os.Getwd(); err == nil {
			abs = filepath.Join(wd, p)
		}
	}
	return Path{slashed: filepath.ToSlash(filepath.Clean(abs))}
}

// FromURL decodes a file:// URL into a Path, percent-decoding the path
// component.
func FromURL(u *url.URL) Path {
	decoded, err := url.PathUnescape(u.Path)
	if err != nil {
		decoded = u.Path
	}
	return New(decoded)
}

// String returns the forward-slash path.
func (p Path) String() string { return p.slashed }

// IsZero reports whether p is the uninitialized value.
func (p Path) IsZero() bool { return p.slashed == "" }

// Join appends path elements, normalizing the result to forward slashes.
func (p Path) Join(elems ...string) Path {
	all := append([]string{p.slashed}, elems...)
	joined := path.Join(all...)
	return Path{slashed: joined}
}

// Parent returns the directory containing p, or p itself if p is a root.
func (p Path) Parent() Path {
	return Path{slashed: path.Dir(p.slashed)}
}

// Extension returns the file extension without the leading dot, or "".
func (p Path) Extension() string {
	ext := path.Ext(p.slashed)
	return strings.TrimPrefix(ext, ".")
}

// StripPrefix removes prefix from p, returning the remainder with no
// leading slash. If prefix is not a prefix of p, p is returned unchanged.
func (p Path) StripPrefix(prefix Path) Path {
	if p.slashed == prefix.slashed {
		return Path{}
	}
	base := strings.TrimSuffix(prefix.slashed, "/") + "/"
	if !strings.HasPrefix(p.slashed, base) {
		return p
	}
	return Path{slashed: strings.TrimPrefix(p.slashed, base)}
}

// Exists reports whether the path refers to an existing filesystem entry.
func (p Path) Exists() bool {
	_, err := os.Stat(p.slashed)
	return err == nil
}

// ReadText reads the file contents, normalizing CRLF to LF. Everything
// downstream assumes \n-only newlines.
func (p Path) ReadText() (string, error) {
	b, err := os.ReadFile(p.slashed)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(string(b), "\r\n", "\n"), nil
}
