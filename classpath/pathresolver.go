package classpath

import (
	"os"
	"path/filepath"
)

// PathResolver canonicalizes path strings: strips redundant "./" components,
// resolves "..", normalizes separators, and (on request) resolves symlinks
// to the OS-canonical absolute form. It is a pure, stateless collaborator —
// every OrderedClasspathElement shares one instance.
type PathResolver struct{}

// Resolve joins rawPath against parentPath (if rawPath is relative) and
// cleans the result. It does not touch the filesystem.
func (PathResolver) Resolve(rawPath, parentPath string) string {
	if filepath.IsAbs(rawPath) {
		return filepath.Clean(rawPath)
	}
	if parentPath == "" {
		abs, err := filepath.Abs(rawPath)
		if err != nil {
			return filepath.Clean(rawPath)
		}
		return abs
	}
	return filepath.Clean(filepath.Join(parentPath, rawPath))
}

// Canonicalize resolves resolvedPath to its OS-canonical, symlink-resolved,
// absolute form. It requires the path to exist.
func (PathResolver) Canonicalize(resolvedPath string) (string, error) {
	abs, err := filepath.Abs(resolvedPath)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return real, nil
}

// Dir returns the canonical directory containing path, used to compute the
// parent path of manifest-expanded Class-Path children.
func (PathResolver) Dir(path string) string { return filepath.Dir(path) }

// pathKind stats path and reports whether it names a regular file or a
// directory; err is the stat error, if any.
func pathKind(path string) (isFile, isDir bool, err error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, false, err
	}
	mode := fi.Mode()
	return mode.IsRegular(), mode.IsDir(), nil
}
