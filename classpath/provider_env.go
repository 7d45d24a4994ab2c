package classpath

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/NVIDIA/cpscan/cmn/nlog"
)

// EnvClasspathProvider is the default RawClasspathProvider: it splits the
// CLASSPATH environment variable on the platform's path-list separator,
// exactly as a JVM launcher would construct its initial classpath.
type EnvClasspathProvider struct {
	// EnvVar overrides the variable name; defaults to "CLASSPATH".
	EnvVar string
}

func (p EnvClasspathProvider) RawClasspath() ([]string, error) {
	name := p.EnvVar
	if name == "" {
		name = "CLASSPATH"
	}
	raw := os.Getenv(name)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, string(os.PathListSeparator))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// WalkDirectoryEntry lists the immediate archive-looking children (.jar,
// .zip, .war) of a directory-valued classpath entry, for manifest-discovery
// diagnostics. It does not feed resolver input, and nothing in this module
// calls it; it only returns what a directory root contains.
func WalkDirectoryEntry(dir string) ([]string, error) {
	var found []string
	err := godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				if path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".jar", ".zip", ".war":
				found = append(found, path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			nlog.Warningf("classpath: walk %s: %v", path, err)
			return godirwalk.SkipNode
		},
	})
	return found, err
}
