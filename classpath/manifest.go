package classpath

import (
	"archive/zip"
	"bufio"
	"io"
	"strings"
)

// ZipManifestParser is the default ManifestParser: it reads
// META-INF/MANIFEST.MF out of a zip/jar's central directory via the
// standard archive/zip reader — a deliberately independent, lightweight
// path from package archive's own central-directory handling, since this
// collaborator runs ahead of (and outside of) the nested-archive handler's
// memoized open() machinery to decide whether an entry is even worth
// opening.
type ZipManifestParser struct{}

const classPathHeader = "Class-Path:"

func (ZipManifestParser) ClassPath(canonicalArchivePath string) (string, bool, error) {
	zr, err := zip.OpenReader(canonicalArchivePath)
	if err != nil {
		return "", false, nil //nolint:nilerr // not an archive is not an error here, just "no manifest"
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "META-INF/MANIFEST.MF" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", false, err
		}
		value, ok, err := parseManifestClassPath(rc)
		rc.Close()
		return value, ok, err
	}
	return "", false, nil
}

// parseManifestClassPath implements the manifest continuation-line folding
// rule: a header value may continue onto subsequent lines, each prefixed
// with exactly one space.
func parseManifestClassPath(r io.Reader) (string, bool, error) {
	sc := bufio.NewScanner(r)
	var collecting bool
	var b strings.Builder

	for sc.Scan() {
		line := sc.Text()
		if collecting {
			if strings.HasPrefix(line, " ") {
				b.WriteString(strings.TrimPrefix(line, " "))
				continue
			}
			break
		}
		if strings.HasPrefix(line, classPathHeader) {
			b.WriteString(strings.TrimSpace(strings.TrimPrefix(line, classPathHeader)))
			collecting = true
		}
	}
	if err := sc.Err(); err != nil {
		return "", false, err
	}
	if !collecting {
		return "", false, nil
	}
	return b.String(), true, nil
}
