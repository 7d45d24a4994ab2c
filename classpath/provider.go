package classpath

// RawClasspathProvider is the out-of-scope "raw-classpath string discovery"
// collaborator: it returns the ordered sequence of classpath entries as the
// platform loader chain or environment would present them, before any
// validation, canonicalization, or manifest expansion. Entries may be
// absolute or relative, or HTTP(S) URLs at the outermost nesting position.
type RawClasspathProvider interface {
	RawClasspath() ([]string, error)
}

// ManifestParser is the out-of-scope "manifest parser" collaborator: given a
// canonical archive path, it returns the value of the archive's manifest
// Class-Path header (a space-delimited list of relative references), or ok
// false if the archive has no such header.
type ManifestParser interface {
	ClassPath(canonicalArchivePath string) (value string, ok bool, err error)
}
