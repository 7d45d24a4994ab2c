package classpath

import (
	"github.com/NVIDIA/cpscan/cmn/nlog"
)

// OrderedClasspathElement is created on enqueue and never mutated afterward;
// its derived fields are filled in once by Validate and then the element is
// either accepted into validOut or discarded.
type OrderedClasspathElement struct {
	Key        OrderKey
	ParentPath string
	RawPath    string

	resolvedPath  string
	canonicalPath string
	isFile        bool
	isDir         bool
}

// dedupState is the resolver-shared bookkeeping a single element's Validate
// call needs: the path resolver, the system-jar blacklist cache, and the
// first-wins claim map. Grouping them avoids threading four separate
// parameters through every call.
type dedupState struct {
	resolver          PathResolver
	blacklistSystem   bool
	knownJREPaths     *jrePathCache
	pathToEarliestKey *claimMap
}

// Validate resolves, canonicalizes, and dedups the element in place. It
// returns (accept, err): err is non-nil only for unexpected I/O failures;
// accept is false both for expected rejections (not found, blacklisted,
// superseded) and for errors, distinguishing them is the caller's job via
// the returned error being nil or not.
func (e *OrderedClasspathElement) Validate(st *dedupState) (accept bool, err error) {
	e.resolvedPath = st.resolver.Resolve(e.RawPath, e.ParentPath)

	canonical, cerr := st.resolver.Canonicalize(e.resolvedPath)
	if cerr != nil {
		nlog.Warningf("classpath: %s: not found: %v", e.resolvedPath, cerr)
		return false, nil
	}
	e.canonicalPath = canonical

	isFile, isDir, kerr := pathKind(canonical)
	if kerr != nil || (!isFile && !isDir) {
		nlog.Warningf("classpath: %s: neither a regular file nor a directory", canonical)
		return false, nil
	}
	e.isFile, e.isDir = isFile, isDir

	if st.blacklistSystem && st.knownJREPaths.contains(canonical, st.resolver) {
		return false, nil
	}

	if !st.pathToEarliestKey.claim(canonical, e.Key) {
		return false, nil
	}

	return true, nil
}

// IsFile reports whether Validate determined the element resolves to a
// regular file (a candidate for manifest expansion).
func (e *OrderedClasspathElement) IsFile() bool { return e.isFile }

// CanonicalPath returns the validated canonical path. Only meaningful after
// a successful Validate call.
func (e *OrderedClasspathElement) CanonicalPath() string { return e.canonicalPath }

// Dir returns the canonical directory containing this element, the parent
// path used for any manifest-expanded children.
func (e *OrderedClasspathElement) Dir(r PathResolver) string { return r.Dir(e.canonicalPath) }
