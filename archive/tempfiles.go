package archive

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/NVIDIA/cpscan/cmn/cos"
)

// tempRegistry is a FIFO/deque of temp file paths created during a
// handler's lifetime, deleted in reverse creation order on shutdown.
// Append-only during operation; drained once at close.
type tempRegistry struct {
	mu    sync.Mutex
	paths []string
}

func newTempRegistry() *tempRegistry { return &tempRegistry{} }

// sanitizeLeaf replaces every one of / \ : ? & = <space> with _, the
// external contract's sanitization rule.
func sanitizeLeaf(leaf string) string {
	const unsafe = `/\:?&= `
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(unsafe, r) {
			return '_'
		}
		return r
	}, leaf)
}

// create makes a new temp file named <systemTempDir>/<randomPrefix>---<sanitizedLeaf>,
// registers it, and returns the open file and its path.
func (r *tempRegistry) create(leaf string) (*os.File, string, error) {
	name := cos.GenTempPrefix() + "---" + sanitizeLeaf(leaf)
	path := filepath.Join(os.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	return f, path, nil
}

// discard removes path from the registry without deleting it from disk —
// used when a partially written temp file is deleted immediately on
// extraction failure, so close() doesn't try to delete it again.
func (r *tempRegistry) discard(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.paths {
		if p == path {
			r.paths = append(r.paths[:i], r.paths[i+1:]...)
			return
		}
	}
}

// deleteAll removes every registered temp file in reverse creation order,
// aggregating any deletion failures instead of stopping at the first.
func (r *tempRegistry) deleteAll() error {
	r.mu.Lock()
	paths := r.paths
	r.paths = nil
	r.mu.Unlock()

	var errs cos.Errs
	for i := len(paths) - 1; i >= 0; i-- {
		if err := os.Remove(paths[i]); err != nil && !os.IsNotExist(err) {
			errs.Add(err)
		}
	}
	return errs.JoinErr()
}
