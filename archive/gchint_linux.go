//go:build linux

package archive

import "runtime"

// gcReleaseInterval bounds the rate of gc hints: Linux's mmap ceiling is the
// only platform this heuristic targets (see DESIGN.md).
const gcReleaseInterval = 20000

func maybeGCHint(releaseCount int64) {
	if releaseCount%gcReleaseInterval == 0 {
		runtime.GC()
	}
}

// gcHintBeforeTempDelete is a no-op on Linux: unmapping is synchronous with
// Munmap, not deferred to finalization, so no hint is needed before
// deleting temp files.
func gcHintBeforeTempDelete() {}
