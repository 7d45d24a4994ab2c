//go:build !linux

package archive

import "runtime"

// maybeGCHint is a no-op outside Linux: those platforms are assumed free of
// the 64K-mapping ceiling the hint exists to relieve.
func maybeGCHint(int64) {}

// gcHintBeforeTempDelete requests a collection before temp-file deletion on
// Windows/unknown platforms, where a mapped file cannot be deleted while
// mapped and unmapping is tied to finalizer execution.
func gcHintBeforeTempDelete() { runtime.GC() }
