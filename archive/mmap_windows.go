//go:build windows

package archive

import "os"

// mmapChunk falls back to a plain ReadAt on Windows: cpscan's mmap pressure
// heuristic (freedMmapRef's 20000-release gc hint) is defined as Linux-only
// in the first place, so a non-mapped fallback here costs nothing in
// correctness, only in avoiding the page-cache sharing mmap would give.
func mmapChunk(f *os.File, offset, length int64) (data []byte, unmap func() error, err error) {
	buf := make([]byte, length)
	if _, err := f.ReadAt(buf, offset); err != nil {
		return nil, nil, err
	}
	return buf, func() error { return nil }, nil
}
