//go:build !windows

package archive

import (
	"os"

	"golang.org/x/sys/unix"
)

// mmapChunk maps [offset, offset+length) of f read-only. offset is always a
// multiple of chunkSize, which is itself page-aligned on every platform
// cpscan targets.
func mmapChunk(f *os.File, offset, length int64) (data []byte, unmap func() error, err error) {
	if length == 0 {
		return nil, func() error { return nil }, nil
	}
	b, err := unix.Mmap(int(f.Fd()), offset, int(length), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	return b, func() error { return unix.Munmap(b) }, nil
}
