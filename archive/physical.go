// Package archive implements the nested-archive-reader half of cpscan's
// core: a graph of memoized singleton factories mapping a possibly-nested
// archive path ("outer!inner!leaf") to an opened logical archive backed by
// a memory-mapped file, an in-memory buffer, or a temporary extracted file.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package archive

import (
	"os"
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/NVIDIA/cpscan/cmn/cos"
	"github.com/NVIDIA/cpscan/internal/concur"
)

// chunkSize bounds each individual mapping: the platform mapping primitive
// used for file-backed chunks is index-limited to this span (2^32).
const chunkSize int64 = 1 << 32

// PhysicalArchive owns a handle to a byte source: either a file, lazily
// mmapped in chunkSize-bounded slots, or a single in-memory buffer. Chunk
// slots are populated at most once via an internal SingletonMap keyed on
// chunk index; when backing is a file, the handle outlives every chunk
// buffer.
type PhysicalArchive struct {
	// identity: file-backed archives are equal by canonical file path;
	// memory-backed archives are equal by the outermost file identity
	// plus the nested-path string used at construction (see extractEntry).
	id string

	file   *os.File
	size   int64
	chunks *concur.SingletonMap[*chunk]

	memory []byte

	onRelease func() // handler.freedMmapRef, nil for memory-backed

	closed atomic.Bool
}

type chunk struct {
	data  []byte
	unmap func() error // nil for memory-backed or an unmap-free platform
}

// OpenFile constructs a file-backed PhysicalArchive. canonicalPath is used
// as the archive's identity for SingletonMap/equality purposes.
func OpenFile(canonicalPath string, onRelease func()) (*PhysicalArchive, error) {
	f, err := os.Open(canonicalPath)
	if err != nil {
		return nil, cos.NewErrNotFound("%s", canonicalPath)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	return &PhysicalArchive{
		id:        canonicalPath,
		file:      f,
		size:      fi.Size(),
		chunks:    concur.NewSingletonMap[*chunk](),
		onRelease: onRelease,
	}, nil
}

// FromMemory constructs a memory-backed PhysicalArchive from already
// inflated bytes. identity is the outermost file identity plus nested-path
// string the caller has already computed (see extractEntry), used so two
// distinct construction paths for the same nested archive collide.
func FromMemory(identity string, data []byte) *PhysicalArchive {
	return &PhysicalArchive{
		id:     identity,
		memory: data,
		size:   int64(len(data)),
		chunks: concur.NewSingletonMap[*chunk](),
	}
}

func (p *PhysicalArchive) Identity() string { return p.id }
func (p *PhysicalArchive) Size() int64      { return p.size }
func (p *PhysicalArchive) IsFileBacked() bool { return p.file != nil }

// NumChunks returns the number of chunkSize-bounded slots covering Size().
func (p *PhysicalArchive) NumChunks() int64 {
	if p.size == 0 {
		return 1
	}
	return (p.size + chunkSize - 1) / chunkSize
}

// Chunk returns the read-only bytes covering
// [i*chunkSize, i*chunkSize + min(chunkSize, size - i*chunkSize)).
func (p *PhysicalArchive) Chunk(i int64) ([]byte, error) {
	if p.closed.Load() {
		return nil, cos.ErrClosed
	}
	if p.file == nil {
		return p.memory, nil
	}
	key := chunkKey(i)
	c, err := p.chunks.Get(key, func() (*chunk, error) { return p.mapChunk(i) })
	if err != nil {
		return nil, err
	}
	return c.data, nil
}

func (p *PhysicalArchive) mapChunk(i int64) (*chunk, error) {
	offset := i * chunkSize
	length := chunkSize
	if remain := p.size - offset; remain < length {
		length = remain
	}
	data, unmap, err := mmapChunk(p.file, offset, length)
	if err != nil {
		runtime.GC()
		data, unmap, err = mmapChunk(p.file, offset, length)
		if err != nil {
			return nil, errors.Wrapf(cos.NewErrMapping(p.id, err), "chunk %d", i)
		}
	}
	return &chunk{data: data, unmap: unmap}, nil
}

func chunkKey(i int64) string {
	// a plain (unpadded) decimal key is adequate: NumChunks is bounded by
	// realistic archive sizes, not by key-space concerns.
	buf := make([]byte, 0, 20)
	if i == 0 {
		buf = append(buf, '0')
	}
	for v := i; v > 0; v /= 10 {
		buf = append([]byte{byte('0' + v%10)}, buf...)
	}
	return string(buf)
}

// Close releases chunk references first (invoking onRelease once per
// released chunk), then closes the file handle. Idempotent.
func (p *PhysicalArchive) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, c := range p.chunks.Values() {
		if c.unmap != nil {
			_ = c.unmap()
			if p.onRelease != nil {
				p.onRelease()
			}
		}
	}
	p.chunks.Clear()
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
