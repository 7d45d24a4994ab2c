package archive

import "fmt"

// ArchiveSlice is a value type representing the bytes belonging to one
// archive: either the entirety of its PhysicalArchive's backing or a
// sub-range (for a stored, uncompressed nested archive addressed directly
// within its parent's bytes). Equality is structural over
// (physical identity, offset, length).
type ArchiveSlice struct {
	Physical *PhysicalArchive
	Offset   int64
	Length   int64
}

// WholeFile returns the slice covering the entirety of p's backing.
func WholeFile(p *PhysicalArchive) ArchiveSlice {
	return ArchiveSlice{Physical: p, Offset: 0, Length: p.Size()}
}

func (s ArchiveSlice) key() string {
	return fmt.Sprintf("%s@%d+%d", s.Physical.Identity(), s.Offset, s.Length)
}

func (s ArchiveSlice) Equal(o ArchiveSlice) bool {
	return s.Physical.Identity() == o.Physical.Identity() && s.Offset == o.Offset && s.Length == o.Length
}

// ReadAt implements io.ReaderAt over the slice's logical extent, so a
// standard library archive/zip.NewReader can parse it directly.
func (s ArchiveSlice) ReadAt(p []byte, off int64) (int, error) {
	data, err := s.readRange(off, int64(len(p)))
	if err != nil {
		return 0, err
	}
	return copy(p, data), nil
}

// readRange returns the slice's bytes in [at, at+n), resolving across the
// underlying PhysicalArchive's chunk boundaries transparently.
func (s ArchiveSlice) readRange(at, n int64) ([]byte, error) {
	abs := s.Offset + at
	startChunk := abs / chunkSize
	endChunk := (abs + n - 1) / chunkSize
	if startChunk == endChunk {
		data, err := s.Physical.Chunk(startChunk)
		if err != nil {
			return nil, err
		}
		off := abs - startChunk*chunkSize
		return data[off : off+n], nil
	}
	// a read spanning a chunk boundary is rare (only archives larger than
	// chunkSize, and only for entries straddling the boundary); copy
	// instead of special-casing a zero-copy path for it.
	out := make([]byte, 0, n)
	remaining := n
	cur := abs
	for remaining > 0 {
		ci := cur / chunkSize
		data, err := s.Physical.Chunk(ci)
		if err != nil {
			return nil, err
		}
		off := cur - ci*chunkSize
		take := int64(len(data)) - off
		if take > remaining {
			take = remaining
		}
		out = append(out, data[off:off+take]...)
		cur += take
		remaining -= take
	}
	return out, nil
}
