package archive

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"

	"github.com/NVIDIA/cpscan/cmn/cos"
	"github.com/NVIDIA/cpscan/cmn/nlog"
	"github.com/NVIDIA/cpscan/internal/concur"
)

// tempFileThreshold is the size above which a deflated entry is extracted
// to disk rather than inflated directly into memory.
const tempFileThreshold = 32 << 20 // 32 MiB

// flateInflater wraps a pooled klauspost/compress/flate reader so it can be
// reset onto a new compressed source instead of allocating a fresh decoder
// per entry.
type flateInflater struct {
	rc       io.ReadCloser
	resetter flate.Resetter
}

func newFlateInflater() *flateInflater {
	rc := flate.NewReader(bytes.NewReader(nil))
	resetter, _ := rc.(flate.Resetter)
	return &flateInflater{rc: rc, resetter: resetter}
}

func (fi *flateInflater) reset(r io.Reader) error {
	if fi.resetter == nil {
		return errors.New("inflater does not support reset")
	}
	return fi.resetter.Reset(r, nil)
}

func (fi *flateInflater) Read(p []byte) (int, error) { return fi.rc.Read(p) }

func newInflaterRecycler() *concur.Recycler[*flateInflater] {
	return concur.NewRecyclerInfallible(newFlateInflater, func(fi *flateInflater) { fi.rc.Close() })
}

// extractEntry resolves a nested-archive file entry to the ArchiveSlice
// that exposes its bytes, per the contract: stored entries slice directly
// into the parent's bytes; deflated entries extract to a temp file above
// tempFileThreshold (or on unknown size), otherwise inflate to memory.
func (h *Handler) extractEntry(parent *LogicalArchive, entry FastEntry) (ArchiveSlice, error) {
	if !entry.IsDeflated {
		return ArchiveSlice{
			Physical: parent.Slice.Physical,
			Offset:   parent.Slice.Offset + entry.Offset,
			Length:   entry.CompressedSize,
		}, nil
	}

	sizeUnknown := entry.UncompressedSize <= 0
	if sizeUnknown || entry.UncompressedSize >= tempFileThreshold || entry.CompressedSize >= tempFileThreshold {
		slice, err := h.extractToTempFile(parent, entry)
		if err == nil {
			return slice, nil
		}
		nlog.Warningf("archive: %s: temp-file extraction failed, falling back to memory: %v", entry.Name, err)
	}

	if entry.UncompressedSize > chunkSize {
		return ArchiveSlice{}, cos.NewErrTooLarge(entry.Name, entry.UncompressedSize)
	}

	data, err := h.inflateToMemory(parent, entry)
	if err != nil {
		return ArchiveSlice{}, err
	}
	identity := parent.Slice.Physical.Identity() + "!" + entry.Name
	phys := FromMemory(identity, data)
	h.registerAdditional(phys)
	return WholeFile(phys), nil
}

func (h *Handler) inflateToMemory(parent *LogicalArchive, entry FastEntry) ([]byte, error) {
	src := io.NewSectionReader(parent.Slice, entry.Offset, entry.CompressedSize)
	var out []byte
	err := concur.Borrow(h.inflaters, func(fi *flateInflater) error {
		if err := fi.reset(src); err != nil {
			return err
		}
		buf := bytes.NewBuffer(make([]byte, 0, entry.UncompressedSize))
		if _, err := io.Copy(buf, fi); err != nil {
			return err
		}
		out = buf.Bytes()
		return nil
	})
	if err != nil {
		return nil, cos.NewErrExtraction(entry.Name, err)
	}
	return out, nil
}

func (h *Handler) extractToTempFile(parent *LogicalArchive, entry FastEntry) (ArchiveSlice, error) {
	src := io.NewSectionReader(parent.Slice, entry.Offset, entry.CompressedSize)

	f, path, err := h.temp.create(baseName(entry.Name))
	if err != nil {
		return ArchiveSlice{}, errors.Wrap(err, "create extraction temp file")
	}

	writeErr := concur.Borrow(h.inflaters, func(fi *flateInflater) error {
		if err := fi.reset(src); err != nil {
			return err
		}
		_, err := io.Copy(f, fi)
		return err
	})
	closeErr := f.Close()
	if writeErr != nil || closeErr != nil {
		h.temp.discard(path)
		cos.RemoveFile(path)
		if writeErr != nil {
			return ArchiveSlice{}, cos.NewErrExtraction(entry.Name, writeErr)
		}
		return ArchiveSlice{}, cos.NewErrExtraction(entry.Name, closeErr)
	}

	phys, err := h.canonicalFiles.Get(path, func() (*PhysicalArchive, error) {
		return OpenFile(path, h.freedMmapRef)
	})
	if err != nil {
		return ArchiveSlice{}, err
	}
	h.registerAdditional(phys)
	return WholeFile(phys), nil
}

func baseName(entryName string) string {
	for i := len(entryName) - 1; i >= 0; i-- {
		if entryName[i] == '/' {
			return entryName[i+1:]
		}
	}
	return entryName
}
