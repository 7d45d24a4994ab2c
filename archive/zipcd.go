package archive

import (
	"archive/zip"

	"github.com/NVIDIA/cpscan/api"
)

// ZipCentralDirectoryParser is the default CentralDirectoryParser: it reads
// a standard zip/jar central directory via archive/zip.NewReader, which
// only needs an io.ReaderAt and a size — both of which ArchiveSlice already
// provides.
type ZipCentralDirectoryParser struct{}

func (ZipCentralDirectoryParser) Parse(slice ArchiveSlice, _ api.ScanSpec) ([]FastEntry, error) {
	zr, err := zip.NewReader(slice, slice.Length)
	if err != nil {
		return nil, err
	}
	entries := make([]FastEntry, 0, len(zr.File))
	for _, f := range zr.File {
		offset, err := f.DataOffset()
		if err != nil {
			continue
		}
		entries = append(entries, FastEntry{
			Name:             f.Name,
			Offset:           offset,
			CompressedSize:   int64(f.CompressedSize64),
			UncompressedSize: int64(f.UncompressedSize64),
			IsDeflated:       f.Method != zip.Store,
		})
	}
	return entries, nil
}
