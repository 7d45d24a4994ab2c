package archive

import "github.com/NVIDIA/cpscan/api"

// CentralDirectoryParser is the out-of-scope "central-directory parsing"
// collaborator: given an ArchiveSlice and the active scan spec, it returns
// the ordered entry list used to populate a LogicalArchive.
type CentralDirectoryParser interface {
	Parse(slice ArchiveSlice, spec api.ScanSpec) ([]FastEntry, error)
}

// ModuleReader is whatever a ModuleReaderFactory opens for a module
// reference; cpscan's core treats it opaquely and only pools it.
type ModuleReader interface {
	Close() error
}

// ModuleReaderFactory is the out-of-scope "module-reader factory"
// collaborator: given a module reference, opens a reader, pooled via the
// Handler's recycler mechanism.
type ModuleReaderFactory interface {
	OpenModuleReader(moduleRef string) (ModuleReader, error)
}
