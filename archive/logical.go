package archive

import (
	"strings"
	"sync"
)

// FastEntry is a leaf descriptor inside a LogicalArchive. It owns no bytes;
// every access goes back through its parent LogicalArchive's slice.
type FastEntry struct {
	Name             string
	Offset           int64
	CompressedSize   int64
	UncompressedSize int64
	IsDeflated       bool
}

// LogicalArchive is a parsed view over an ArchiveSlice: the ordered entry
// list produced by a CentralDirectoryParser, plus a mutable set of
// directory prefixes to be treated as root packages. It is constructed
// once per ArchiveSlice, memoized by the handler's slice SingletonMap.
type LogicalArchive struct {
	Slice   ArchiveSlice
	Entries []FastEntry

	byName map[string]*FastEntry

	rootsMu sync.Mutex
	roots   map[string]struct{}
}

func newLogicalArchive(slice ArchiveSlice, entries []FastEntry) *LogicalArchive {
	byName := make(map[string]*FastEntry, len(entries))
	la := &LogicalArchive{Slice: slice, Entries: entries, byName: byName, roots: make(map[string]struct{})}
	for i := range entries {
		byName[entries[i].Name] = &la.Entries[i]
	}
	return la
}

// Find returns the entry exactly named name, or nil.
func (la *LogicalArchive) Find(name string) *FastEntry {
	return la.byName[name]
}

// HasDirPrefix reports whether any entry's name starts with prefix+"/" —
// used by the handler's open() state machine to distinguish a directory
// child from a missing path.
func (la *LogicalArchive) HasDirPrefix(prefix string) bool {
	want := prefix + "/"
	for name := range la.byName {
		if strings.HasPrefix(name, want) {
			return true
		}
	}
	return false
}

// AddClasspathRoot registers dir as an intra-archive package root.
func (la *LogicalArchive) AddClasspathRoot(dir string) {
	if dir == "" {
		return
	}
	la.rootsMu.Lock()
	la.roots[dir] = struct{}{}
	la.rootsMu.Unlock()
}

// ClasspathRoots returns the current set of registered package roots.
func (la *LogicalArchive) ClasspathRoots() []string {
	la.rootsMu.Lock()
	defer la.rootsMu.Unlock()
	out := make([]string, 0, len(la.roots))
	for d := range la.roots {
		out = append(out, d)
	}
	return out
}

// Close drops the entry index, allowing it to be collected independently of
// any lingering reference to the LogicalArchive itself. LogicalArchive owns
// no file handles or mappings directly — those belong to its Slice's
// PhysicalArchive, torn down separately by the handler in its own close
// step — so this never fails.
func (la *LogicalArchive) Close() error {
	la.byName = nil
	la.Entries = nil
	return nil
}
