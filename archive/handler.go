package archive

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/NVIDIA/cpscan/api"
	"github.com/NVIDIA/cpscan/classpath"
	"github.com/NVIDIA/cpscan/cmn/cos"
	"github.com/NVIDIA/cpscan/cmn/debug"
	"github.com/NVIDIA/cpscan/internal/concur"
)

// Handler coordinates PhysicalArchive/ArchiveSlice/LogicalArchive factories
// for a single scanning session: it owns every PhysicalArchive, LogicalArchive,
// temp file, and recycler it creates, and tears them all down in a fixed
// order on Close.
type Handler struct {
	Spec     api.ScanSpec
	CDParser CentralDirectoryParser
	Modules  ModuleReaderFactory // optional; nil disables BorrowModuleReader
	Metrics  *Metrics

	resolver classpath.PathResolver

	canonicalFiles *concur.SingletonMap[*PhysicalArchive]
	slices         *concur.SingletonMap[*LogicalArchive]
	nestedPaths    *concur.SingletonMap[*openResult]
	entrySlices    *concur.SingletonMap[ArchiveSlice]

	additionalMu sync.Mutex
	additional   []*PhysicalArchive

	allocatedMu sync.Mutex
	allocated   []*LogicalArchive

	inflaters     *concur.Recycler[*flateInflater]
	moduleReaders map[string]*concur.Recycler[ModuleReader]
	moduleMu      sync.Mutex

	temp *tempRegistry

	mmapReleases atomic.Int64
	closed       atomic.Bool
}

type openResult struct {
	archive     *LogicalArchive
	packageRoot string
}

// NewHandler builds a handler ready to serve Open/Stat/Prewarm calls.
func NewHandler(spec api.ScanSpec, cdParser CentralDirectoryParser) *Handler {
	if cdParser == nil {
		cdParser = ZipCentralDirectoryParser{}
	}
	return &Handler{
		Spec:           spec,
		CDParser:       cdParser,
		canonicalFiles: concur.NewSingletonMap[*PhysicalArchive](),
		slices:         concur.NewSingletonMap[*LogicalArchive](),
		nestedPaths:    concur.NewSingletonMap[*openResult](),
		entrySlices:    concur.NewSingletonMap[ArchiveSlice](),
		inflaters:      newInflaterRecycler(),
		moduleReaders:  make(map[string]*concur.Recycler[ModuleReader]),
		temp:           newTempRegistry(),
	}
}

// Open resolves nestedPath ("p0!p1!...!pn") to a logical archive and an
// intra-archive package root, memoized so concurrent callers for the same
// path share one construction.
func (h *Handler) Open(nestedPath string) (*LogicalArchive, string, error) {
	if h.closed.Load() {
		return nil, "", cos.ErrClosed
	}
	res, err := h.nestedPaths.Get(nestedPath, func() (*openResult, error) {
		return h.resolveOpen(nestedPath)
	})
	if err != nil {
		return nil, "", err
	}
	return res.archive, res.packageRoot, nil
}

// Stat is an existence/kind probe built directly on Open: it constructs and
// memoizes the same LogicalArchives (and performs the same extraction and
// classpath-root registration) that Open would for nestedPath. A NotFound
// failure is reported as exists=false with a nil error.
func (h *Handler) Stat(nestedPath string) (exists, isDir bool, err error) {
	_, packageRoot, err := h.Open(nestedPath)
	if err != nil {
		if cos.IsErrNotFound(err) {
			return false, false, nil
		}
		return false, false, err
	}
	return true, packageRoot != "" || !strings.Contains(nestedPath, "!"), nil
}

// Prewarm calls Open for every path concurrently, using the same recycler
// and singleton-map infrastructure Open always uses; errors are returned
// per-path in the same order as paths.
func (h *Handler) Prewarm(paths []string) []error {
	if h.Metrics != nil {
		h.Metrics.prewarmQueued.Set(float64(len(paths)))
	}
	errs := make([]error, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		wg.Add(1)
		go func(i int, p string) {
			defer wg.Done()
			_, _, err := h.Open(p)
			errs[i] = err
		}(i, p)
	}
	wg.Wait()
	if h.Metrics != nil {
		h.Metrics.prewarmQueued.Set(0)
	}
	return errs
}

func (h *Handler) resolveOpen(nestedPath string) (*openResult, error) {
	idx := strings.LastIndexByte(nestedPath, '!')
	if idx < 0 {
		return h.openBase(nestedPath)
	}
	return h.openRecursive(nestedPath[:idx], nestedPath[idx+1:])
}

func (h *Handler) openBase(path string) (*openResult, error) {
	local := path
	if isRemote(path) {
		if !h.Spec.EnableRemoteJarScanning {
			return nil, cos.NewErrDisabled("remote jar scanning")
		}
		downloaded, err := h.downloadRemote(path)
		if err != nil {
			return nil, err
		}
		local = downloaded
	} else {
		canon, err := h.resolver.Canonicalize(local)
		if err != nil {
			return nil, cos.NewErrNotFound("%s", path)
		}
		local = canon
	}

	_, isRegular, _, err := cos.Stat(local)
	if err != nil || !isRegular {
		return nil, cos.NewErrNotArchive("%s", local)
	}

	phys, err := h.canonicalFiles.Get(local, func() (*PhysicalArchive, error) {
		return OpenFile(local, h.freedMmapRef)
	})
	if err != nil {
		return nil, err
	}
	logical, err := h.getLogicalArchive(WholeFile(phys))
	if err != nil {
		return nil, err
	}
	return &openResult{archive: logical}, nil
}

func (h *Handler) openRecursive(parentRaw, childRaw string) (*openResult, error) {
	// each recursive resolveOpen strictly shortens the "!"-suffix count,
	// guaranteeing termination (see DESIGN.md: singleton-map factory cycles).
	debug.Assert(strings.Count(parentRaw, "!") < strings.Count(parentRaw+"!"+childRaw, "!"), "recursive open must shorten the nested path")

	trimmed := strings.TrimLeft(childRaw, "/")
	trailingSlash := strings.HasSuffix(trimmed, "/")
	clean := strings.TrimRight(trimmed, "/")

	parentArchive, _, err := h.Open(parentRaw)
	if err != nil {
		return nil, err
	}

	if trailingSlash {
		parentArchive.AddClasspathRoot(clean)
		return &openResult{archive: parentArchive, packageRoot: clean}, nil
	}

	if entry := parentArchive.Find(clean); entry != nil {
		if !h.Spec.ScanNestedJars {
			return nil, cos.NewErrDisabled("nested archive scanning")
		}
		return h.openNestedEntry(parentArchive, *entry)
	}

	if parentArchive.HasDirPrefix(clean) {
		parentArchive.AddClasspathRoot(clean)
		return &openResult{archive: parentArchive, packageRoot: clean}, nil
	}

	return nil, cos.NewErrNotFound("%s", childRaw)
}

func (h *Handler) openNestedEntry(parent *LogicalArchive, entry FastEntry) (*openResult, error) {
	sliceKey := parent.Slice.key() + "#" + entry.Name
	slice, err := h.entrySlices.Get(sliceKey, func() (ArchiveSlice, error) {
		return h.extractEntry(parent, entry)
	})
	if err != nil {
		return nil, err
	}
	logical, err := h.getLogicalArchive(slice)
	if err != nil {
		return nil, err
	}
	return &openResult{archive: logical}, nil
}

func (h *Handler) getLogicalArchive(slice ArchiveSlice) (*LogicalArchive, error) {
	return h.slices.Get(slice.key(), func() (*LogicalArchive, error) {
		entries, err := h.CDParser.Parse(slice, h.Spec)
		if err != nil {
			return nil, cos.NewErrNotArchive("%s", slice.Physical.Identity())
		}
		la := newLogicalArchive(slice, entries)
		h.registerAllocated(la)
		return la, nil
	})
}

func (h *Handler) registerAdditional(p *PhysicalArchive) {
	h.additionalMu.Lock()
	h.additional = append(h.additional, p)
	h.additionalMu.Unlock()
}

func (h *Handler) registerAllocated(la *LogicalArchive) {
	h.allocatedMu.Lock()
	h.allocated = append(h.allocated, la)
	h.allocatedMu.Unlock()
}

// BorrowInflater runs fn with a pooled inflater, released on every exit path.
func (h *Handler) BorrowInflater(fn func() error) error {
	return concur.Borrow(h.inflaters, func(*flateInflater) error { return fn() })
}

// BorrowModuleReader runs fn with a pooled reader for moduleRef, lazily
// creating that module's recycler on first use.
func (h *Handler) BorrowModuleReader(moduleRef string, fn func(ModuleReader) error) error {
	if h.Modules == nil {
		return cos.NewErrNotFound("no module-reader factory configured for %s", moduleRef)
	}
	h.moduleMu.Lock()
	rec, ok := h.moduleReaders[moduleRef]
	if !ok {
		rec = concur.NewRecycler(func() (ModuleReader, error) { return h.Modules.OpenModuleReader(moduleRef) },
			func(r ModuleReader) { cos.Close(r) })
		h.moduleReaders[moduleRef] = rec
	}
	h.moduleMu.Unlock()
	return concur.Borrow(rec, fn)
}

// freedMmapRef is PhysicalArchive's accounting hook, invoked once per
// released mmap chunk.
func (h *Handler) freedMmapRef() {
	n := h.mmapReleases.Add(1)
	if h.Metrics != nil {
		h.Metrics.mmapReleases.Inc()
	}
	maybeGCHint(n)
}
