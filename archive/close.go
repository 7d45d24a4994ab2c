package archive

import (
	"github.com/NVIDIA/cpscan/cmn/cos"
	"github.com/NVIDIA/cpscan/cmn/debug"
)

// Close tears the handler down in a fixed order so mmapped regions and
// temporary files are released in a platform-safe sequence: logical
// archives first (they hold no resources of their own but must stop being
// reachable before their backing is torn down), then every PhysicalArchive,
// then temp files last (a mapped file cannot be deleted while mapped).
// Idempotent: every step guards against repeat via the closed flag checked
// once at the top.
//
// Close-path failures are aggregated rather than silently dropped (the
// REDESIGN choice recorded in DESIGN.md) and returned as a single joined
// error; any single failure does not abort the remaining steps.
func (h *Handler) Close() error {
	if !h.closed.CompareAndSwap(false, true) {
		return nil
	}

	var errs cos.Errs

	h.inflaters.ForceClose()

	h.moduleMu.Lock()
	readers := h.moduleReaders
	h.moduleReaders = nil
	h.moduleMu.Unlock()
	for _, rec := range readers {
		rec.ForceClose()
	}

	h.slices.Clear()
	h.nestedPaths.Clear()

	h.allocatedMu.Lock()
	allocated := h.allocated
	h.allocated = nil
	h.allocatedMu.Unlock()
	for _, la := range allocated {
		errs.Add(la.Close())
	}

	for _, phys := range h.canonicalFiles.Values() {
		errs.Add(phys.Close())
	}
	h.canonicalFiles.Clear()

	h.additionalMu.Lock()
	additional := h.additional
	h.additional = nil
	h.additionalMu.Unlock()
	for _, phys := range additional {
		errs.Add(phys.Close())
	}

	h.entrySlices.Clear()

	gcHintBeforeTempDelete()

	errs.Add(h.temp.deleteAll())

	debug.Assert(len(h.canonicalFiles.Values()) == 0, "canonical-file map not empty after close")

	return errs.JoinErr()
}
