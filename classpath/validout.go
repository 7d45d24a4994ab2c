package classpath

import (
	"sort"
	"sync"
)

// validOut accumulates accepted elements. It need not be a priority queue in
// the concurrent sense — elements are appended in arbitrary completion
// order and sorted once at drain time, which is cheaper and race-free
// (see DESIGN.md: retracted accepted elements are handled by dedup-on-drain,
// not by removal mid-run).
type validOut struct {
	mu    sync.Mutex
	elems []*OrderedClasspathElement
}

func newValidOut() *validOut { return &validOut{} }

func (v *validOut) add(e *OrderedClasspathElement) {
	v.mu.Lock()
	v.elems = append(v.elems, e)
	v.mu.Unlock()
}

// drain returns every accepted element sorted by OrderKey ascending,
// deduplicated by canonical path keeping only the first (lowest-key)
// occurrence.
func (v *validOut) drain() []*OrderedClasspathElement {
	v.mu.Lock()
	elems := v.elems
	v.elems = nil
	v.mu.Unlock()

	sort.Slice(elems, func(i, j int) bool { return elems[i].Key.Less(elems[j].Key) })

	seen := make(map[string]struct{}, len(elems))
	out := make([]*OrderedClasspathElement, 0, len(elems))
	for _, e := range elems {
		if _, dup := seen[e.canonicalPath]; dup {
			continue
		}
		seen[e.canonicalPath] = struct{}{}
		out = append(out, e)
	}
	return out
}
