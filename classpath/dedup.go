package classpath

import (
	"strings"
	"sync"
)

// claimMap implements the resolver's first-wins dedup: pathToEarliestKey
// maps a canonical path to the smallest OrderKey that has claimed it so far.
// claim is the only mutator; it atomically decides whether the calling
// element's key wins the existing claim.
type claimMap struct {
	mu     sync.Mutex
	claims map[string]OrderKey
}

func newClaimMap() *claimMap {
	return &claimMap{claims: make(map[string]OrderKey)}
}

// claim reports whether key is the (so far) winning claim for path. A
// canonical path already claimed by a smaller-or-equal key rejects this
// call; a canonical path claimed only by a larger key is overtaken (the
// earlier, losing claim is retired — final dedup during validOut drain
// drops it because validOut iterates in OrderKey order and keeps only the
// first occurrence per canonical path).
func (m *claimMap) claim(path string, key OrderKey) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.claims[path]; ok && !key.Less(existing) {
		return false
	}
	m.claims[path] = key
	return true
}

// jrePathCache caches canonical directory paths known to belong to the
// platform runtime, so repeated blacklist checks against the same JRE
// directory hit the cache instead of re-matching the marker list. It never
// touches the filesystem. Population is opportunistic:
// the first path recognized as a JRE member seeds the cache with its
// containing directory for future O(1) hits.
type jrePathCache struct {
	mu    sync.RWMutex
	known map[string]struct{}
}

func newJREPathCache() *jrePathCache {
	return &jrePathCache{known: make(map[string]struct{})}
}

// knownJREMarkers are directory-name fragments that reliably identify a
// platform runtime installation across the JDK layouts cpscan is likely to
// encounter (modular JDK 9+, legacy JDK 8 jre/lib, common container images).
var knownJREMarkers = []string{
	"/jre/lib/",
	"/jdk/lib/",
	"/lib/modules",
	"/jmods/",
}

func (c *jrePathCache) contains(canonicalPath string, r PathResolver) bool {
	dir := r.Dir(canonicalPath)

	c.mu.RLock()
	_, ok := c.known[dir]
	c.mu.RUnlock()
	if ok {
		return true
	}

	for _, marker := range knownJREMarkers {
		if strings.Contains(canonicalPath, marker) {
			c.mu.Lock()
			c.known[dir] = struct{}{}
			c.mu.Unlock()
			return true
		}
	}
	return false
}
