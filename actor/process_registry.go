package actor

import cmap "github.com/orcaman/concurrent-map/v2"

// processRegistry maps an actor path's string form to its backing cell, so
// diagnostics can look an actor up without holding on to its PID directly. Backed by orcaman/concurrent-map so
// concurrent Spawn/termination traffic doesn't contend on a single mutex.
type processRegistry struct {
	m cmap.ConcurrentMap[string, *cell]
}

func newProcessRegistry() *processRegistry {
	return &processRegistry{m: cmap.New[*cell]()}
}

func (r *processRegistry) put(path string, c *cell) { r.m.Set(path, c) }
func (r *processRegistry) remove(path string)       { r.m.Remove(path) }

func (r *processRegistry) get(path string) (*cell, bool) {
	return r.m.Get(path)
}

func (r *processRegistry) len() int { return r.m.Count() }
