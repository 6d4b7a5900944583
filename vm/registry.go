package vm

import "sort"

// Registry holds the side tables the extended commands refer to by name:
// labels, grid snapshots and vectors. Lookups of unknown names report
// ok=false; callers turn that into a silent no-op.
type Registry struct {
	labels    map[string]Coord
	snapshots map[string]*Grid
	vectors   map[string][]byte
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		labels:    make(map[string]Coord),
		snapshots: make(map[string]*Grid),
		vectors:   make(map[string][]byte),
	}
}

// SetLabel records c under name, replacing any earlier position.
func (r *Registry) SetLabel(name string, c Coord) {
	r.labels[name] = c
}

// Label returns the position recorded under name.
func (r *Registry) Label(name string) (Coord, bool) {
	c, ok := r.labels[name]
	return c, ok
}

// Save stores a deep copy of g under name.
func (r *Registry) Save(name string, g *Grid) {
	r.snapshots[name] = g.Clone()
}

// Snapshot returns a deep copy of the snapshot stored under name, so the
// caller may mutate it freely.
func (r *Registry) Snapshot(name string) (*Grid, bool) {
	g, ok := r.snapshots[name]
	if !ok {
		return nil, false
	}
	return g.Clone(), true
}

// ResetVector creates the vector name, or empties it if it exists.
func (r *Registry) ResetVector(name string) {
	r.vectors[name] = []byte{}
}

// Append adds b to the vector name. It reports false if the vector was
// never created.
func (r *Registry) Append(name string, b byte) bool {
	v, ok := r.vectors[name]
	if !ok {
		return false
	}
	r.vectors[name] = append(v, b)
	return true
}

// Vector returns a copy of the vector name.
func (r *Registry) Vector(name string) ([]byte, bool) {
	v, ok := r.vectors[name]
	if !ok {
		return nil, false
	}
	return append([]byte{}, v...), true
}

// LabelNames returns label names in sorted order.
func (r *Registry) LabelNames() []string {
	return sortedKeys(r.labels)
}

// SnapshotNames returns snapshot names in sorted order.
func (r *Registry) SnapshotNames() []string {
	return sortedKeys(r.snapshots)
}

// VectorNames returns vector names in sorted order.
func (r *Registry) VectorNames() []string {
	return sortedKeys(r.vectors)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
