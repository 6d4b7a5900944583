package vm

// State is a read-only picture of an engine: everything a run leaves
// behind, detached from the live grid and registries.
type State struct {
	Pointer   Coord
	Cells     []Cell
	Labels    map[string]Coord
	Vectors   map[string][]byte
	Snapshots map[string][]Cell
}

// State captures the engine's current pointer, grid and registries.
func (e *Engine) State() State {
	s := State{
		Pointer:   e.pos,
		Cells:     e.grid.Cells(),
		Labels:    make(map[string]Coord, len(e.reg.labels)),
		Vectors:   make(map[string][]byte, len(e.reg.vectors)),
		Snapshots: make(map[string][]Cell, len(e.reg.snapshots)),
	}
	for name, c := range e.reg.labels {
		s.Labels[name] = c
	}
	for name := range e.reg.vectors {
		s.Vectors[name], _ = e.reg.Vector(name)
	}
	for name, g := range e.reg.snapshots {
		s.Snapshots[name] = g.Cells()
	}
	return s
}

// Value returns the value stored at c in the captured grid.
func (s State) Value(c Coord) byte {
	for _, cell := range s.Cells {
		if cell.Coord == c {
			return cell.Value
		}
	}
	return 0
}
