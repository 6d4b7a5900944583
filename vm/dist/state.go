// Package dist encodes engine state for export. A run can write its final
// pointer, grid, labels, vectors and snapshots as canonical CBOR so that
// tools can inspect it later; nothing reads a state back into an engine.
package dist

import "github.com/Quantum-Kayak/Skive/vm"

// FormatVersion is written into every StateRecord.
const FormatVersion = 1

// StateRecord is the wire form of vm.State.
type StateRecord struct {
	Version   uint8                   `cbor:"1,keyasint"`
	Program   string                  `cbor:"2,keyasint,omitempty"` // source file name, if known
	Pointer   CoordRecord             `cbor:"3,keyasint"`
	Cells     []CellRecord            `cbor:"4,keyasint,omitempty"`
	Labels    map[string]CoordRecord  `cbor:"5,keyasint,omitempty"`
	Vectors   map[string][]byte       `cbor:"6,keyasint,omitempty"`
	Snapshots map[string][]CellRecord `cbor:"7,keyasint,omitempty"`
}

// CoordRecord is a grid address on the wire.
type CoordRecord struct {
	Row int64 `cbor:"1,keyasint"`
	Col int64 `cbor:"2,keyasint"`
}

// CellRecord is one stored grid entry on the wire.
type CellRecord struct {
	Row   int64 `cbor:"1,keyasint"`
	Col   int64 `cbor:"2,keyasint"`
	Value uint8 `cbor:"3,keyasint"`
}

// NewStateRecord converts s to its wire form.
func NewStateRecord(program string, s vm.State) *StateRecord {
	r := &StateRecord{
		Version: FormatVersion,
		Program: program,
		Pointer: coordRecord(s.Pointer),
		Cells:   cellRecords(s.Cells),
	}
	if len(s.Labels) > 0 {
		r.Labels = make(map[string]CoordRecord, len(s.Labels))
		for name, c := range s.Labels {
			r.Labels[name] = coordRecord(c)
		}
	}
	if len(s.Vectors) > 0 {
		r.Vectors = make(map[string][]byte, len(s.Vectors))
		for name, v := range s.Vectors {
			r.Vectors[name] = v
		}
	}
	if len(s.Snapshots) > 0 {
		r.Snapshots = make(map[string][]CellRecord, len(s.Snapshots))
		for name, cells := range s.Snapshots {
			r.Snapshots[name] = cellRecords(cells)
		}
	}
	return r
}

// State converts the record back to a vm.State.
func (r *StateRecord) State() vm.State {
	s := vm.State{
		Pointer:   r.Pointer.coord(),
		Cells:     cells(r.Cells),
		Labels:    make(map[string]vm.Coord, len(r.Labels)),
		Vectors:   make(map[string][]byte, len(r.Vectors)),
		Snapshots: make(map[string][]vm.Cell, len(r.Snapshots)),
	}
	for name, c := range r.Labels {
		s.Labels[name] = c.coord()
	}
	for name, v := range r.Vectors {
		s.Vectors[name] = v
	}
	for name, cs := range r.Snapshots {
		s.Snapshots[name] = cells(cs)
	}
	return s
}

func coordRecord(c vm.Coord) CoordRecord {
	return CoordRecord{Row: int64(c.Row), Col: int64(c.Col)}
}

func (c CoordRecord) coord() vm.Coord {
	return vm.Coord{Row: int(c.Row), Col: int(c.Col)}
}

func cellRecords(cs []vm.Cell) []CellRecord {
	out := make([]CellRecord, len(cs))
	for i, c := range cs {
		out[i] = CellRecord{Row: int64(c.Row), Col: int64(c.Col), Value: c.Value}
	}
	return out
}

func cells(rs []CellRecord) []vm.Cell {
	out := make([]vm.Cell, len(rs))
	for i, r := range rs {
		out[i] = vm.Cell{Coord: vm.Coord{Row: int(r.Row), Col: int(r.Col)}, Value: r.Value}
	}
	return out
}
