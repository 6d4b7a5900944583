package vm

import "sort"

// Coord is a grid address. Rows grow downward, columns grow rightward.
type Coord struct {
	Row int
	Col int
}

// Cell is a stored grid entry.
type Cell struct {
	Coord
	Value byte
}

// Grid is the sparse two-dimensional memory. Unset coordinates read as 0;
// only writes create entries, and entries are never removed.
type Grid struct {
	cells map[Coord]byte
}

// NewGrid creates an empty grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[Coord]byte)}
}

// Wrap reduces v to its residue modulo 256 in [0,255].
func Wrap(v int) byte {
	return byte(v)
}

// Get returns the value at c without creating an entry.
func (g *Grid) Get(c Coord) byte {
	return g.cells[c]
}

// Set wraps v into a byte and stores it at c.
func (g *Grid) Set(c Coord, v int) {
	g.cells[c] = Wrap(v)
}

// Has reports whether c has been written.
func (g *Grid) Has(c Coord) bool {
	_, ok := g.cells[c]
	return ok
}

// Len returns the number of stored entries.
func (g *Grid) Len() int {
	return len(g.cells)
}

// IncrementColumn adds 1 to every stored entry in column col. Coordinates
// that were never written stay absent.
func (g *Grid) IncrementColumn(col int) {
	for c, v := range g.cells {
		if c.Col == col {
			g.cells[c] = v + 1
		}
	}
}

// IncrementRow adds 1 to every stored entry in row row.
func (g *Grid) IncrementRow(row int) {
	for c, v := range g.cells {
		if c.Row == row {
			g.cells[c] = v + 1
		}
	}
}

// Clone returns an independent deep copy.
func (g *Grid) Clone() *Grid {
	cells := make(map[Coord]byte, len(g.cells))
	for c, v := range g.cells {
		cells[c] = v
	}
	return &Grid{cells: cells}
}

// Cells returns the stored entries in row-major order.
func (g *Grid) Cells() []Cell {
	out := make([]Cell, 0, len(g.cells))
	for c, v := range g.cells {
		out = append(out, Cell{Coord: c, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
