package vm

import "testing"

func TestWrap(t *testing.T) {
	tests := []struct {
		in   int
		want byte
	}{
		{0, 0},
		{255, 255},
		{256, 0},
		{257, 1},
		{-1, 255},
		{-256, 0},
		{-257, 255},
		{1000, 232},
	}
	for _, tt := range tests {
		if got := Wrap(tt.in); got != tt.want {
			t.Errorf("Wrap(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGridSetGet(t *testing.T) {
	g := NewGrid()
	c := Coord{Row: -3, Col: 7}
	if g.Get(c) != 0 || g.Has(c) {
		t.Fatal("unset cell should read 0 and not exist")
	}
	if g.Len() != 0 {
		t.Fatal("Get must not create entries")
	}

	g.Set(c, 300)
	if g.Get(c) != 44 {
		t.Errorf("Get = %d, want 44", g.Get(c))
	}
	if !g.Has(c) || g.Len() != 1 {
		t.Error("Set should create one entry")
	}
}

func TestGridIncrementColumn(t *testing.T) {
	g := NewGrid()
	g.Set(Coord{0, 0}, 1)
	g.Set(Coord{5, 0}, 255)
	g.Set(Coord{0, 1}, 9)

	g.IncrementColumn(0)

	if g.Get(Coord{0, 0}) != 2 {
		t.Errorf("(0,0) = %d, want 2", g.Get(Coord{0, 0}))
	}
	if g.Get(Coord{5, 0}) != 0 {
		t.Errorf("(5,0) = %d, want wrap to 0", g.Get(Coord{5, 0}))
	}
	if g.Get(Coord{0, 1}) != 9 {
		t.Error("other columns must not change")
	}
	if g.Has(Coord{1, 0}) || g.Len() != 3 {
		t.Error("bulk increment must not materialize cells")
	}
}

func TestGridIncrementRow(t *testing.T) {
	g := NewGrid()
	g.Set(Coord{2, -4}, 1)
	g.Set(Coord{2, 8}, 2)
	g.Set(Coord{3, 8}, 3)

	g.IncrementRow(2)

	if g.Get(Coord{2, -4}) != 2 || g.Get(Coord{2, 8}) != 3 {
		t.Error("row 2 entries should be incremented")
	}
	if g.Get(Coord{3, 8}) != 3 {
		t.Error("row 3 must not change")
	}
	if g.Len() != 3 {
		t.Errorf("Len = %d, want 3", g.Len())
	}

	NewGrid().IncrementRow(0) // empty grid is fine
}

func TestGridClone(t *testing.T) {
	g := NewGrid()
	g.Set(Coord{0, 0}, 1)
	c := g.Clone()
	c.Set(Coord{0, 0}, 2)
	c.Set(Coord{1, 1}, 3)

	if g.Get(Coord{0, 0}) != 1 || g.Has(Coord{1, 1}) {
		t.Error("clone must not share storage")
	}
}

func TestGridCells(t *testing.T) {
	g := NewGrid()
	g.Set(Coord{1, 0}, 3)
	g.Set(Coord{0, 5}, 2)
	g.Set(Coord{0, -1}, 1)

	cells := g.Cells()
	want := []Cell{
		{Coord{0, -1}, 1},
		{Coord{0, 5}, 2},
		{Coord{1, 0}, 3},
	}
	if len(cells) != len(want) {
		t.Fatalf("Cells = %v", cells)
	}
	for i := range want {
		if cells[i] != want[i] {
			t.Errorf("Cells[%d] = %v, want %v", i, cells[i], want[i])
		}
	}
}
