package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Quantum-Kayak/Skive/vm"
)

// A grid larger than this is listed cell by cell instead of drawn.
const (
	maxDrawRows = 24
	maxDrawCols = 16
)

// writeGrid draws the stored cells plus the pointer. The pointer's cell is
// marked with '*'; unstored cells print as '.'.
func writeGrid(w io.Writer, cells []vm.Cell, ptr vm.Coord) {
	lo, hi := ptr, ptr
	values := make(map[vm.Coord]byte, len(cells))
	for _, c := range cells {
		values[c.Coord] = c.Value
		lo.Row, lo.Col = min(lo.Row, c.Row), min(lo.Col, c.Col)
		hi.Row, hi.Col = max(hi.Row, c.Row), max(hi.Col, c.Col)
	}

	if hi.Row-lo.Row >= maxDrawRows || hi.Col-lo.Col >= maxDrawCols {
		fmt.Fprintf(w, "pointer (%d,%d), %d stored cells:\n", ptr.Row, ptr.Col, len(cells))
		writeCells(w, cells)
		return
	}

	fmt.Fprintf(w, "%5s", "")
	for col := lo.Col; col <= hi.Col; col++ {
		fmt.Fprintf(w, "%5d", col)
	}
	fmt.Fprintln(w)
	for row := lo.Row; row <= hi.Row; row++ {
		fmt.Fprintf(w, "%5d", row)
		for col := lo.Col; col <= hi.Col; col++ {
			c := vm.Coord{Row: row, Col: col}
			mark := " "
			if c == ptr {
				mark = "*"
			}
			if v, ok := values[c]; ok {
				fmt.Fprintf(w, "%4d%s", v, mark)
			} else {
				fmt.Fprintf(w, "%4s%s", ".", mark)
			}
		}
		fmt.Fprintln(w)
	}
}

func writeCells(w io.Writer, cells []vm.Cell) {
	for _, c := range cells {
		fmt.Fprintf(w, "  (%d,%d) = %d%s\n", c.Row, c.Col, c.Value, printable(c.Value))
	}
}

func writeLabels(w io.Writer, labels map[string]vm.Coord) {
	if len(labels) == 0 {
		fmt.Fprintln(w, "no labels")
		return
	}
	for _, name := range sortedNames(labels) {
		c := labels[name]
		fmt.Fprintf(w, "  %-12s (%d,%d)\n", name, c.Row, c.Col)
	}
}

func writeVectors(w io.Writer, vectors map[string][]byte) {
	if len(vectors) == 0 {
		fmt.Fprintln(w, "no vectors")
		return
	}
	for _, name := range sortedNames(vectors) {
		v := vectors[name]
		parts := make([]string, len(v))
		for i, b := range v {
			parts[i] = fmt.Sprint(b)
		}
		fmt.Fprintf(w, "  %-12s [%s]\n", name, strings.Join(parts, " "))
	}
}

func writeSnapshots(w io.Writer, snapshots map[string][]vm.Cell) {
	if len(snapshots) == 0 {
		fmt.Fprintln(w, "no snapshots")
		return
	}
	for _, name := range sortedNames(snapshots) {
		fmt.Fprintf(w, "  %-12s %d cells\n", name, len(snapshots[name]))
	}
}

// writeState prints every part of s.
func writeState(w io.Writer, s vm.State) {
	fmt.Fprintln(w, "grid:")
	writeGrid(w, s.Cells, s.Pointer)
	fmt.Fprintln(w, "labels:")
	writeLabels(w, s.Labels)
	fmt.Fprintln(w, "vectors:")
	writeVectors(w, s.Vectors)
	fmt.Fprintln(w, "snapshots:")
	writeSnapshots(w, s.Snapshots)
}

// printable renders b as a quoted character when it is printable ASCII.
func printable(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return fmt.Sprintf(" %q", rune(b))
	}
	return ""
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
