package vm

import (
	"strconv"

	"github.com/Quantum-Kayak/Skive/compiler"
)

// extended runs the backslash commands. Every reference to an unknown
// label, snapshot or vector, and every malformed integer field, is a
// silent no-op.
func (e *Engine) extended(in compiler.Instr) {
	switch in.Op {
	case compiler.OpTeleport:
		if c, ok := e.reg.Label(in.Args[0]); ok {
			e.pos = c
		}

	case compiler.OpTeleportBy:
		dx, errX := strconv.Atoi(in.Args[0])
		dy, errY := strconv.Atoi(in.Args[1])
		if errX != nil || errY != nil {
			e.log.Debugf("ignoring \\tp(%s,%s): not integers", in.Args[0], in.Args[1])
			return
		}
		e.pos.Col += dx
		e.pos.Row -= dy

	case compiler.OpClone:
		if c, ok := e.reg.Label(in.Args[0]); ok {
			e.grid.Set(c, int(e.Cell()))
		}

	case compiler.OpSwap:
		if c, ok := e.reg.Label(in.Args[0]); ok {
			other := e.grid.Get(c)
			e.grid.Set(c, int(e.Cell()))
			e.setCell(int(other))
		}

	case compiler.OpSave:
		e.reg.Save(in.Args[0], e.grid)

	case compiler.OpRestore:
		if g, ok := e.reg.Snapshot(in.Args[0]); ok {
			e.grid = g
		} else {
			e.log.Debugf("ignoring \\restore{%s}: no such snapshot", in.Args[0])
		}

	case compiler.OpFill:
		e.fill(in.Args[0], in.Args[1], in.Args[2])

	case compiler.OpMath:
		e.math(in.Args[0], in.Args[1], in.Args[2])

	case compiler.OpMod:
		c, ok := e.reg.Label(in.Args[0])
		if !ok {
			return
		}
		div, err := strconv.Atoi(in.Args[1])
		if err != nil || div == 0 {
			return
		}
		e.grid.Set(c, int(e.grid.Get(c))%div)

	case compiler.OpVSet:
		e.reg.ResetVector(in.Args[0])

	case compiler.OpPushBack:
		c, ok := e.reg.Label(in.Args[1])
		if !ok {
			return
		}
		e.reg.Append(in.Args[0], e.grid.Get(c))
	}
}

// fill writes src's value into every coordinate of the rectangle spanned
// by labels a and b, inclusive.
func (e *Engine) fill(src, a, b string) {
	from, ok1 := e.reg.Label(src)
	ca, ok2 := e.reg.Label(a)
	cb, ok3 := e.reg.Label(b)
	if !ok1 || !ok2 || !ok3 {
		return
	}

	v := int(e.grid.Get(from))
	r1, r2 := minInt(ca.Row, cb.Row), maxInt(ca.Row, cb.Row)
	c1, c2 := minInt(ca.Col, cb.Col), maxInt(ca.Col, cb.Col)
	for r := r1; r <= r2; r++ {
		for c := c1; c <= c2; c++ {
			e.grid.Set(Coord{Row: r, Col: c}, v)
		}
	}
}

func (e *Engine) math(name, op, val string) {
	c, ok := e.reg.Label(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return
	}

	cur := int(e.grid.Get(c))
	switch op {
	case "+":
		cur += n
	case "-":
		cur -= n
	case "*":
		cur *= n
	case "/":
		if n != 0 {
			cur /= n
		}
	default:
		e.log.Debugf("ignoring \\math{%s,%s,%s}: unknown operator", name, op, val)
		return
	}
	e.grid.Set(c, cur)
}
