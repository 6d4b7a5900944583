package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Instructions decodes the buffer front to back. Loops can land inside a
// multi-byte instruction at run time; this walk shows the straight-line view.
func (p *Program) Instructions() []Instr {
	var out []Instr
	for pc := 0; pc < len(p.Code); {
		in := Decode(p.Code, pc)
		out = append(out, in)
		pc = in.End + 1
	}
	return out
}

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		fmt.Fprintf(&sb, "; === %s ===\n", name)
	}
	fmt.Fprintf(&sb, "; %d instruction bytes, %d loops\n", len(p.Code), len(p.Jumps)/2)

	if len(p.Macros) > 0 {
		names := make([]string, 0, len(p.Macros))
		for n := range p.Macros {
			names = append(names, n)
		}
		sort.Strings(names)
		sb.WriteString("; Macros:\n")
		for _, n := range names {
			fmt.Fprintf(&sb, ";   (%s) = %q\n", n, p.Macros[n])
		}
	}
	sb.WriteString("\n")

	for _, in := range p.Instructions() {
		p.writeInstr(&sb, in)
	}
	return sb.String()
}

func (p *Program) writeInstr(sb *strings.Builder, in Instr) {
	fmt.Fprintf(sb, "%04d  %-10s %s", in.Pos, in.Op, in.Text(p.Code))

	switch {
	case in.Truncated:
		sb.WriteString("  ; unterminated")
	case in.Op == OpLoopOpen || in.Op == OpLoopClose:
		if target, ok := p.Match(in.Pos); ok {
			fmt.Fprintf(sb, "  ; -> %04d", target)
		}
	case in.Op == OpPrintRun || in.Op == OpMul || in.Op == OpDiv:
		fmt.Fprintf(sb, "  ; n=%d", in.Count)
	}

	if line, col, ok := p.Position(in.Pos); ok {
		fmt.Fprintf(sb, "  ; %d:%d", line, col)
	}
	sb.WriteString("\n")
}
