package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// Program is a loaded Skive program: the instruction buffer plus its jump
// table. Both are immutable once Compile returns.
type Program struct {
	Code   []byte
	Jumps  map[int]int
	Macros map[string]string
	Source string

	// Origins maps instruction indices to source offsets; nil when macro
	// expansion rewrote the text.
	Origins []int
}

// Compile preprocesses src and builds the jump table. Both load-time
// failures (ErrMacroLimit, ErrUnmatchedBracket) are reported here, before
// anything can execute.
func Compile(src string) (*Program, error) {
	pp, err := Preprocess(src)
	if err != nil {
		return nil, err
	}

	jumps, err := BuildJumpTable(pp.Code)
	if err != nil {
		var be *BracketError
		if errors.As(err, &be) && pp.Origins != nil {
			be.Offset = pp.Origins[be.Index]
		}
		return nil, fmt.Errorf("compiler: %w", err)
	}

	return &Program{
		Code:    pp.Code,
		Jumps:   jumps,
		Macros:  pp.Macros,
		Source:  src,
		Origins: pp.Origins,
	}, nil
}

// Len returns the number of bytes in the instruction buffer.
func (p *Program) Len() int {
	return len(p.Code)
}

// Match returns the partner of the bracket at pc.
func (p *Program) Match(pc int) (int, bool) {
	target, ok := p.Jumps[pc]
	return target, ok
}

// Position returns the 1-based source line and column of instruction pc.
func (p *Program) Position(pc int) (line, col int, ok bool) {
	if p.Origins == nil || pc < 0 || pc >= len(p.Origins) {
		return 0, 0, false
	}
	line, col = LineCol(p.Source, p.Origins[pc])
	return line, col, true
}

// LineCol converts a byte offset in text to a 1-based line and column.
func LineCol(text string, offset int) (line, col int) {
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]
	line = strings.Count(before, "\n") + 1
	col = offset - strings.LastIndexByte(before, '\n')
	return line, col
}
