package compiler

import "bytes"

// Instr is one decoded instruction.
type Instr struct {
	Op    Op
	Pos   int      // index of the first byte
	End   int      // index of the last byte consumed
	Count int      // net run-length value for OpPrintRun, OpMul, OpDiv
	Args  []string // extended-command fields, in source order

	// Truncated is set when an argument list or run-length literal runs
	// off the end of the buffer. The instruction is not executed and End
	// is the last index of the buffer.
	Truncated bool
}

// Text returns the source bytes the instruction was decoded from.
func (in Instr) Text(code []byte) string {
	return string(code[in.Pos : in.End+1])
}

// form is a keyword-introduced instruction: the prefix is matched
// literally, then one field is read up to each terminator in turn.
type form struct {
	prefix string
	op     Op
	terms  string
}

var labelForm = form{"label{", OpLabel, "}"}

var extendedForms = []form{
	{`\tp{`, OpTeleport, "}"},
	{`\tp(`, OpTeleportBy, ",)"},
	{`\clone{`, OpClone, "}"},
	{`\swap{`, OpSwap, "}"},
	{`\save{`, OpSave, "}"},
	{`\restore{`, OpRestore, "}"},
	{`\fill{`, OpFill, ",,}"},
	{`\math{`, OpMath, ",,}"},
	{`\mod{`, OpMod, ",}"},
	{`\vset{`, OpVSet, "}"},
	{`\pb(`, OpPushBack, ",)"},
}

const guideKeyword = "!guide!"

// Keyword is the literal prefix that introduces a multi-byte instruction.
type Keyword struct {
	Prefix string
	Op     Op
}

// Keywords returns label{ followed by the extended-command prefixes.
func Keywords() []Keyword {
	kws := make([]Keyword, 0, len(extendedForms)+1)
	kws = append(kws, Keyword{labelForm.prefix, labelForm.op})
	for _, f := range extendedForms {
		kws = append(kws, Keyword{f.prefix, f.op})
	}
	return kws
}

// Decode reads the instruction starting at pc. It depends only on code and
// pc, so it is valid at any index a jump may land on. Bytes that start no
// instruction decode as a one-byte OpNop.
func Decode(code []byte, pc int) Instr {
	in := Instr{Op: OpNop, Pos: pc, End: pc}

	switch code[pc] {
	case '>':
		in.Op = OpRight
	case '<':
		in.Op = OpLeft
	case '^':
		in.Op = OpUp
	case 'v':
		in.Op = OpDown
	case '+':
		in.Op = OpInc
	case '-':
		in.Op = OpDec
	case '|':
		in.Op = OpBumpColumn
	case '_':
		in.Op = OpBumpRow
	case '~':
		in.Op = OpRandom
	case '?':
		if peek(code, pc+1) == '?' {
			in.Op = OpDrain
			in.End = pc + 1
		} else {
			in.Op = OpRead
		}
	case '.':
		if peek(code, pc+1) == '(' {
			return decodeRun(code, pc, OpPrintRun)
		}
		in.Op = OpPrint
	case '*':
		if peek(code, pc+1) == '(' {
			return decodeRun(code, pc, OpMul)
		}
	case '/':
		if peek(code, pc+1) == '(' {
			return decodeRun(code, pc, OpDiv)
		}
	case '[':
		in.Op = OpLoopOpen
	case ']':
		in.Op = OpLoopClose
	case 'l':
		if bytes.HasPrefix(code[pc:], []byte(labelForm.prefix)) {
			return decodeForm(code, pc, labelForm)
		}
	case '\\':
		for _, f := range extendedForms {
			if bytes.HasPrefix(code[pc:], []byte(f.prefix)) {
				return decodeForm(code, pc, f)
			}
		}
	case '!':
		if bytes.HasPrefix(code[pc:], []byte(guideKeyword)) {
			in.Op = OpGuide
			in.End = pc + len(guideKeyword) - 1
		}
	}
	return in
}

func peek(code []byte, i int) byte {
	if i < len(code) {
		return code[i]
	}
	return 0
}

// decodeRun reads a run-length literal: code[pc+1] is '('.
func decodeRun(code []byte, pc int, op Op) Instr {
	in := Instr{Op: op, Pos: pc}
	i := pc + 2
	for ; i < len(code) && code[i] != ')'; i++ {
		switch code[i] {
		case '+':
			in.Count++
		case '-':
			in.Count--
		}
	}
	if i >= len(code) {
		in.Truncated = true
		in.End = len(code) - 1
		return in
	}
	in.End = i
	return in
}

func decodeForm(code []byte, pc int, f form) Instr {
	in := Instr{Op: f.op, Pos: pc}
	in.Args = make([]string, 0, len(f.terms))

	i := pc + len(f.prefix)
	for j := 0; j < len(f.terms); j++ {
		start := i
		for i < len(code) && code[i] != f.terms[j] {
			i++
		}
		if i >= len(code) {
			in.Truncated = true
			in.End = len(code) - 1
			return in
		}
		in.Args = append(in.Args, string(code[start:i]))
		i++
	}
	in.End = i - 1
	return in
}
