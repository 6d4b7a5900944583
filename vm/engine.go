package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/tliron/commonlog"

	"github.com/Quantum-Kayak/Skive/compiler"
)

var (
	// ErrNoProgram is returned by Run before a program has been loaded.
	ErrNoProgram = errors.New("vm: no program loaded")

	// ErrStepLimit is returned when a step limit is set and the program
	// has not finished within it.
	ErrStepLimit = errors.New("vm: step limit exceeded")
)

// Engine executes one Skive program at a time against its own grid,
// pointer and registries. An Engine is not safe for concurrent use.
type Engine struct {
	prog *compiler.Program
	pc   int

	grid *Grid
	pos  Coord
	reg  *Registry

	in     *input
	out    *bufio.Writer
	rng    *rand.Rand
	log    commonlog.Logger
	outErr error

	steps     int
	stepLimit int

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// NewEngine creates an engine reading from stdin and writing to stdout.
func NewEngine() *Engine {
	e := &Engine{
		grid: NewGrid(),
		reg:  NewRegistry(),
		out:  bufio.NewWriter(os.Stdout),
		log:  commonlog.GetLogger("skive.vm"),
	}
	e.in = newInput(os.Stdin, e.log)
	e.SetSeed(uint64(time.Now().UnixNano()))
	return e
}

// SetInput sets the token stream consumed by ? and ??. Any buffered token
// is discarded.
func (e *Engine) SetInput(r io.Reader) {
	e.in = newInput(r, e.log)
}

// SetOutput sets where printed cells go.
func (e *Engine) SetOutput(w io.Writer) {
	e.out = bufio.NewWriter(w)
}

// SetSeed reseeds the generator behind ~.
func (e *Engine) SetSeed(seed uint64) {
	e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// SetLogger replaces the engine's logger.
func (e *Engine) SetLogger(l commonlog.Logger) {
	e.log = l
	e.in.log = l
}

// SetStepLimit bounds the number of instructions a single Run may execute.
// Zero means no limit.
func (e *Engine) SetStepLimit(n int) {
	e.stepLimit = n
}

// Load compiles src and installs it as the current program. Grid, pointer
// and registries are kept.
func (e *Engine) Load(src string) error {
	prog, err := compiler.Compile(src)
	if err != nil {
		return err
	}
	e.LoadProgram(prog)
	return nil
}

// LoadProgram installs an already compiled program.
func (e *Engine) LoadProgram(p *compiler.Program) {
	e.prog = p
	e.pc = 0
	e.log.Debugf("loaded program: %d instruction bytes, %d macros", p.Len(), len(p.Macros))
}

// Program returns the loaded program, or nil.
func (e *Engine) Program() *compiler.Program {
	return e.prog
}

// Exec loads src and runs it.
func (e *Engine) Exec(src string) error {
	if err := e.Load(src); err != nil {
		return err
	}
	return e.Run()
}

// Reset discards the grid, registries, pointer and buffered input.
func (e *Engine) Reset() {
	e.grid = NewGrid()
	e.reg = NewRegistry()
	e.pos = Coord{}
	e.in.clear()
}

// Pointer returns the current pointer position.
func (e *Engine) Pointer() Coord {
	return e.pos
}

// Grid returns the live grid.
func (e *Engine) Grid() *Grid {
	return e.grid
}

// Registry returns the live label, snapshot and vector tables.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Cell returns the value under the pointer.
func (e *Engine) Cell() byte {
	return e.grid.Get(e.pos)
}

// Steps returns the number of instructions the last Run executed.
func (e *Engine) Steps() int {
	return e.steps
}

// Run executes the loaded program from the start until the program counter
// passes the end. Language-level mistakes never stop a run; only host
// failures (writing output, the optional step limit) are returned.
func (e *Engine) Run() error {
	if e.prog == nil {
		return ErrNoProgram
	}
	code := e.prog.Code
	e.steps = 0
	e.outErr = nil

	for e.pc = 0; e.pc < len(code); e.pc++ {
		in := compiler.Decode(code, e.pc)
		e.steps++
		if e.stepLimit > 0 && e.steps > e.stepLimit {
			e.flush()
			return fmt.Errorf("%w (%d)", ErrStepLimit, e.stepLimit)
		}

		if e.Trace {
			e.log.Debugf("[%04d] %-10s pos=(%d,%d) cell=%d", e.pc, in.Op, e.pos.Row, e.pos.Col, e.Cell())
		}

		e.step(in)
		if e.outErr != nil {
			return fmt.Errorf("vm: output: %w", e.outErr)
		}
	}

	e.flush()
	if e.outErr != nil {
		return fmt.Errorf("vm: output: %w", e.outErr)
	}
	return nil
}

// step executes one instruction and leaves pc on the last byte it used;
// the loop in Run moves past it.
func (e *Engine) step(in compiler.Instr) {
	e.pc = in.End
	if in.Truncated {
		e.log.Debugf("dropping unterminated %s at %d", in.Op, in.Pos)
		return
	}

	switch in.Op {
	case compiler.OpRight:
		e.pos.Col++
	case compiler.OpLeft:
		e.pos.Col--
	case compiler.OpUp:
		e.pos.Row--
	case compiler.OpDown:
		e.pos.Row++

	case compiler.OpInc:
		e.setCell(int(e.Cell()) + 1)
	case compiler.OpDec:
		e.setCell(int(e.Cell()) - 1)
	case compiler.OpBumpColumn:
		e.grid.IncrementColumn(e.pos.Col)
	case compiler.OpBumpRow:
		e.grid.IncrementRow(e.pos.Row)
	case compiler.OpRandom:
		e.setCell(e.rng.IntN(256))

	case compiler.OpRead:
		e.read()
	case compiler.OpDrain:
		for _, b := range e.in.buffered() {
			e.setCell(int(b))
			e.pos.Col++
		}
	case compiler.OpPrint:
		e.print(e.Cell())
	case compiler.OpPrintRun:
		for i := 0; i <= in.Count; i++ {
			e.print(e.Cell())
			e.pos.Col++
		}

	case compiler.OpMul:
		e.setCell(int(e.Cell()) * in.Count)
	case compiler.OpDiv:
		cur := int(e.Cell())
		if in.Count != 0 {
			cur /= in.Count
		}
		e.setCell(cur)

	case compiler.OpLoopOpen:
		if e.Cell() == 0 {
			e.pc, _ = e.prog.Match(in.Pos)
		}
	case compiler.OpLoopClose:
		if e.Cell() != 0 {
			e.pc, _ = e.prog.Match(in.Pos)
		}

	case compiler.OpLabel:
		e.reg.SetLabel(in.Args[0], e.pos)

	case compiler.OpGuide:
		e.write(Guide())

	default:
		e.extended(in)
	}
}

func (e *Engine) setCell(v int) {
	e.grid.Set(e.pos, v)
}

// read implements ?. Pending output is flushed before blocking so that
// prompts appear ahead of the read.
func (e *Engine) read() {
	if e.in.empty() {
		e.flush()
	}
	b, ok := e.in.next()
	if !ok {
		e.setCell(0)
		return
	}
	e.setCell(int(b))
}

func (e *Engine) print(b byte) {
	if e.outErr != nil {
		return
	}
	e.outErr = e.out.WriteByte(b)
}

func (e *Engine) write(s string) {
	if e.outErr != nil {
		return
	}
	_, e.outErr = e.out.WriteString(s)
}

func (e *Engine) flush() {
	if e.outErr != nil {
		return
	}
	e.outErr = e.out.Flush()
}
