package compiler

// Op identifies a decoded instruction.
type Op uint8

const (
	OpNop Op = iota

	// Pointer and grid
	OpRight
	OpLeft
	OpUp
	OpDown
	OpInc
	OpDec
	OpBumpColumn
	OpBumpRow
	OpRandom

	// I/O
	OpRead
	OpDrain
	OpPrint
	OpPrintRun

	// Arithmetic on the current cell
	OpMul
	OpDiv

	// Control flow
	OpLoopOpen
	OpLoopClose

	// Labels and teleport
	OpLabel
	OpTeleport
	OpTeleportBy

	// Cloning and snapshots
	OpClone
	OpSwap
	OpSave
	OpRestore

	// Labelled arithmetic
	OpMath
	OpMod

	// Regions and vectors
	OpFill
	OpVSet
	OpPushBack

	// Meta
	OpGuide

	opCount
)

// OpInfo describes an instruction for listings, the guide and editor hovers.
type OpInfo struct {
	Name   string
	Syntax string
	Group  string
	Doc    string
}

const (
	groupGrid     = "Pointer & grid"
	groupIO       = "I/O"
	groupMath     = "Math"
	groupLoops    = "Loops"
	groupLabels   = "Labels & teleport"
	groupSnapshot = "Snapshots & cloning"
	groupRegion   = "Regions & vectors"
	groupMeta     = "Meta"
)

var opInfos = [opCount]OpInfo{
	OpNop: {Name: "nop"},

	OpRight:      {"right", ">", groupGrid, "Move the pointer one column right"},
	OpLeft:       {"left", "<", groupGrid, "Move the pointer one column left"},
	OpUp:         {"up", "^", groupGrid, "Move the pointer one row up"},
	OpDown:       {"down", "v", groupGrid, "Move the pointer one row down"},
	OpInc:        {"inc", "+", groupGrid, "Increment the current cell (wraps at 255)"},
	OpDec:        {"dec", "-", groupGrid, "Decrement the current cell (wraps at 0)"},
	OpBumpColumn: {"bumpcol", "|", groupGrid, "Increment every stored cell in the current column"},
	OpBumpRow:    {"bumprow", "_", groupGrid, "Increment every stored cell in the current row"},
	OpRandom:     {"random", "~", groupGrid, "Set the current cell to a random byte"},

	OpRead:     {"read", "?", groupIO, "Read one input byte into the current cell"},
	OpDrain:    {"drain", "??", groupIO, "Write the whole buffered input token into successive cells"},
	OpPrint:    {"print", ".", groupIO, "Print the current cell as a character"},
	OpPrintRun: {"printrun", ".(+++)", groupIO, "Print the current cell and the next N cells to the right"},

	OpMul: {"mul", "*(+++)", groupMath, "Multiply the current cell by N (net count of + and -)"},
	OpDiv: {"div", "/(---)", groupMath, "Divide the current cell by N; no change when N is 0"},

	OpLoopOpen:  {"open", "[", groupLoops, "Skip past the matching ] when the current cell is 0"},
	OpLoopClose: {"close", "]", groupLoops, "Jump back to the matching [ when the current cell is not 0"},

	OpLabel:      {"label", "label{name}", groupLabels, "Remember the pointer position as name"},
	OpTeleport:   {"tp", `\tp{name}`, groupLabels, "Move the pointer to a label"},
	OpTeleportBy: {"tpby", `\tp(x,y)`, groupLabels, "Move the pointer x columns right and y rows up"},

	OpClone:   {"clone", `\clone{label}`, groupSnapshot, "Copy the current cell into the labelled cell"},
	OpSwap:    {"swap", `\swap{label}`, groupSnapshot, "Swap the current cell with the labelled cell"},
	OpSave:    {"save", `\save{name}`, groupSnapshot, "Snapshot the whole grid as name"},
	OpRestore: {"restore", `\restore{name}`, groupSnapshot, "Replace the grid with snapshot name"},

	OpMath: {"math", `\math{label,op,val}`, groupMath, "Apply op (+ - * /) with val to the labelled cell"},
	OpMod:  {"mod", `\mod{label,val}`, groupMath, "Set the labelled cell to cell % val; no change when val is 0"},

	OpFill:     {"fill", `\fill{src,a,b}`, groupRegion, "Fill the rectangle between labels a and b with src's value"},
	OpVSet:     {"vset", `\vset{name}`, groupRegion, "Create (or empty) the vector name"},
	OpPushBack: {"pb", `\pb(vec,label)`, groupRegion, "Append the labelled cell's value to vector vec"},

	OpGuide: {"guide", "!guide!", groupMeta, "Print the language guide"},
}

// Info returns the description of op.
func (op Op) Info() OpInfo {
	if op >= opCount {
		return opInfos[OpNop]
	}
	return opInfos[op]
}

func (op Op) String() string {
	return op.Info().Name
}

// Ops lists every documented instruction in guide order.
func Ops() []Op {
	ops := make([]Op, 0, opCount-1)
	for op := OpRight; op < opCount; op++ {
		ops = append(ops, op)
	}
	return ops
}

// Groups lists the guide sections in display order.
func Groups() []string {
	return []string{groupGrid, groupIO, groupLoops, groupLabels, groupMath, groupSnapshot, groupRegion, groupMeta}
}
