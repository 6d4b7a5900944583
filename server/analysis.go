package server

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/Quantum-Kayak/Skive/compiler"
)

// finding is a problem in a document. Start and End are byte offsets into
// the document text; Start is -1 when the position could not be recovered
// (macro expansion rewrote the text).
type finding struct {
	Start    int
	End      int
	Severity protocol.DiagnosticSeverity
	Message  string
}

// labelArgs lists, per instruction, which argument positions name a label.
var labelArgs = map[compiler.Op][]int{
	compiler.OpTeleport: {0},
	compiler.OpClone:    {0},
	compiler.OpSwap:     {0},
	compiler.OpFill:     {0, 1, 2},
	compiler.OpMath:     {0},
	compiler.OpMod:      {0},
	compiler.OpPushBack: {1},
}

// analyze compiles text and reports load errors, plus warnings for
// constructs that will silently do nothing at run time.
func analyze(text string) []finding {
	prog, err := compiler.Compile(text)
	if err != nil {
		return []finding{loadFinding(err)}
	}

	instrs := prog.Instructions()
	labels := make(map[string]bool)
	vectors := make(map[string]bool)
	snapshots := make(map[string]bool)
	for _, in := range instrs {
		switch in.Op {
		case compiler.OpLabel:
			if !in.Truncated {
				labels[in.Args[0]] = true
			}
		case compiler.OpVSet:
			if !in.Truncated {
				vectors[in.Args[0]] = true
			}
		case compiler.OpSave:
			if !in.Truncated {
				snapshots[in.Args[0]] = true
			}
		}
	}

	var out []finding
	add := func(in compiler.Instr, sev protocol.DiagnosticSeverity, format string, args ...any) {
		f := finding{Start: -1, End: -1, Severity: sev, Message: fmt.Sprintf(format, args...)}
		if prog.Origins != nil {
			f.Start = prog.Origins[in.Pos]
			f.End = prog.Origins[in.End] + 1
		}
		out = append(out, f)
	}

	for _, in := range instrs {
		if in.Truncated {
			add(in, protocol.DiagnosticSeverityWarning, "unterminated %s; the rest of the program is ignored", in.Op.Info().Syntax)
			continue
		}
		for _, i := range labelArgs[in.Op] {
			if name := in.Args[i]; !labels[name] {
				add(in, protocol.DiagnosticSeverityInformation, "label %q is never declared; %s does nothing", name, in.Op)
			}
		}
		switch in.Op {
		case compiler.OpPushBack:
			if !vectors[in.Args[0]] {
				add(in, protocol.DiagnosticSeverityInformation, "vector %q is never created with \\vset", in.Args[0])
			}
		case compiler.OpRestore:
			if !snapshots[in.Args[0]] {
				add(in, protocol.DiagnosticSeverityInformation, "snapshot %q is never saved", in.Args[0])
			}
		case compiler.OpTeleportBy:
			if !isInt(in.Args[0]) || !isInt(in.Args[1]) {
				add(in, protocol.DiagnosticSeverityWarning, "\\tp offsets must be integers")
			}
		case compiler.OpMath:
			if !strings.Contains("+-*/", in.Args[1]) || len(in.Args[1]) != 1 {
				add(in, protocol.DiagnosticSeverityWarning, "unknown \\math operator %q", in.Args[1])
			}
			if !isInt(in.Args[2]) {
				add(in, protocol.DiagnosticSeverityWarning, "\\math value must be an integer")
			}
		case compiler.OpMod:
			if !isInt(in.Args[1]) {
				add(in, protocol.DiagnosticSeverityWarning, "\\mod value must be an integer")
			}
		}
	}
	return out
}

func loadFinding(err error) finding {
	f := finding{Start: -1, End: -1, Severity: protocol.DiagnosticSeverityError, Message: err.Error()}
	if off := compiler.ErrorOffset(err); off >= 0 {
		f.Start = off
		f.End = off + 1
	}
	return f
}

func isInt(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// instructionAt finds the instruction covering offset in the raw document.
// The earliest start whose instruction reaches offset wins, so the inside
// of an argument list resolves to its command.
func instructionAt(text string, offset int) (compiler.Instr, bool) {
	if offset < 0 || offset >= len(text) {
		return compiler.Instr{}, false
	}
	code := []byte(text)
	lo := offset - 128
	if lo < 0 {
		lo = 0
	}
	for start := lo; start <= offset; start++ {
		in := compiler.Decode(code, start)
		if in.Op != compiler.OpNop && !in.Truncated && in.End >= offset {
			return in, true
		}
	}
	return compiler.Instr{}, false
}

// hoverText describes the instruction at offset in markdown.
func hoverText(text string, offset int) string {
	in, ok := instructionAt(text, offset)
	if !ok {
		return ""
	}
	info := in.Op.Info()

	var b strings.Builder
	fmt.Fprintf(&b, "**`%s`** (%s)\n\n%s", info.Syntax, info.Group, info.Doc)
	switch in.Op {
	case compiler.OpPrintRun, compiler.OpMul, compiler.OpDiv:
		fmt.Fprintf(&b, "\n\nN = %d", in.Count)
	}
	return b.String()
}

// labelDecl is a label{name} occurrence in the raw document.
type labelDecl struct {
	Name  string
	Start int // offset of the first byte of the name
	End   int // offset just past the name
}

// declaredLabels scans the raw document for label declarations. Names are
// compared with whitespace removed, as the preprocessor would.
func declaredLabels(text string) []labelDecl {
	const prefix = "label{"
	var out []labelDecl
	for i := 0; ; {
		j := strings.Index(text[i:], prefix)
		if j < 0 {
			return out
		}
		start := i + j + len(prefix)
		end := strings.IndexByte(text[start:], '}')
		if end < 0 {
			return out
		}
		end += start
		out = append(out, labelDecl{Name: stripSpace(text[start:end]), Start: start, End: end})
		i = end
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\v', '\f', '\r':
			return -1
		}
		return r
	}, s)
}

// argumentAt returns the argument word under offset, if offset sits inside
// the argument list of an extended command.
func argumentAt(text string, offset int) (string, bool) {
	if offset < 0 || offset > len(text) {
		return "", false
	}
	in, ok := instructionAt(text, offset)
	if !ok || len(in.Args) == 0 || in.Op == compiler.OpLabel {
		return "", false
	}

	start := offset
	for start > in.Pos && !isArgDelim(text[start-1]) {
		start--
	}
	end := offset
	for end < in.End && !isArgDelim(text[end]) {
		end++
	}
	word := stripSpace(text[start:end])
	return word, word != ""
}

func isArgDelim(c byte) bool {
	switch c {
	case '{', '}', '(', ')', ',':
		return true
	}
	return false
}

// completions offers keywords after a backslash and declared label names
// inside an argument list.
func completions(text string, offset int) []protocol.CompletionItem {
	if offset > len(text) {
		offset = len(text)
	}

	// Walk back over the keyword being typed.
	start := offset
	for start > 0 && isKeywordByte(text[start-1]) {
		start--
	}
	prefix := text[start:offset]

	inArgs := start > 0 && isArgDelim(text[start-1]) && text[start-1] != '}' && text[start-1] != ')'
	switch {
	case strings.HasPrefix(prefix, `\`):
		return keywordItems(prefix)
	case inArgs:
		return labelItems(text, prefix)
	case strings.HasPrefix(prefix, "l"):
		return keywordItems(prefix)
	}
	return nil
}

func keywordItems(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	kind := protocol.CompletionItemKindKeyword
	for _, kw := range compiler.Keywords() {
		if !strings.HasPrefix(kw.Prefix, prefix) {
			continue
		}
		detail := kw.Op.Info().Syntax
		kwCopy := kw.Prefix
		items = append(items, protocol.CompletionItem{
			Label:      kw.Prefix,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &kwCopy,
		})
	}
	return items
}

func labelItems(text, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := make(map[string]bool)
	kind := protocol.CompletionItemKindVariable
	detail := "label"
	decls := declaredLabels(text)
	sort.Slice(decls, func(i, j int) bool { return decls[i].Name < decls[j].Name })
	for _, d := range decls {
		if seen[d.Name] || !strings.HasPrefix(d.Name, prefix) {
			continue
		}
		seen[d.Name] = true
		name := d.Name
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &name,
		})
	}
	return items
}

func isKeywordByte(c byte) bool {
	return c == '\\' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

// offsetAt converts an LSP position to a byte offset in text.
func offsetAt(text string, pos protocol.Position) int {
	line := 0
	i := 0
	for line < int(pos.Line) {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return len(text)
		}
		i += nl + 1
		line++
	}
	end := strings.IndexByte(text[i:], '\n')
	if end < 0 {
		end = len(text) - i
	}
	col := int(pos.Character)
	if col > end {
		col = end
	}
	return i + col
}

// positionAt converts a byte offset in text to an LSP position.
func positionAt(text string, offset int) protocol.Position {
	line, col := compiler.LineCol(text, offset)
	return protocol.Position{Line: protocol.UInteger(line - 1), Character: protocol.UInteger(col - 1)}
}

// findingRange returns the LSP range for f, or the start of the document.
func findingRange(text string, f finding) protocol.Range {
	if f.Start < 0 {
		return protocol.Range{}
	}
	return protocol.Range{Start: positionAt(text, f.Start), End: positionAt(text, f.End)}
}
