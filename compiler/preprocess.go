package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tliron/commonlog"
)

const (
	// MaxMacroPasses bounds the number of whole-text substitution passes.
	MaxMacroPasses = 50

	// MaxExpandedSize caps the expanded text so a doubling macro fails
	// with ErrMacroLimit instead of exhausting memory.
	MaxExpandedSize = 16 << 20

	commentMarker = "```"
)

var log = commonlog.GetLogger("skive.compiler")

// Preprocessed is the output of Preprocess.
type Preprocessed struct {
	Macros   map[string]string // name -> body
	Expanded string            // text after macro expansion, before stripping
	Code     []byte            // dense instruction buffer
	Passes   int               // substitution passes that changed the text

	// Origins maps every byte of Code to its offset in the source text.
	// Nil when expansion rewrote the text.
	Origins []int
}

// Preprocess runs macro extraction, macro expansion and comment/whitespace
// stripping over src. It never touches the file system.
func Preprocess(src string) (*Preprocessed, error) {
	text, origins, macros := extractMacros(src)

	expanded, passes, err := expandMacros(text, macros)
	if err != nil {
		return nil, err
	}
	if passes > 0 {
		origins = nil
	}

	code, offsets := stripComments(expanded)
	if origins != nil {
		for i, off := range offsets {
			offsets[i] = origins[off]
		}
		origins = offsets
	}

	log.Debugf("preprocessed %d bytes: %d macros, %d passes, %d instructions",
		len(src), len(macros), passes, len(code))

	return &Preprocessed{
		Macros:   macros,
		Expanded: expanded,
		Code:     code,
		Passes:   passes,
		Origins:  origins,
	}, nil
}

// extractMacros removes every (name)={body} declaration from src. The
// returned slice holds the source offset of each byte that was kept.
func extractMacros(src string) (string, []int, map[string]string) {
	macros := make(map[string]string)
	var b strings.Builder
	b.Grow(len(src))
	origins := make([]int, 0, len(src))

	for i := 0; i < len(src); i++ {
		if src[i] == '(' {
			if name, body, end, ok := macroDecl(src, i); ok {
				macros[name] = body
				i = end
				continue
			}
		}
		b.WriteByte(src[i])
		origins = append(origins, i)
	}
	return b.String(), origins, macros
}

// macroDecl matches a declaration whose '(' sits at open. end is the index
// of the closing '}'; the body stops at the first '}'.
func macroDecl(src string, open int) (name, body string, end int, ok bool) {
	closeParen := strings.IndexByte(src[open+1:], ')')
	if closeParen < 0 {
		return "", "", 0, false
	}
	closeParen += open + 1
	if !strings.HasPrefix(src[closeParen+1:], "={") {
		return "", "", 0, false
	}
	bodyStart := closeParen + 3
	closeBrace := strings.IndexByte(src[bodyStart:], '}')
	if closeBrace < 0 {
		return "", "", 0, false
	}
	closeBrace += bodyStart
	return src[open+1 : closeParen], src[bodyStart:closeBrace], closeBrace, true
}

// expandMacros substitutes every (name) use with its body until a pass
// changes nothing. Bodies may contain other uses; those resolve on later
// passes.
func expandMacros(text string, macros map[string]string) (string, int, error) {
	if len(macros) == 0 {
		return text, 0, nil
	}

	names := make([]string, 0, len(macros))
	for name := range macros {
		names = append(names, name)
	}
	sort.Strings(names)

	for pass := 0; pass < MaxMacroPasses; pass++ {
		replaced := false
		for _, name := range names {
			use := "(" + name + ")"
			if !strings.Contains(text, use) {
				continue
			}
			text = strings.ReplaceAll(text, use, macros[name])
			replaced = true
			if len(text) > MaxExpandedSize {
				return "", pass + 1, fmt.Errorf("compiler: %w: expanded text exceeds %d bytes",
					ErrMacroLimit, MaxExpandedSize)
			}
		}
		if !replaced {
			return text, pass, nil
		}
	}
	return "", MaxMacroPasses, fmt.Errorf("compiler: %w: still rewriting after %d passes",
		ErrMacroLimit, MaxMacroPasses)
}

// stripComments drops ``` ... ``` blocks and all whitespace. offsets[i] is
// the index in text of code[i].
func stripComments(text string) (code []byte, offsets []int) {
	code = make([]byte, 0, len(text))
	offsets = make([]int, 0, len(text))

	for i := 0; i < len(text); i++ {
		if strings.HasPrefix(text[i:], commentMarker) {
			end := strings.Index(text[i+len(commentMarker):], commentMarker)
			if end < 0 {
				break // unterminated: runs to end of text
			}
			i += 2*len(commentMarker) + end - 1
			continue
		}
		if isSpace(text[i]) {
			continue
		}
		code = append(code, text[i])
		offsets = append(offsets, i)
	}
	return code, offsets
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
