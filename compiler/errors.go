package compiler

import (
	"errors"
	"fmt"
)

// ErrMacroLimit is returned when macro expansion has not reached a fixed
// point within MaxMacroPasses passes, or has grown past MaxExpandedSize.
var ErrMacroLimit = errors.New("macro expansion limit reached (possible recursion)")

// ErrUnmatchedBracket is wrapped by every BracketError.
var ErrUnmatchedBracket = errors.New("unmatched bracket")

// BracketError reports a loop bracket without a partner.
type BracketError struct {
	Char  byte // '[' or ']'
	Index int  // position in the instruction buffer

	// Offset is the byte offset in the source as written, or -1 when the
	// source map was lost to macro expansion.
	Offset int
}

func (e *BracketError) Error() string {
	return fmt.Sprintf("unmatched '%c' at %d", e.Char, e.Index)
}

func (e *BracketError) Unwrap() error {
	return ErrUnmatchedBracket
}

// ErrorOffset returns the source offset carried by a load error, or -1.
func ErrorOffset(err error) int {
	var be *BracketError
	if errors.As(err, &be) {
		return be.Offset
	}
	return -1
}
