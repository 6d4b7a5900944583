package vm

import (
	"bufio"
	"io"

	"github.com/tliron/commonlog"
)

const maxTokenSize = 1 << 20

// input buffers one whitespace-delimited token at a time. The newline
// appended to every token is part of the data the program sees.
type input struct {
	scanner *bufio.Scanner
	buf     []byte
	cursor  int
	log     commonlog.Logger

	// err is the scanner failure that ended input early, such as a token
	// longer than maxTokenSize. Nil at a clean end of input.
	err error
}

func newInput(r io.Reader, log commonlog.Logger) *input {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxTokenSize)
	s.Split(bufio.ScanWords)
	return &input{scanner: s, log: log}
}

// empty reports whether the next read has to block for a token.
func (in *input) empty() bool {
	return len(in.buf) == 0
}

// next returns one byte, reading a fresh token first if the buffer is
// empty. ok is false at end of input; the buffer is left as it was.
func (in *input) next() (b byte, ok bool) {
	if in.empty() {
		if !in.scanner.Scan() {
			if err := in.scanner.Err(); err != nil && in.err == nil {
				in.err = err
				in.log.Debugf("input stopped: %s", err)
			}
			return 0, false
		}
		in.buf = append(in.buf[:0], in.scanner.Bytes()...)
		in.buf = append(in.buf, '\n')
		in.cursor = 0
	}

	b = in.buf[in.cursor]
	in.cursor++
	if in.cursor >= len(in.buf) {
		in.buf = in.buf[:0]
		in.cursor = 0
	}
	return b, true
}

// buffered returns a copy of the whole current token, including bytes a
// previous ? already consumed. Buffer and cursor are left as they are, and
// it never reads.
func (in *input) buffered() []byte {
	return append([]byte{}, in.buf...)
}

// clear discards the current token.
func (in *input) clear() {
	in.buf = in.buf[:0]
	in.cursor = 0
}
