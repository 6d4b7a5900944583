package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/term"

	"github.com/Quantum-Kayak/Skive/vm"
)

const (
	historyFile = ".skive_history"
	promptMain  = "skive> "
	promptInput = "input> "
)

const replHelp = `Each line runs as its own program against the same grid.
REPL commands:
  :help        Show this help
  :grid        Draw the grid around the pointer
  :pos         Show the pointer and the cell under it
  :labels      List labels
  :vectors     List vectors
  :snapshots   List snapshots
  :reset       Clear the grid, pointer and registries
  :quit        Exit the REPL
`

// lineSource is where the REPL reads lines from: a liner prompt on a
// terminal, a plain scanner otherwise.
type lineSource interface {
	Prompt(prompt string) (string, error)
}

type scannerSource struct {
	scanner *bufio.Scanner
}

func (s *scannerSource) Prompt(string) (string, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}

// promptReader feeds ? from the REPL's own line source, one line per
// request.
type promptReader struct {
	src lineSource
	buf []byte
}

func (r *promptReader) Read(p []byte) (int, error) {
	if len(r.buf) == 0 {
		line, err := r.src.Prompt(promptInput)
		if err != nil {
			return 0, io.EOF
		}
		r.buf = append([]byte(line), '\n')
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

// lastByteWriter remembers the last byte written so the REPL can keep
// prompts on their own line.
type lastByteWriter struct {
	w    io.Writer
	last byte
}

func (lw *lastByteWriter) Write(p []byte) (int, error) {
	if len(p) > 0 {
		lw.last = p[len(p)-1]
	}
	return lw.w.Write(p)
}

// session is one REPL over a persistent engine.
type session struct {
	engine *vm.Engine
	out    *lastByteWriter
	errOut io.Writer
}

func newSession(src lineSource, stdout, stderr io.Writer) *session {
	s := &session{
		engine: vm.NewEngine(),
		out:    &lastByteWriter{w: stdout, last: '\n'},
		errOut: stderr,
	}
	s.engine.SetOutput(s.out)
	s.engine.SetInput(&promptReader{src: src})
	return s
}

// eval handles one line and reports whether the session should end.
func (s *session) eval(line string) (quit bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ":") {
		return s.command(trimmed)
	}

	s.out.last = '\n'
	err := s.engine.Exec(line)
	if s.out.last != '\n' {
		fmt.Fprintln(s.out)
	}
	if err != nil {
		fmt.Fprintln(s.errOut, err)
	}
	return false
}

func (s *session) command(cmd string) (quit bool) {
	e := s.engine
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":help", ":h", ":?":
		fmt.Fprint(s.out, replHelp)
	case ":grid":
		writeGrid(s.out, e.Grid().Cells(), e.Pointer())
	case ":pos":
		p := e.Pointer()
		fmt.Fprintf(s.out, "pointer (%d,%d) = %d%s\n", p.Row, p.Col, e.Cell(), printable(e.Cell()))
	case ":labels":
		writeLabels(s.out, e.State().Labels)
	case ":vectors":
		writeVectors(s.out, e.State().Vectors)
	case ":snapshots":
		writeSnapshots(s.out, e.State().Snapshots)
	case ":reset":
		e.Reset()
		fmt.Fprintln(s.out, "reset")
	default:
		fmt.Fprintf(s.errOut, "unknown command %s. Type :help for help.\n", cmd)
	}
	return false
}

// loop reads lines until EOF or :quit.
func (s *session) loop(src lineSource, onLine func(string)) {
	for {
		line, err := src.Prompt(promptMain)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				fmt.Fprintln(s.errOut, err)
			}
			return
		}
		if onLine != nil {
			onLine(line)
		}
		if s.eval(line) {
			return
		}
	}
}

func cmdRepl(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Uint64("seed", 0, "Seed for ~ (0 seeds from the clock)")
	verbosity := fs.Int("v", 0, "Log verbosity")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	configureLogging(*verbosity, "")

	if f, ok := stdin.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		src := &scannerSource{scanner: bufio.NewScanner(stdin)}
		s := newSession(src, stdout, stderr)
		if *seed != 0 {
			s.engine.SetSeed(*seed)
		}
		s.loop(src, nil)
		return exitOK
	}

	fmt.Fprintf(stdout, "Skive %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :help for commands.\n", version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	s := newSession(ln, stdout, stderr)
	if *seed != 0 {
		s.engine.SetSeed(*seed)
	}
	s.loop(ln, func(line string) {
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
	})
	return exitOK
}
