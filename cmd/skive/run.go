package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Quantum-Kayak/Skive/compiler"
	"github.com/Quantum-Kayak/Skive/manifest"
	"github.com/Quantum-Kayak/Skive/vm"
	"github.com/Quantum-Kayak/Skive/vm/dist"
)

// runConfig is the merged result of run flags and skive.toml. Flags that
// were set on the command line win.
type runConfig struct {
	file      string
	input     string
	stateOut  string
	seed      uint64
	trace     bool
	maxSteps  int
	verbosity int
	logFile   string
}

func cmdRun(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	seed := fs.Uint64("seed", 0, "Seed for ~ (0 seeds from the clock)")
	input := fs.String("input", "", "Read ? tokens from this file instead of stdin")
	stateOut := fs.String("state-out", "", "Write the final state as CBOR to this file")
	maxSteps := fs.Int("max-steps", 0, "Stop after this many instructions (0 = no limit)")
	trace := fs.Bool("trace", false, "Log every executed instruction")
	verbosity := fs.Int("v", 0, "Log verbosity")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() > 1 {
		fmt.Fprintf(stderr, "usage: %s run [flags] [file]\n", appName)
		return exitUsage
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, err)
		return exitError
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := runConfig{file: manifest.DefaultEntry}
	if m != nil {
		cfg = runConfig{
			file:      m.EntryPath(),
			input:     m.InputPath(),
			stateOut:  m.StateOutPath(),
			seed:      m.Run.Seed,
			trace:     m.Run.Trace,
			verbosity: m.Log.Verbosity,
			logFile:   m.LogPath(),
		}
	}
	if fs.NArg() == 1 {
		cfg.file = fs.Arg(0)
	}
	if set["input"] {
		cfg.input = *input
	}
	if set["state-out"] {
		cfg.stateOut = *stateOut
	}
	if set["seed"] {
		cfg.seed = *seed
	}
	if set["trace"] {
		cfg.trace = *trace
	}
	if set["v"] {
		cfg.verbosity = *verbosity
	}
	cfg.maxSteps = *maxSteps

	return execute(cfg, stdin, stdout, stderr)
}

// execute loads cfg.file and runs it to completion.
func execute(cfg runConfig, stdin io.Reader, stdout, stderr io.Writer) int {
	if cfg.trace && cfg.verbosity < 2 {
		cfg.verbosity = 2
	}
	configureLogging(cfg.verbosity, cfg.logFile)

	src, err := os.ReadFile(cfg.file)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, cfg.file, err)
		return exitError
	}

	e := vm.NewEngine()
	e.Trace = cfg.trace
	e.SetOutput(stdout)
	e.SetStepLimit(cfg.maxSteps)
	if cfg.seed != 0 {
		e.SetSeed(cfg.seed)
	}

	if cfg.input != "" {
		f, err := os.Open(cfg.input)
		if err != nil {
			fmt.Fprintf(stderr, "%s: cannot open input %s: %v\n", appName, cfg.input, err)
			return exitError
		}
		defer f.Close()
		e.SetInput(f)
	} else {
		e.SetInput(stdin)
	}

	if err := e.Load(string(src)); err != nil {
		fmt.Fprintf(stderr, "%s: %s: %s\n", appName, cfg.file, describeLoadError(string(src), err))
		return exitError
	}

	start := time.Now()
	runErr := e.Run()
	log.Infof("%s: %d steps in %s", filepath.Base(cfg.file), e.Steps(), time.Since(start))

	if cfg.stateOut != "" {
		if err := saveState(cfg.stateOut, cfg.file, e.State()); err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", appName, err)
			return exitError
		}
	}

	if runErr != nil {
		fmt.Fprintf(stderr, "%s: %v\n", appName, runErr)
		return exitError
	}
	return exitOK
}

func saveState(path, program string, s vm.State) error {
	data, err := dist.MarshalState(dist.NewStateRecord(filepath.Base(program), s))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("cannot create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write state: %w", err)
	}
	return nil
}

// cmdCheck loads every file and reports load errors without running.
func cmdCheck(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintf(stderr, "usage: %s check file...\n", appName)
		return exitUsage
	}

	code := exitOK
	for _, path := range args {
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
			code = exitError
			continue
		}
		prog, err := compiler.Compile(string(src))
		if err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", path, describeLoadError(string(src), err))
			code = exitError
			continue
		}
		fmt.Fprintf(stdout, "%s: ok (%d instruction bytes, %d macros)\n", path, prog.Len(), len(prog.Macros))
	}
	return code
}

// describeLoadError prefixes err with a line:col when the source position
// is known.
func describeLoadError(src string, err error) string {
	if off := compiler.ErrorOffset(err); off >= 0 {
		line, col := compiler.LineCol(src, off)
		return fmt.Sprintf("%d:%d: %v", line, col, err)
	}
	return err.Error()
}

// cmdExpand prints the instruction listing, or with -raw the bare
// instruction buffer after macro expansion and stripping.
func cmdExpand(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("expand", flag.ContinueOnError)
	fs.SetOutput(stderr)
	raw := fs.Bool("raw", false, "Print the instruction buffer only")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s expand [-raw] file\n", appName)
		return exitUsage
	}

	path := fs.Arg(0)
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return exitError
	}

	if *raw {
		pp, err := compiler.Preprocess(string(src))
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			return exitError
		}
		fmt.Fprintf(stdout, "%s\n", pp.Code)
		return exitOK
	}

	prog, err := compiler.Compile(string(src))
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s\n", path, describeLoadError(string(src), err))
		return exitError
	}
	fmt.Fprint(stdout, prog.DisassembleWithName(filepath.Base(path)))
	return exitOK
}
