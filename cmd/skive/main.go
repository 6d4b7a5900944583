// Skive CLI - runs, checks and inspects Skive grid programs
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/Quantum-Kayak/Skive/manifest"
	"github.com/Quantum-Kayak/Skive/server"
	"github.com/Quantum-Kayak/Skive/vm"

	_ "github.com/tliron/commonlog/simple"
)

const (
	appName = "skive"
	version = "0.1.0"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var log = commonlog.GetLogger("skive.cli")

func main() {
	os.Exit(dispatch(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// dispatch runs one CLI invocation and returns its exit code. With no
// subcommand, args are handed to run so that `skive prog.txt` and a bare
// `skive` (manifest entry or program.txt) both work.
func dispatch(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return cmdRun(nil, stdin, stdout, stderr)
	}

	switch args[0] {
	case "run":
		return cmdRun(args[1:], stdin, stdout, stderr)
	case "check":
		return cmdCheck(args[1:], stdout, stderr)
	case "expand":
		return cmdExpand(args[1:], stdout, stderr)
	case "repl":
		return cmdRepl(args[1:], stdin, stdout, stderr)
	case "lsp":
		return cmdLSP(args[1:], stderr)
	case "inspect":
		return cmdInspect(args[1:], stdout, stderr)
	case "guide":
		fmt.Fprint(stdout, vm.Guide())
		return exitOK
	case "version":
		fmt.Fprintln(stdout, version)
		return exitOK
	case "-h", "--help", "help":
		usage(stdout)
		return exitOK
	}

	// Flags or a file name: an implicit run.
	if strings.HasPrefix(args[0], "-") || fileExists(args[0]) {
		return cmdRun(args, stdin, stdout, stderr)
	}
	fmt.Fprintf(stderr, "%s: unknown command %q\n", appName, args[0])
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `Skive %s

Usage:
  %s [run] [flags] [file]       Run a program (default: manifest entry or %s)
  %s check file...              Load programs and report macro or bracket errors
  %s expand [-raw] file         Print the listing, or with -raw the instruction buffer
  %s repl                       Start an interactive session
  %s lsp                        Start the language server on stdio
  %s inspect [-dump] state      Print a state file written by run -state-out
  %s guide                      Print the language guide
  %s version                    Print the version

Run flags:
  -seed n        Seed for ~ (0 seeds from the clock)
  -input file    Read ? tokens from file instead of stdin
  -state-out f   Write the final grid and registries as CBOR
  -max-steps n   Stop after n instructions (0 = no limit)
  -trace         Log every instruction (implies -v 2)
  -v n           Log verbosity
`, version, appName, manifest.DefaultEntry, appName, appName, appName, appName, appName, appName, appName)
}

// cmdLSP serves the language server until the client disconnects.
func cmdLSP(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("lsp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbosity := fs.Int("v", 0, "Log verbosity")
	logFile := fs.String("log", "", "Log file (default stderr)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	configureLogging(*verbosity, *logFile)

	srv := server.NewLSP(vm.NewEngine())
	if err := srv.Run(); err != nil {
		fmt.Fprintf(stderr, "%s: lsp: %v\n", appName, err)
		return exitError
	}
	return exitOK
}

// configureLogging points commonlog at path, or stderr when path is empty.
func configureLogging(verbosity int, path string) {
	if path == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &path)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
