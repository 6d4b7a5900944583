package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goforj/godump"

	"github.com/Quantum-Kayak/Skive/vm/dist"
)

// cmdInspect prints a state file written by run -state-out.
func cmdInspect(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dump := fs.Bool("dump", false, "Dump the raw record structure")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(stderr, "usage: %s inspect [-dump] state.cbor\n", appName)
		return exitUsage
	}

	path := fs.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s: cannot read %s: %v\n", appName, path, err)
		return exitError
	}
	rec, err := dist.UnmarshalState(data)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %s: %v\n", appName, path, err)
		return exitError
	}

	if *dump {
		godump.Fdump(stdout, rec)
		return exitOK
	}

	if rec.Program != "" {
		fmt.Fprintf(stdout, "program: %s\n", rec.Program)
	}
	writeState(stdout, rec.State())
	return exitOK
}
