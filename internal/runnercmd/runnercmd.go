// Package runnercmd implements the CLI shell collaborator of §6: reads
// source (from a file or interactively from stdin), drives it through
// lang/vm, and maps the result onto the process exit codes assigned to
// the shell, not the VM itself.
package runnercmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/lang/vm"
)

const binName = "ember"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] [<path>]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] [<path>]
       %[1]s -h|--help
       %[1]s -v|--version

With no <path>, runs an interactive REPL reading from standard input. With
a <path>, reads and runs that file, then exits.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

Exit codes: 0 on success, 64 on bad CLI usage, 65 on a compile error, 70 on
a runtime error, 74 on an I/O error reading the source file.
`, binName)
)

// exit codes beyond mainer's own Success/Failure/InvalidArgs vocabulary,
// assigned by §6.
const (
	exitUsage        = mainer.ExitCode(64)
	exitCompileError = mainer.ExitCode(65)
	exitRuntimeError = mainer.ExitCode(70)
	exitIOError      = mainer.ExitCode(74)
)

// Cmd is the top-level command, wired the way mna/mainer expects: exported
// fields tagged `flag:"..."` become CLI flags, and SetArgs/Validate let
// Cmd participate in mainer.Parser's lifecycle.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) > 1 {
		return errors.New("at most one source file path may be given")
	}
	return nil
}

// Main parses args, then either runs the REPL or interprets the single
// file named in args, returning the process exit code to propagate (§6).
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return exitUsage
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)

	if len(c.args) == 0 {
		runREPL(ctx, stdio)
		return mainer.Success
	}

	return runFile(stdio, c.args[0])
}

// runFile reads path (binary-safe) and interprets it in a fresh VM (§6
// "prog <path>").
func runFile(stdio mainer.Stdio, path string) mainer.ExitCode {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return exitIOError
	}

	m := vm.New(vm.Options{Stdin: stdio.Stdin, Stdout: stdio.Stdout, Stderr: stdio.Stderr})
	switch m.Interpret(source) {
	case vm.CompileError:
		return exitCompileError
	case vm.RuntimeError:
		return exitRuntimeError
	default:
		return mainer.Success
	}
}
