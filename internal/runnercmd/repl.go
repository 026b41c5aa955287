package runnercmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mna/mainer"

	"github.com/emberlang/ember/lang/vm"
)

// maxREPLLine is the REPL's line-length cap (§6): a line read longer than
// this is reported and discarded rather than fed to the compiler.
const maxREPLLine = 1024

// runREPL implements the no-argument CLI mode: a line-buffered prompt loop
// sharing one VM (and so one globals table and heap) across every line, the
// way a REPL session is described in §4.2's Globals doc comment. Each
// line's result is reported but never ends the session; only EOF or
// cancellation does.
func runREPL(ctx context.Context, stdio mainer.Stdio) {
	m := vm.New(vm.Options{Stdin: stdio.Stdin, Stdout: stdio.Stdout, Stderr: stdio.Stderr})

	reader := bufio.NewReader(stdio.Stdin)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		fmt.Fprint(stdio.Stdout, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if err != io.EOF {
				fmt.Fprintf(stdio.Stderr, "repl: %s\n", err)
			}
			return
		}

		if len(line) > maxREPLLine {
			fmt.Fprintf(stdio.Stderr, "repl: line exceeds %d bytes, discarded\n", maxREPLLine)
			continue
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		m.Interpret([]byte(line))
	}
}
