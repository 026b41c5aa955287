package runnercmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/internal/runnercmd"
)

func runCmd(t *testing.T, args ...string) (code mainer.ExitCode, stdout, stderr string) {
	t.Helper()
	var out, errBuf bytes.Buffer
	c := runnercmd.Cmd{BuildVersion: "0.0.0", BuildDate: "2026-01-01"}
	stdio := mainer.Stdio{Stdin: bytes.NewReader(nil), Stdout: &out, Stderr: &errBuf}
	code = c.Main(append([]string{"ember"}, args...), stdio)
	return code, out.String(), errBuf.String()
}

func writeSource(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "source.ember")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRunFileSuccess(t *testing.T) {
	path := writeSource(t, `print "hi";`)
	code, out, _ := runCmd(t, path)
	assert.Equal(t, mainer.Success, code)
	assert.Equal(t, "hi\n", out)
}

func TestRunFileCompileError(t *testing.T) {
	path := writeSource(t, "var x = ;")
	code, _, errOut := runCmd(t, path)
	assert.Equal(t, mainer.ExitCode(65), code)
	assert.NotEmpty(t, errOut)
}

func TestRunFileRuntimeError(t *testing.T) {
	path := writeSource(t, "print undeclared;")
	code, _, errOut := runCmd(t, path)
	assert.Equal(t, mainer.ExitCode(70), code)
	assert.Contains(t, errOut, "Undefined variable")
}

func TestRunMissingFile(t *testing.T) {
	code, _, errOut := runCmd(t, filepath.Join(t.TempDir(), "missing.ember"))
	assert.Equal(t, mainer.ExitCode(74), code)
	assert.NotEmpty(t, errOut)
}

func TestTooManyArgsIsInvalidArgs(t *testing.T) {
	code, _, errOut := runCmd(t, "a.ember", "b.ember")
	assert.Equal(t, mainer.ExitCode(64), code)
	assert.NotEmpty(t, errOut)
}

func TestVersionFlag(t *testing.T) {
	code, out, _ := runCmd(t, "--version")
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, out, "0.0.0")
}
