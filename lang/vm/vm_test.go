package vm_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/vm"
)

// run interprets src against a fresh VM and returns its stdout, stderr and
// Result, the way a REPL session or file runner would for one source unit.
func run(t *testing.T, src string) (stdout, stderr string, result vm.Result) {
	t.Helper()
	var out, errBuf bytes.Buffer
	m := vm.New(vm.Options{Stdout: &out, Stderr: &errBuf})
	result = m.Interpret([]byte(src))
	return out.String(), errBuf.String(), result
}

func TestPrecedence(t *testing.T) {
	out, _, result := run(t, "print 1 + 2 * 3;")
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "7\n", out)
}

func TestGlobalShadowingByBlockLocal(t *testing.T) {
	out, _, result := run(t, `
		var x = "global";
		{
			var x = "local";
			print x;
		}
		print x;
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "local\nglobal\n", out)
}

func TestClosureCapturesByReference(t *testing.T) {
	out, _, result := run(t, `
		fun makeCounter() {
			var count = 0;
			fun increment() {
				count = count + 1;
				print count;
			}
			return increment;
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestUpvalueClosesOnReturn(t *testing.T) {
	out, _, result := run(t, `
		fun outer() {
			var x = "outside";
			fun inner() {
				print x;
			}
			return inner;
		}
		var closure = outer();
		closure();
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "outside\n", out)
}

func TestBreakAndContinuePopToLoopDepth(t *testing.T) {
	out, _, result := run(t, `
		var i = 0;
		while (i < 5) {
			i = i + 1;
			if (i == 2) continue;
			if (i == 4) break;
			print i;
		}
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "1\n3\n", out)
}

func TestUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, errOut, result := run(t, "print undeclared;")
	assert.Equal(t, vm.RuntimeError, result)
	assert.Contains(t, errOut, "Undefined variable 'undeclared'.")
	assert.Contains(t, errOut, "[line 1] in script")
}

// TestDeclaredGlobalWithoutInitializerIsUndefined is §8 scenario 7 verbatim:
// a global declared without an initializer stores Undefined, not Nil, so
// reading it is a runtime error rather than silently printing nil.
func TestDeclaredGlobalWithoutInitializerIsUndefined(t *testing.T) {
	_, errOut, result := run(t, "var x; x;")
	assert.Equal(t, vm.RuntimeError, result)
	assert.Contains(t, errOut, "Undefined variable 'x'.")
}

func TestStringConcatenation(t *testing.T) {
	out, _, result := run(t, `print "foo" + "bar";`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "foobar\n", out)
}

func TestAddTypeMismatchIsRuntimeError(t *testing.T) {
	_, errOut, result := run(t, `print "foo" + 1;`)
	assert.Equal(t, vm.RuntimeError, result)
	assert.Contains(t, errOut, "Operands must be two numbers or two strings.")
}

func TestClassesInheritanceAndSuper(t *testing.T) {
	out, _, result := run(t, `
		class Animal {
			init(name) {
				this.name = name;
			}
			speak() {
				print this.name + " makes a sound.";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print this.name + " barks.";
			}
		}
		var d = Dog("Rex");
		d.speak();
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "Rex makes a sound.\nRex barks.\n", out)
}

func TestStackOverflowIsRuntimeError(t *testing.T) {
	_, errOut, result := run(t, `
		fun recurse() {
			return recurse();
		}
		recurse();
	`)
	assert.Equal(t, vm.RuntimeError, result)
	assert.Contains(t, errOut, "Stack overflow.")
}

func TestSwitchNoFallthrough(t *testing.T) {
	out, _, result := run(t, `
		var x = 2;
		switch (x) {
			case 1:
				print "one";
			case 2:
				print "two";
			default:
				print "other";
		}
	`)
	require.Equal(t, vm.OK, result)
	assert.Equal(t, "two\n", out)
}

func TestNativeClockAndSqrt(t *testing.T) {
	out, _, result := run(t, `
		print sqrt(16);
		print clock() >= 0;
	`)
	require.Equal(t, vm.OK, result)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "4", lines[0])
	assert.Equal(t, "true", lines[1])
}

func TestCompileErrorStopsBeforeRunning(t *testing.T) {
	_, errOut, result := run(t, "var x = ;")
	assert.Equal(t, vm.CompileError, result)
	assert.NotEmpty(t, errOut)
}
