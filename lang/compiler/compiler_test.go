package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberlang/ember/lang/compiler"
	"github.com/emberlang/ember/lang/gc"
	"github.com/emberlang/ember/lang/object"
)

// newCompileEnv returns a fresh heap/allocator/globals triple, the way a
// single REPL session keeps all three alive across repeated Compile calls.
func newCompileEnv() (*object.Allocator, *object.Globals) {
	heap := gc.NewHeap()
	alloc := object.NewAllocator(heap)
	globals := object.NewGlobals()
	return alloc, globals
}

func compileOK(t *testing.T, src string) *object.Function {
	t.Helper()
	alloc, globals := newCompileEnv()
	fn, err := compiler.Compile([]byte(src), alloc, globals)
	require.NoError(t, err)
	require.NotNil(t, fn)
	return fn
}

func compileErr(t *testing.T, src string) error {
	t.Helper()
	alloc, globals := newCompileEnv()
	_, err := compiler.Compile([]byte(src), alloc, globals)
	require.Error(t, err)
	return err
}

func TestCompileArithmeticExpression(t *testing.T) {
	fn := compileOK(t, "print 1 + 2 * 3;")
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "MULTIPLY")
	assert.Contains(t, dis, "ADD")
	assert.Contains(t, dis, "PRINT")
}

func TestCompileGlobalVarRoundTrip(t *testing.T) {
	fn := compileOK(t, "var x = 10; x = x + 1; print x;")
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "DEFINE_GLOBAL")
	assert.Contains(t, dis, "GET_GLOBAL")
	assert.Contains(t, dis, "SET_GLOBAL")
}

func TestConstAssignmentIsCompileError(t *testing.T) {
	err := compileErr(t, "const x = 1; x = 2;")
	assert.Contains(t, err.Error(), "Cannot assign to a constant.")
}

func TestConstWithoutInitializerIsCompileError(t *testing.T) {
	err := compileErr(t, "const x;")
	assert.Contains(t, err.Error(), "Const declaration requires an initializer.")
}

func TestLocalSelfReferenceInInitializerIsCompileError(t *testing.T) {
	err := compileErr(t, "{ var a = a; }")
	assert.Contains(t, err.Error(), "Can't read local variable in its own initializer.")
}

func TestShadowingInnermostWins(t *testing.T) {
	fn := compileOK(t, `
		var x = "outer";
		{
			var x = "inner";
			print x;
		}
	`)
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "GET_LOCAL")
}

func TestClosureCapturesEnclosingLocal(t *testing.T) {
	fn := compileOK(t, `
		fun outer() {
			var x = "captured";
			fun inner() {
				print x;
			}
			return inner;
		}
	`)
	dis := disassembleAll(fn)
	assert.Contains(t, dis, "CLOSURE")
	assert.Contains(t, dis, "local 1")
}

func TestIfElseEmitsJumpsWithinRange(t *testing.T) {
	fn := compileOK(t, `
		if (true) {
			print "then";
		} else {
			print "else";
		}
	`)
	assertJumpsInRange(t, fn)
}

func TestWhileLoopEmitsLoopWithinRange(t *testing.T) {
	fn := compileOK(t, `
		var i = 0;
		while (i < 3) {
			i = i + 1;
		}
	`)
	assertJumpsInRange(t, fn)
}

func TestForLoopEmitsJumpsWithinRange(t *testing.T) {
	fn := compileOK(t, `
		for (var i = 0; i < 3; i = i + 1) {
			print i;
		}
	`)
	assertJumpsInRange(t, fn)
}

func TestBreakOutsideLoopIsCompileError(t *testing.T) {
	err := compileErr(t, "break;")
	assert.Contains(t, err.Error(), "Can't use 'break' outside of a loop.")
}

func TestContinueOutsideLoopIsCompileError(t *testing.T) {
	err := compileErr(t, "continue;")
	assert.Contains(t, err.Error(), "Can't use 'continue' outside of a loop.")
}

func TestBreakAndContinueInsideWhileCompile(t *testing.T) {
	fn := compileOK(t, `
		while (true) {
			if (true) break;
			continue;
		}
	`)
	assertJumpsInRange(t, fn)
}

func TestSwitchStatementCompiles(t *testing.T) {
	fn := compileOK(t, `
		var x = 2;
		switch (x) {
			case 1: print "one";
			case 2: print "two";
			default: print "other";
		}
	`)
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "DUP")
	assert.Contains(t, dis, "EQUAL")
	assertJumpsInRange(t, fn)
}

func TestSwitchWithTwoDefaultsIsCompileError(t *testing.T) {
	err := compileErr(t, `
		switch (1) {
			default: print "a";
			default: print "b";
		}
	`)
	assert.Contains(t, err.Error(), "Switch statement can only have one default case.")
}

func TestCaseOutsideSwitchIsCompileError(t *testing.T) {
	err := compileErr(t, "case 1: print 1;")
	assert.Contains(t, err.Error(), "outside of switch statement")
}

func TestClassWithMethodsAndInitCompiles(t *testing.T) {
	fn := compileOK(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				print this.name;
			}
		}
		var g = Greeter("world");
		g.greet();
	`)
	dis := compiler.Disassemble(fn.Chunk, "script")
	assert.Contains(t, dis, "CLASS")
	assert.Contains(t, dis, "METHOD")
	assert.Contains(t, dis, "INVOKE")
}

func TestClassInheritanceAndSuperDispatch(t *testing.T) {
	fn := compileOK(t, `
		class Animal {
			speak() {
				print "...";
			}
		}
		class Dog < Animal {
			speak() {
				super.speak();
				print "Woof";
			}
		}
	`)
	dis := disassembleAll(fn)
	assert.Contains(t, dis, "INHERIT")
	assert.Contains(t, dis, "SUPER_INVOKE")
}

func TestClassInheritingFromItselfIsCompileError(t *testing.T) {
	err := compileErr(t, "class Oops < Oops {}")
	assert.Contains(t, err.Error(), "A class can't inherit from itself.")
}

func TestSuperOutsideSubclassIsCompileError(t *testing.T) {
	err := compileErr(t, `
		class Animal {
			speak() {
				super.speak();
			}
		}
	`)
	assert.Contains(t, err.Error(), "Can't use 'super' in a class with no superclass.")
}

func TestThisOutsideClassIsCompileError(t *testing.T) {
	err := compileErr(t, "fun f() { print this; }")
	assert.Contains(t, err.Error(), "Can't use 'this' outside of a class.")
}

func TestReturnValueFromInitializerIsCompileError(t *testing.T) {
	err := compileErr(t, `
		class C {
			init() {
				return 1;
			}
		}
	`)
	assert.Contains(t, err.Error(), "Can't return a value from an initializer.")
}

func TestReturnFromTopLevelIsCompileError(t *testing.T) {
	err := compileErr(t, "return 1;")
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestNestedTernaryEmitsJumpsWithinRange(t *testing.T) {
	fn := compileOK(t, `print true ? 1 : false ? 2 : 3;`)
	assertJumpsInRange(t, fn)
}

func TestMultipleErrorsAreAllReported(t *testing.T) {
	err := compileErr(t, "var ; var ;")
	msg := err.Error()
	assert.GreaterOrEqual(t, strings.Count(msg, "Expect variable name."), 1)
	var list compiler.ErrorList
	require.ErrorAs(t, err, &list)
	assert.Len(t, list, 2)
}

// assertJumpsInRange disassembles fn's chunk and every nested function
// constant, and checks every jump target lands within its own chunk's
// code range (§8 invariant 1).
func assertJumpsInRange(t *testing.T, fn *object.Function) {
	t.Helper()
	var walk func(fn *object.Function)
	walk = func(fn *object.Function) {
		dis := compiler.Disassemble(fn.Chunk, fn.String())
		assert.NotContains(t, dis, "-> -")
		assert.NotContains(t, dis, "<truncated>")
		assert.NotContains(t, dis, "<out of range>")
		for _, line := range strings.Split(dis, "\n") {
			if i := strings.LastIndex(line, "-> "); i >= 0 {
				target, err := strconv.Atoi(line[i+3:])
				if assert.NoError(t, err, line) {
					assert.True(t, target >= 0 && target < len(fn.Chunk.Code), "jump target out of range: %s", line)
				}
			}
		}
		for _, c := range fn.Chunk.Constants {
			if c.IsObj() {
				if nested, ok := c.AsObj().(*object.Function); ok {
					walk(nested)
				}
			}
		}
	}
	walk(fn)
}

// disassembleAll returns the disassembly of fn's chunk followed by that of
// every nested function constant, so instructions emitted into a function
// or method body can be asserted on from the top-level script.
func disassembleAll(fn *object.Function) string {
	var sb strings.Builder
	sb.WriteString(compiler.Disassemble(fn.Chunk, fn.String()))
	for _, c := range fn.Chunk.Constants {
		if c.IsObj() {
			if nested, ok := c.AsObj().(*object.Function); ok {
				sb.WriteString(disassembleAll(nested))
			}
		}
	}
	return sb.String()
}
