package vm

import (
	"bytes"
	"strings"
	"testing"
)

func run(t *testing.T, source string) (stdout, stderr string, result InterpretResult) {
	t.Helper()
	var out, errOut bytes.Buffer
	machine := New(&out, &errOut)
	result = machine.Interpret(source)
	return out.String(), errOut.String(), result
}

func TestInterpretArithmeticPrecedence(t *testing.T) {
	out, _, result := run(t, `print 1 + 2 * 3;`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "7" {
		t.Errorf("got %q, want 7", out)
	}
}

func TestInterpretStringInterningEquality(t *testing.T) {
	out, _, result := run(t, `var a = "hi"; var b = "hi"; print a == b;`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("got %q, want true", out)
	}
}

func TestInterpretForLoopAccumulation(t *testing.T) {
	out, _, result := run(t, `var n = 0; for (var i = 1; i <= 5; i = i + 1) { n = n + i; } print n;`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "15" {
		t.Errorf("got %q, want 15", out)
	}
}

func TestInterpretRecursiveFibonacci(t *testing.T) {
	out, _, result := run(t, `fun fib(n) { if (n < 2) return n; return fib(n-1) + fib(n-2); } print fib(10);`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "55" {
		t.Errorf("got %q, want 55", out)
	}
}

func TestInterpretNestedScopeShadowing(t *testing.T) {
	out, _, result := run(t, `var x = 1; { var x = 2; { var x = 3; print x; } print x; } print x;`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	lines := strings.Fields(out)
	want := []string{"3", "2", "1"}
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), out)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestInterpretStringConcatenation(t *testing.T) {
	out, _, result := run(t, `print "foo" + "bar";`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "foobar" {
		t.Errorf("got %q, want foobar", out)
	}
}

func TestInterpretUndefinedGlobalIsRuntimeError(t *testing.T) {
	_, errOut, result := run(t, `print undefined_name;`)
	if result != InterpretRuntimeError {
		t.Fatalf("expected runtime error, got %v", result)
	}
	if errOut == "" {
		t.Errorf("expected an error message on stderr")
	}
}

func TestInterpretArityMismatchIsRuntimeError(t *testing.T) {
	_, _, result := run(t, `fun f(a, b) { return a + b; } f(1);`)
	if result != InterpretRuntimeError {
		t.Fatalf("expected runtime error for arity mismatch, got %v", result)
	}
}

func TestInterpretCallingNonCallableIsRuntimeError(t *testing.T) {
	_, _, result := run(t, `var x = 5; x();`)
	if result != InterpretRuntimeError {
		t.Fatalf("expected runtime error calling a non-function, got %v", result)
	}
}

func TestInterpretAndOrShortCircuit(t *testing.T) {
	out, _, result := run(t, `
		fun sideEffect() { print "called"; return true; }
		print false and sideEffect();
		print true or sideEffect();
	`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.Contains(out, "called") {
		t.Errorf("side effect should not have run under short-circuiting: %q", out)
	}
}

func TestInterpretClockNativeReturnsNumber(t *testing.T) {
	out, _, result := run(t, `print clock() > 0;`)
	if result != InterpretOK {
		t.Fatalf("expected OK, got %v", result)
	}
	if strings.TrimSpace(out) != "true" {
		t.Errorf("got %q, want true", out)
	}
}

func TestInterpretRuntimeErrorResetsStackForNextCall(t *testing.T) {
	machine := New(&bytes.Buffer{}, &bytes.Buffer{})
	if result := machine.Interpret(`print nope;`); result != InterpretRuntimeError {
		t.Fatalf("expected runtime error, got %v", result)
	}
	if machine.stackTop != 0 {
		t.Errorf("expected stack reset after runtime error, stackTop = %d", machine.stackTop)
	}
	if len(machine.frames) != 0 {
		t.Errorf("expected frames reset after runtime error, got %d", len(machine.frames))
	}

	var out bytes.Buffer
	machine.stdout = &out
	if result := machine.Interpret(`print 1 + 1;`); result != InterpretOK {
		t.Fatalf("expected OK after recovering from previous runtime error, got %v", result)
	}
	if strings.TrimSpace(out.String()) != "2" {
		t.Errorf("got %q, want 2", out.String())
	}
}
