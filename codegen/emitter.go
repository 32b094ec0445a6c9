// Package codegen implements the VM Emitter: a thin, sequential writer
// of VM instruction text. It holds no state about the program being
// compiled — every method writes exactly the instruction(s) its name
// describes and nothing else, in the exact textual form listed below.
package codegen

import (
	"bufio"
	"fmt"
	"io"
)

// Emitter writes VM instruction text to an underlying io.Writer. Each
// compiled class gets its own Emitter over its own buffered output, per
// the single-pass, no-shared-state design: nothing about an Emitter's
// internal state depends on any other file being compiled.
type Emitter struct {
	w   *bufio.Writer
	err error
}

// New wraps w for sequential VM instruction writing.
func New(w io.Writer) *Emitter {
	return &Emitter{w: bufio.NewWriter(w)}
}

func (e *Emitter) writef(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, err := fmt.Fprintf(e.w, format, args...)
	if err != nil {
		e.err = err
	}
}

// WritePush emits "push segment index".
func (e *Emitter) WritePush(segment string, index int) {
	e.writef("push %s %d\n", segment, index)
}

// WritePop emits "pop segment index".
func (e *Emitter) WritePop(segment string, index int) {
	e.writef("pop %s %d\n", segment, index)
}

// Arithmetic command names, written verbatim with no operands.
const (
	Add = "add"
	Sub = "sub"
	Neg = "neg"
	Eq  = "eq"
	Gt  = "gt"
	Lt  = "lt"
	And = "and"
	Or  = "or"
	Not = "not"
)

// WriteArithmetic emits one of the nine zero-operand arithmetic or
// logical commands (add, sub, neg, eq, gt, lt, and, or, not).
func (e *Emitter) WriteArithmetic(command string) {
	e.writef("%s\n", command)
}

// WriteLabel emits "label name", scoped to the enclosing function by
// the caller's naming convention — the Emitter itself does no scoping.
func (e *Emitter) WriteLabel(name string) {
	e.writef("label %s\n", name)
}

// WriteGoto emits "goto name".
func (e *Emitter) WriteGoto(name string) {
	e.writef("goto %s\n", name)
}

// WriteIf emits "if-goto name".
func (e *Emitter) WriteIf(name string) {
	e.writef("if-goto %s\n", name)
}

// WriteCall emits "call name nArgs".
func (e *Emitter) WriteCall(name string, nArgs int) {
	e.writef("call %s %d\n", name, nArgs)
}

// WriteFunction emits "function name nLocals".
func (e *Emitter) WriteFunction(name string, nLocals int) {
	e.writef("function %s %d\n", name, nLocals)
}

// WriteReturn emits "return".
func (e *Emitter) WriteReturn() {
	e.writef("return\n")
}

// Close flushes any buffered output and reports the first write error
// encountered by any Write* call, if any.
func (e *Emitter) Close() error {
	if e.err != nil {
		return e.err
	}
	if err := e.w.Flush(); err != nil {
		e.err = err
	}
	return e.err
}
